package session

import (
	"context"
	"sync"

	"storefront-sync/internal/core/domain"
)

// MemoryStore keeps the pair for the life of the process
type MemoryStore struct {
	mu   sync.Mutex
	cred *domain.Credential
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, nil
	}
	cp := *m.cred
	return &cp, nil
}

func (m *MemoryStore) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Complete() {
		return domain.ErrInvalidCredentialPair
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &cred
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}
