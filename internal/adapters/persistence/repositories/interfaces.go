package repositories

import (
	"context"

	"storefront-sync/internal/core/domain"
)

// CredentialRepository keeps the credential pair in a database.
// It satisfies services.SessionPersistence.
type CredentialRepository interface {
	Load(ctx context.Context) (*domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
	Clear(ctx context.Context) error
}
