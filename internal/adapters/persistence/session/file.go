// Package session provides the SessionPersistence backends: memory, token
// file (optionally sealed) and gorm database.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"storefront-sync/internal/core/domain"
)

const nonceSize = 24

// ErrSealedFile is returned when a sealed token file cannot be opened
var ErrSealedFile = errors.New("session file cannot be decrypted")

// FileStore keeps the credential pair in one JSON file. Both tokens are
// written in a single atomic rename, so a reader never sees half a pair.
// With a secret the file content is sealed with NaCl secretbox.
type FileStore struct {
	path string
	key  *[32]byte

	mu sync.Mutex
}

// NewFileStore creates a file store at path. An empty secret stores the
// tokens in plain JSON.
func NewFileStore(path, secret string) (*FileStore, error) {
	s := &FileStore{path: path}
	if secret != "" {
		key, err := deriveKey(secret)
		if err != nil {
			return nil, err
		}
		s.key = key
	}
	return s, nil
}

func deriveKey(secret string) (*[32]byte, error) {
	r := hkdf.New(sha256.New, []byte(secret), []byte("storefront-session"), []byte("token-file"))
	var key [32]byte
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return &key, nil
}

// Path returns the file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the pair; a missing file means no session
func (s *FileStore) Load(ctx context.Context) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.key != nil {
		if len(data) < nonceSize {
			return nil, ErrSealedFile
		}
		var nonce [nonceSize]byte
		copy(nonce[:], data[:nonceSize])
		opened, ok := secretbox.Open(nil, data[nonceSize:], &nonce, s.key)
		if !ok {
			return nil, ErrSealedFile
		}
		data = opened
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if cred.IsZero() {
		return nil, nil
	}
	return &cred, nil
}

// Save writes both tokens at once
func (s *FileStore) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Complete() {
		return domain.ErrInvalidCredentialPair
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	if s.key != nil {
		var nonce [nonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return err
		}
		data = secretbox.Seal(nonce[:], data, &nonce, s.key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

// Clear removes the file
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
