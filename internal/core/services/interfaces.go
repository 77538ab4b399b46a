package services

import (
	"context"
	"net/url"

	"storefront-sync/internal/core/domain"
)

// Gateway issues requests against the storefront API.
// Implemented by gateway.Client.
type Gateway interface {
	Request(ctx context.Context, method, path string, body any, query url.Values, out any) error
}

// SessionPersistence keeps the credential pair across restarts.
// Load returns nil when nothing is stored. Save writes both tokens as one unit.
type SessionPersistence interface {
	Load(ctx context.Context) (*domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
	Clear(ctx context.Context) error
}
