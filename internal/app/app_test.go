package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/adapters/gateway"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/testsupport/apiserver"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		AppMode: "prod",
		API: config.APIConfig{
			BaseURL:   apiserver.BaseURL,
			Timeout:   5 * time.Second,
			RateLimit: 100,
			RateBurst: 100,
		},
		Session: config.SessionConfig{Store: store},
		Refresh: config.RefreshConfig{Schedule: "@every 1m", Leeway: time.Minute},
	}
}

func TestRuntimeSignsRequests(t *testing.T) {
	api := apiserver.New()
	api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	ctx := context.Background()

	rt, err := New(ctx, testConfig(config.SessionStoreMemory), gateway.WithTransport(api.Transport()))
	require.NoError(t, err)
	defer rt.Close()

	require.NoError(t, rt.Stores.Session.Login(ctx, "shopper@x.com", "secret1"))
	require.NoError(t, rt.Stores.Cart.Fetch(ctx))
	assert.Empty(t, rt.Stores.Cart.Items())
	assert.NotNil(t, rt.Keeper())
}

func TestRuntimeRestoresSessionFromSQLite(t *testing.T) {
	api := apiserver.New()
	api.AddUser("shopper@x.com", "secret1", domain.RoleCustomer)
	ctx := context.Background()
	cfg := testConfig(config.SessionStoreSQLite)
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "session.db")

	first, err := New(ctx, cfg, gateway.WithTransport(api.Transport()))
	require.NoError(t, err)
	require.NoError(t, first.Stores.Session.Login(ctx, "shopper@x.com", "secret1"))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, gateway.WithTransport(api.Transport()))
	require.NoError(t, err)
	defer second.Close()

	session := second.Stores.Session
	assert.True(t, session.IsAuthenticated())
	assert.Nil(t, session.Identity())
	require.NoError(t, session.FetchIdentity(ctx))
	assert.Equal(t, "shopper@x.com", session.Identity().Email)
}
