package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("API_BASE_URL", "http://api.local/api/")
	t.Setenv("API_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "http://api.local/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, SessionStoreFile, cfg.Session.Store)
	assert.Equal(t, "@every 1m", cfg.Refresh.Schedule)
	assert.Same(t, cfg, AppConfig)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_MODE", "prod")
	t.Setenv("SESSION_STORE", "redis")
	_, err = Load()
	assert.Error(t, err)
}

func TestDatabaseConfigFollowsMode(t *testing.T) {
	t.Setenv("PROD_DB_HOST", "db.internal")
	t.Setenv("DEV_DB_HOST", "localhost")

	assert.Equal(t, "db.internal", loadDatabaseConfig("prod").Host)
	assert.Equal(t, "localhost", loadDatabaseConfig("dev").Host)
}

func TestConnectDatabaseSkipsFileStore(t *testing.T) {
	db, err := ConnectDatabase(&Config{Session: SessionConfig{Store: SessionStoreFile}})
	require.NoError(t, err)
	assert.Nil(t, db)
}
