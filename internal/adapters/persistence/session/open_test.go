package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-sync/internal/adapters/persistence/models"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/domain"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(config.SQLiteDialector(filepath.Join(t.TempDir(), "session.db")), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestOpenSQLiteStoresPair(t *testing.T) {
	db := openSQLite(t)
	store, err := Open(config.SessionConfig{Store: config.SessionStoreSQLite}, db)
	require.NoError(t, err)
	ctx := context.Background()

	cred, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, store.Save(ctx, pair))
	next := domain.Credential{AccessToken: "access-2", RefreshToken: "refresh-2"}
	require.NoError(t, store.Save(ctx, next))

	cred, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, *cred)

	var rows int64
	require.NoError(t, db.Model(&models.SessionCredential{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	require.NoError(t, store.Clear(ctx))
	cred, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestOpenDatabaseBackendNeedsDB(t *testing.T) {
	_, err := Open(config.SessionConfig{Store: config.SessionStoreMySQL}, nil)
	assert.Error(t, err)
}

func TestOpenMemoryAndFile(t *testing.T) {
	store, err := Open(config.SessionConfig{Store: config.SessionStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	file := filepath.Join(t.TempDir(), "s.json")
	store, err = Open(config.SessionConfig{Store: config.SessionStoreFile, File: file}, nil)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
	assert.Equal(t, file, store.(*FileStore).Path())
}
