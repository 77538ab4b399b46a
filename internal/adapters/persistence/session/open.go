package session

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"storefront-sync/internal/adapters/persistence/repositories"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/services"
)

// Open builds the configured backend. db is required for the mysql and
// sqlite backends and ignored otherwise.
func Open(cfg config.SessionConfig, db *gorm.DB) (services.SessionPersistence, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(), nil
	case config.SessionStoreFile:
		if cfg.Secret == "" {
			log.Println("⚠️ Warning: SESSION_SECRET not set, session file is stored unencrypted")
		}
		fs, err := NewFileStore(cfg.File, cfg.Secret)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Session file: %s", fs.Path())
		return fs, nil
	case config.SessionStoreMySQL, config.SessionStoreSQLite:
		if db == nil {
			return nil, fmt.Errorf("session store %s needs a database", cfg.Store)
		}
		if err := repositories.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate session tables: %w", err)
		}
		return repositories.NewCredentialRepository(db), nil
	}
	return nil, fmt.Errorf("unknown session store: %s", cfg.Store)
}
