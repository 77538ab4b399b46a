package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-sync/internal/adapters/persistence/models"
	"storefront-sync/internal/core/domain"
)

// credentialRepository implements CredentialRepository interface
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Migrate creates the session tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Load returns the stored pair, nil when nothing is stored. A half pair is
// returned as-is; the session store decides what to do with it.
func (r *credentialRepository) Load(ctx context.Context) (*domain.Credential, error) {
	var rows []models.SessionCredential
	err := r.db.WithContext(ctx).
		Where("name IN ?", []string{models.KeyAccessToken, models.KeyRefreshToken}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var cred domain.Credential
	for _, row := range rows {
		switch row.Name {
		case models.KeyAccessToken:
			cred.AccessToken = row.Value
		case models.KeyRefreshToken:
			cred.RefreshToken = row.Value
		}
	}
	return &cred, nil
}

// Save writes both tokens in one transaction
func (r *credentialRepository) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Complete() {
		return domain.ErrInvalidCredentialPair
	}
	rows := []models.SessionCredential{
		{Name: models.KeyAccessToken, Value: cred.AccessToken},
		{Name: models.KeyRefreshToken, Value: cred.RefreshToken},
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}

// Clear removes both tokens
func (r *credentialRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("name IN ?", []string{models.KeyAccessToken, models.KeyRefreshToken}).
		Delete(&models.SessionCredential{}).Error
}
