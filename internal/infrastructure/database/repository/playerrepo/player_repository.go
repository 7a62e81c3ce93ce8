package playerrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/infrastructure/database/dbschema"
)

// Repository looks up identity records and writes back the verification
// flag on KYC completion.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByAccountID(ctx context.Context, accountID string) (*kyc.Player, error) {
	var schema dbschema.Player
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&schema).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schema.EtoD(), nil
}

func (r *Repository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*kyc.Player, error) {
	var schema dbschema.Player
	err := r.db.WithContext(ctx).Where("document_number = ?", documentNumber).First(&schema).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schema.EtoD(), nil
}

func (r *Repository) MarkVerified(ctx context.Context, accountID, documentNumber string) error {
	result := r.db.WithContext(ctx).
		Model(&dbschema.Player{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"verified":        true,
			"document_number": documentNumber,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
