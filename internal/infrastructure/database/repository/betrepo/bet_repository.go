package betrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/infrastructure/database/dbschema"
)

// Repository reads the bet ledger. No write path exists by design of the
// ledger ownership.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByLocalID(ctx context.Context, localID string) (*ticket.BetTicket, error) {
	var schema dbschema.BetTicket
	err := r.db.WithContext(ctx).Where("local_id = ?", localID).First(&schema).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schema.EtoD(), nil
}
