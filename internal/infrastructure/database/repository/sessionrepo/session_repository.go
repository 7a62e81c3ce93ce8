package sessionrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/infrastructure/database/dbschema"
	"betline-server/services/support-api/internal/utils/functional"
)

// Repository is the gorm-backed session store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *session.Session) error {
	schema := dbschema.NewSchemaSession(s)
	if err := r.db.WithContext(ctx).Create(schema).Error; err != nil {
		return err
	}
	s.ID = schema.ID
	s.CreatedAt = schema.CreatedAt
	s.UpdatedAt = schema.UpdatedAt
	return nil
}

func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*session.Session, error) {
	var schema dbschema.Session
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&schema).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schema.EtoD(), nil
}

func (r *Repository) Update(ctx context.Context, s *session.Session) error {
	schema := dbschema.NewSchemaSession(s)
	// Save with selected columns so cleared ticket context and KYC state
	// overwrite the stored JSON with NULL.
	return r.db.WithContext(ctx).
		Model(&dbschema.Session{}).
		Where("id = ?", s.ID).
		Select("AccountID", "Status", "Context", "LastTicketID", "LastTicketRecord", "LastTicketVerifiedAt", "KycState", "LastActivityAt").
		Updates(schema).Error
}

func (r *Repository) AppendMessage(ctx context.Context, m *session.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		if err := tx.Model(&dbschema.Message{}).
			Where("session_id = ?", m.SessionID).
			Select("COALESCE(MAX(sequence_number), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}
		m.SequenceNumber = int(maxSeq) + 1

		schema := dbschema.NewSchemaMessage(m)
		if err := tx.Create(schema).Error; err != nil {
			return err
		}
		m.ID = schema.ID
		m.CreatedAt = schema.CreatedAt
		return nil
	})
}

func (r *Repository) FindMessages(ctx context.Context, sessionID uint) ([]*session.Message, error) {
	var schemas []dbschema.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence_number ASC").
		Find(&schemas).Error
	if err != nil {
		return nil, err
	}
	return functional.Map(schemas, func(m dbschema.Message) *session.Message {
		return m.EtoD()
	}), nil
}

func (r *Repository) CloseIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&dbschema.Session{}).
		Where("status = ? AND last_activity_at < ?", session.StatusActive, cutoff).
		Update("status", session.StatusClosed)
	return result.RowsAffected, result.Error
}
