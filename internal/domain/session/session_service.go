package session

import (
	"context"
	"time"

	"betline-server/services/support-api/internal/infrastructure/metrics"
	"betline-server/services/support-api/internal/utils/idgen"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// Service owns session lifecycle and conversation history. It assumes the
// caller delivers at most one turn per session at a time; state writes are
// read-modify-write without cross-turn locking.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate resolves an existing session by public id, or creates a fresh
// one when publicID is empty (first turn of a conversation).
func (s *Service) GetOrCreate(ctx context.Context, publicID string, accountID *string) (*Session, error) {
	if publicID == "" {
		return s.createSession(ctx, accountID)
	}
	sess, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to find session")
	}
	if sess == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "session not found", nil, "3a8f1c6d-2e4b-49d7-8f0a-5b9c2d7e1a36")
	}
	if accountID != nil && sess.AccountID == nil {
		sess.AccountID = accountID
		if err := s.repo.Update(ctx, sess); err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to attach account to session")
		}
	}
	return sess, nil
}

// GetByPublicID returns an existing session or a NOT_FOUND error.
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*Session, error) {
	sess, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to find session")
	}
	if sess == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "session not found", nil, "7c2e9b4a-1d6f-4a83-b5c0-9e3f8a2d6b51")
	}
	return sess, nil
}

func (s *Service) createSession(ctx context.Context, accountID *string) (*Session, error) {
	sess, err := New(accountID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate session id")
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create session")
	}
	metrics.SessionsCreatedTotal.Inc()
	return sess, nil
}

// AppendMessage appends one turn contribution to the session history.
// Closed sessions reject new messages.
func (s *Service) AppendMessage(ctx context.Context, sess *Session, role Role, content string, images []string, metadata *MessageMetadata) (*Message, error) {
	if !sess.IsActive() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStateViolation, "session is closed", nil, "b6d1f3a8-4c7e-4952-a0b9-2e5d8c1f7a64")
	}

	publicID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate message id")
	}

	msg := &Message{
		PublicID:  publicID,
		SessionID: sess.ID,
		Role:      role,
		Content:   content,
		Images:    images,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to append message")
	}

	sess.LastActivityAt = msg.CreatedAt
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to touch session activity")
	}
	return msg, nil
}

// GetMessages returns the session history ordered by sequence number.
func (s *Service) GetMessages(ctx context.Context, sess *Session) ([]*Message, error) {
	messages, err := s.repo.FindMessages(ctx, sess.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load messages")
	}
	return messages, nil
}

// Save persists in-place mutations of the session aggregate (ticket context,
// KYC state, topic tag).
func (s *Service) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, sess); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to save session")
	}
	return nil
}

// Close marks the session closed. Sessions are never deleted.
func (s *Service) Close(ctx context.Context, sess *Session) error {
	if sess.Status == StatusClosed {
		return nil
	}
	sess.Status = StatusClosed
	if err := s.Save(ctx, sess); err != nil {
		return err
	}
	metrics.SessionsClosedTotal.WithLabelValues("explicit").Inc()
	return nil
}

// CloseIdle closes sessions with no activity since now minus ttl. Invoked
// from the scheduler.
func (s *Service) CloseIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	closed, err := s.repo.CloseIdleBefore(ctx, cutoff)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to close idle sessions")
	}
	if closed > 0 {
		metrics.SessionsClosedTotal.WithLabelValues("idle").Add(float64(closed))
	}
	return closed, nil
}
