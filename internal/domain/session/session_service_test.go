package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"betline-server/services/support-api/internal/utils/platformerrors"
)

type fakeRepo struct {
	sessions map[string]*Session
	messages map[uint][]*Message
	nextID   uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[string]*Session),
		messages: make(map[uint][]*Message),
	}
}

func (r *fakeRepo) Create(_ context.Context, s *Session) error {
	r.nextID++
	s.ID = r.nextID
	r.sessions[s.PublicID] = s
	return nil
}

func (r *fakeRepo) FindByPublicID(_ context.Context, publicID string) (*Session, error) {
	return r.sessions[publicID], nil
}

func (r *fakeRepo) Update(_ context.Context, s *Session) error {
	r.sessions[s.PublicID] = s
	return nil
}

func (r *fakeRepo) AppendMessage(_ context.Context, m *Message) error {
	r.nextID++
	m.ID = r.nextID
	m.SequenceNumber = len(r.messages[m.SessionID]) + 1
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return nil
}

func (r *fakeRepo) FindMessages(_ context.Context, sessionID uint) ([]*Message, error) {
	return r.messages[sessionID], nil
}

func (r *fakeRepo) CloseIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var closed int64
	for _, s := range r.sessions {
		if s.Status == StatusActive && s.LastActivityAt.Before(cutoff) {
			s.Status = StatusClosed
			closed++
		}
	}
	return closed, nil
}

func TestGetOrCreate(t *testing.T) {
	tests := []struct {
		name        string
		publicID    string
		wantErrType platformerrors.ErrorType
		wantNew     bool
	}{
		{
			name:     "empty id creates a fresh session",
			publicID: "",
			wantNew:  true,
		},
		{
			name:        "unknown id is not found",
			publicID:    "sess_doesnotexist",
			wantErrType: platformerrors.ErrorTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newFakeRepo())
			sess, err := svc.GetOrCreate(context.Background(), tt.publicID, nil)

			if tt.wantErrType != "" {
				if err == nil {
					t.Fatalf("GetOrCreate() expected error, got nil")
				}
				if !platformerrors.IsErrorType(err, tt.wantErrType) {
					t.Errorf("GetOrCreate() error type = %v, want %v", err, tt.wantErrType)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetOrCreate() unexpected error: %v", err)
			}
			if tt.wantNew {
				if !strings.HasPrefix(sess.PublicID, "sess_") {
					t.Errorf("PublicID = %q, want sess_ prefix", sess.PublicID)
				}
				if sess.Status != StatusActive {
					t.Errorf("Status = %q, want %q", sess.Status, StatusActive)
				}
				if sess.Context != ContextGeneral {
					t.Errorf("Context = %q, want %q", sess.Context, ContextGeneral)
				}
				if sess.LastVerifiedTicket != nil || sess.KycState != nil {
					t.Errorf("fresh session carries verification state: %+v", sess)
				}
			}
		})
	}
}

func TestGetOrCreate_ExistingSession(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.GetOrCreate(ctx, created.PublicID, nil)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("lookup returned session %d, want %d", found.ID, created.ID)
	}
}

func TestAppendMessage_RoundTripOrdering(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	sess, err := svc.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	turns := []struct {
		role    Role
		content string
	}{
		{RoleUser, "Hola"},
		{RoleAssistant, "¡Hola! ¿En qué puedo ayudarte?"},
		{RoleUser, "mi ticket es 0000085426"},
	}
	for _, turn := range turns {
		if _, err := svc.AppendMessage(ctx, sess, turn.role, turn.content, nil, nil); err != nil {
			t.Fatalf("AppendMessage(%q): %v", turn.content, err)
		}
	}

	messages, err := svc.GetMessages(ctx, sess)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != len(turns) {
		t.Fatalf("len(messages) = %d, want %d", len(messages), len(turns))
	}
	for i, msg := range messages {
		if msg.Role != turns[i].role {
			t.Errorf("message %d role = %q, want %q", i, msg.Role, turns[i].role)
		}
		if msg.Content != turns[i].content {
			t.Errorf("message %d content = %q, want %q", i, msg.Content, turns[i].content)
		}
		if msg.SequenceNumber != i+1 {
			t.Errorf("message %d sequence = %d, want %d", i, msg.SequenceNumber, i+1)
		}
		if !strings.HasPrefix(msg.PublicID, "msg_") {
			t.Errorf("message %d PublicID = %q, want msg_ prefix", i, msg.PublicID)
		}
	}
}

func TestAppendMessage_ClosedSessionRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	sess, err := svc.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := svc.Close(ctx, sess); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, err = svc.AppendMessage(ctx, sess, RoleUser, "hola?", nil, nil)
	if err == nil {
		t.Fatal("AppendMessage on closed session succeeded, want error")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeStateViolation) {
		t.Errorf("error type = %v, want STATE_VIOLATION", err)
	}
}

func TestCloseIdle(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	stale, err := svc.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create stale: %v", err)
	}
	stale.LastActivityAt = time.Now().UTC().Add(-48 * time.Hour)

	fresh, err := svc.GetOrCreate(ctx, "", nil)
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	closed, err := svc.CloseIdle(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("CloseIdle: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}
	if stale.Status != StatusClosed {
		t.Errorf("stale session status = %q, want closed", stale.Status)
	}
	if fresh.Status != StatusActive {
		t.Errorf("fresh session status = %q, want active", fresh.Status)
	}
}
