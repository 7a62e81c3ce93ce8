package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/sessionhandler"
	sessionresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/session"
)

type memRepo struct {
	sessions map[string]*session.Session
	messages map[uint][]*session.Message
	nextID   uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions: make(map[string]*session.Session),
		messages: make(map[uint][]*session.Message),
	}
}

func (r *memRepo) Create(_ context.Context, s *session.Session) error {
	r.nextID++
	s.ID = r.nextID
	r.sessions[s.PublicID] = s
	return nil
}

func (r *memRepo) FindByPublicID(_ context.Context, publicID string) (*session.Session, error) {
	return r.sessions[publicID], nil
}

func (r *memRepo) Update(_ context.Context, s *session.Session) error {
	r.sessions[s.PublicID] = s
	return nil
}

func (r *memRepo) AppendMessage(_ context.Context, m *session.Message) error {
	m.SequenceNumber = len(r.messages[m.SessionID]) + 1
	r.messages[m.SessionID] = append(r.messages[m.SessionID], m)
	return nil
}

func (r *memRepo) FindMessages(_ context.Context, sessionID uint) ([]*session.Message, error) {
	return r.messages[sessionID], nil
}

func (r *memRepo) CloseIdleBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func setupRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := session.NewService(repo)
	route := NewSessionRoute(sessionhandler.NewSessionHandler(service))

	engine := gin.New()
	route.RegisterRouter(engine.Group("/v1"))
	return engine
}

func seedSession(repo *memRepo) *session.Session {
	sess, _ := session.New(nil)
	_ = repo.Create(context.Background(), sess)
	return sess
}

func TestGetSession(t *testing.T) {
	repo := newMemRepo()
	sess := seedSession(repo)
	engine := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sess.PublicID, nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp sessionresponses.SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != sess.PublicID {
		t.Fatalf("expected session id %q, got %q", sess.PublicID, resp.ID)
	}
	if resp.Status != string(session.StatusActive) {
		t.Fatalf("expected active status, got %q", resp.Status)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	engine := setupRouter(newMemRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/sess_missing", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAppendAndListMessages(t *testing.T) {
	repo := newMemRepo()
	sess := seedSession(repo)
	engine := setupRouter(repo)

	body, _ := json.Marshal(map[string]any{"role": "user", "content": "hola"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sess.PublicID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sess.PublicID+"/messages", nil)
	engine.ServeHTTP(w, req)

	var list sessionresponses.MessageListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(list.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(list.Messages))
	}
	if list.Messages[0].Content != "hola" || list.Messages[0].SequenceNumber != 1 {
		t.Fatalf("unexpected message: %+v", list.Messages[0])
	}
}

func TestAppendMessage_InvalidRole(t *testing.T) {
	repo := newMemRepo()
	sess := seedSession(repo)
	engine := setupRouter(repo)

	body, _ := json.Marshal(map[string]any{"role": "system", "content": "x"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sess.PublicID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCloseSession_ThenAppendRejected(t *testing.T) {
	repo := newMemRepo()
	sess := seedSession(repo)
	engine := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sess.PublicID+"/close", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on close, got %d", w.Code)
	}

	body, _ := json.Marshal(map[string]any{"role": "user", "content": "hola"})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sess.PublicID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on append to closed session, got %d", w.Code)
	}
}
