package sessionhandler

import (
	"context"

	"betline-server/services/support-api/internal/domain/session"
	sessionrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/session"
	sessionresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/session"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// SessionHandler handles session-related HTTP requests
type SessionHandler struct {
	sessionService *session.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *session.Service) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// GetSession retrieves a session by public ID
func (h *SessionHandler) GetSession(ctx context.Context, publicID string) (*sessionresponses.SessionResponse, error) {
	sess, err := h.sessionService.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get session")
	}
	return sessionresponses.NewSessionResponse(sess), nil
}

// ListMessages returns the ordered transcript of a session
func (h *SessionHandler) ListMessages(ctx context.Context, publicID string) (*sessionresponses.MessageListResponse, error) {
	sess, err := h.sessionService.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get session")
	}
	messages, err := h.sessionService.GetMessages(ctx, sess)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list messages")
	}
	return sessionresponses.NewMessageListResponse(sess.PublicID, messages), nil
}

// AppendMessage appends a message to a session transcript
func (h *SessionHandler) AppendMessage(
	ctx context.Context,
	publicID string,
	req sessionrequests.AppendMessageRequest,
) (*sessionresponses.MessageResponse, error) {
	role := session.Role(req.Role)
	if role != session.RoleUser && role != session.RoleAssistant {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"role must be user or assistant", nil, "8c3f6a1d-5e9b-4274-b0c8-3d7a2f5e9c40")
	}

	sess, err := h.sessionService.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get session")
	}
	message, err := h.sessionService.AppendMessage(ctx, sess, role, req.Content, req.Images, nil)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to append message")
	}
	resp := sessionresponses.NewMessageResponse(message)
	return &resp, nil
}

// CloseSession closes a session explicitly
func (h *SessionHandler) CloseSession(ctx context.Context, publicID string) (*sessionresponses.SessionResponse, error) {
	sess, err := h.sessionService.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get session")
	}
	if err := h.sessionService.Close(ctx, sess); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to close session")
	}
	return sessionresponses.NewSessionResponse(sess), nil
}
