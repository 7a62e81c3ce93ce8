package chathandler

import (
	"context"

	"betline-server/services/support-api/internal/domain/router"
	"betline-server/services/support-api/internal/domain/ticket"
	chatrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/chat"
	chatresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/chat"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

// ChatHandler handles conversational turn HTTP requests
type ChatHandler struct {
	routerService *router.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(routerService *router.Service) *ChatHandler {
	return &ChatHandler{routerService: routerService}
}

// ProcessTurn runs one conversational turn. The progress callback is optional
// and receives ticket resolution checkpoints when the turn enters that flow.
func (h *ChatHandler) ProcessTurn(
	ctx context.Context,
	req chatrequests.TurnRequest,
	progress ticket.ProgressFunc,
) (*chatresponses.TurnResponse, error) {
	out, err := h.routerService.ProcessTurn(ctx, router.TurnInput{
		SessionPublicID: req.SessionID,
		Text:            req.Text,
		Images:          req.Images,
		AccountID:       req.AccountID,
		Progress:        progress,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to process turn")
	}
	return chatresponses.NewTurnResponse(out), nil
}
