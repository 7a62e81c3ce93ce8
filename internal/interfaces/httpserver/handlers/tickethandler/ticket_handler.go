package tickethandler

import (
	"context"

	"betline-server/services/support-api/internal/domain/ticket"
	ticketrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/ticket"
	ticketresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/ticket"
)

// TicketHandler handles direct ticket resolution HTTP requests
type TicketHandler struct {
	ticketService *ticket.Service
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *ticket.Service) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Resolve runs the resolution pipeline outside of a conversation. Failures
// are reported inside the response body, not as transport errors.
func (h *TicketHandler) Resolve(
	ctx context.Context,
	req ticketrequests.ResolveRequest,
	progress ticket.ProgressFunc,
) *ticketresponses.ResolveResponse {
	result := h.ticketService.Resolve(ctx, ticket.ResolveInput{
		ImageURL:   req.ImageURL,
		ExplicitID: req.TicketID,
		Question:   req.Question,
		Progress:   progress,
	})
	return ticketresponses.NewResolveResponse(result)
}
