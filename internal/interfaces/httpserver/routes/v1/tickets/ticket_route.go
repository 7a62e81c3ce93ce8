package tickets

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/tickethandler"
	ticketrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/ticket"
	"betline-server/services/support-api/internal/interfaces/httpserver/responses"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

type TicketRoute struct {
	handler *tickethandler.TicketHandler
}

func NewTicketRoute(handler *tickethandler.TicketHandler) *TicketRoute {
	return &TicketRoute{handler: handler}
}

func (route *TicketRoute) RegisterRouter(router gin.IRouter) {
	tickets := router.Group("/tickets")
	tickets.POST("/resolve", route.resolveTicket)
}

// resolveTicket godoc
// @Summary Resolve a bet ticket
// @Description Resolves a ticket by explicit id or by extracting the id from a
// @Description ticket photo. Resolution failures are reported in the body, not as HTTP errors.
// @Tags Tickets API
// @Accept json
// @Produce json
// @Param request body ticketrequests.ResolveRequest true "Resolution input"
// @Success 200 {object} ticketresponses.ResolveResponse "Resolution outcome"
// @Failure 400 {object} responses.ErrorResponse "Invalid request body"
// @Router /v1/tickets/resolve [post]
func (route *TicketRoute) resolveTicket(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req ticketrequests.ResolveRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "d2a6f8c4-1b7e-4395-a0c6-9e3d5f2b8a74")
		return
	}
	if req.TicketID == "" && req.ImageURL == "" {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "ticket_id or image_url is required", "8f1c5e9a-4d7b-4268-b3f0-6a2e8c4d9f51")
		return
	}

	resp := route.handler.Resolve(ctx, req, nil)
	reqCtx.JSON(http.StatusOK, resp)
}
