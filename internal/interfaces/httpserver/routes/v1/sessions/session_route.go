package sessions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/sessionhandler"
	sessionrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/session"
	"betline-server/services/support-api/internal/interfaces/httpserver/responses"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

type SessionRoute struct {
	handler *sessionhandler.SessionHandler
}

func NewSessionRoute(handler *sessionhandler.SessionHandler) *SessionRoute {
	return &SessionRoute{handler: handler}
}

func (route *SessionRoute) RegisterRouter(router gin.IRouter) {
	sessions := router.Group("/sessions")
	sessions.GET("/:session_id", route.getSession)
	sessions.GET("/:session_id/messages", route.listMessages)
	sessions.POST("/:session_id/messages", route.appendMessage)
	sessions.POST("/:session_id/close", route.closeSession)
}

// getSession godoc
// @Summary Get a session
// @Tags Sessions API
// @Produce json
// @Param session_id path string true "Session public ID"
// @Success 200 {object} sessionresponses.SessionResponse "Session"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Router /v1/sessions/{session_id} [get]
func (route *SessionRoute) getSession(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	resp, err := route.handler.GetSession(ctx, reqCtx.Param("session_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get session")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// listMessages godoc
// @Summary List session messages in sequence order
// @Tags Sessions API
// @Produce json
// @Param session_id path string true "Session public ID"
// @Success 200 {object} sessionresponses.MessageListResponse "Ordered transcript"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Router /v1/sessions/{session_id}/messages [get]
func (route *SessionRoute) listMessages(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	resp, err := route.handler.ListMessages(ctx, reqCtx.Param("session_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list messages")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// appendMessage godoc
// @Summary Append a message to a session
// @Tags Sessions API
// @Accept json
// @Produce json
// @Param session_id path string true "Session public ID"
// @Param request body sessionrequests.AppendMessageRequest true "Message"
// @Success 200 {object} sessionresponses.MessageResponse "Appended message"
// @Failure 400 {object} responses.ErrorResponse "Invalid request body"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Failure 409 {object} responses.ErrorResponse "Session is closed"
// @Router /v1/sessions/{session_id}/messages [post]
func (route *SessionRoute) appendMessage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req sessionrequests.AppendMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "f4d8b2a6-9c3e-4157-8a0d-6e2f7b5c9d38")
		return
	}

	resp, err := route.handler.AppendMessage(ctx, reqCtx.Param("session_id"), req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to append message")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// closeSession godoc
// @Summary Close a session
// @Tags Sessions API
// @Produce json
// @Param session_id path string true "Session public ID"
// @Success 200 {object} sessionresponses.SessionResponse "Closed session"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Router /v1/sessions/{session_id}/close [post]
func (route *SessionRoute) closeSession(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	resp, err := route.handler.CloseSession(ctx, reqCtx.Param("session_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to close session")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}
