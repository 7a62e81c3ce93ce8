package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/infrastructure/metrics"
	"betline-server/services/support-api/internal/interfaces/httpserver/handlers/chathandler"
	"betline-server/services/support-api/internal/interfaces/httpserver/middlewares"
	chatrequests "betline-server/services/support-api/internal/interfaces/httpserver/requests/chat"
	"betline-server/services/support-api/internal/interfaces/httpserver/responses"
	chatresponses "betline-server/services/support-api/internal/interfaces/httpserver/responses/chat"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

type ChatRoute struct {
	handler *chathandler.ChatHandler
}

func NewChatRoute(handler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{handler: handler}
}

func (route *ChatRoute) RegisterRouter(router gin.IRouter) {
	chat := router.Group("/chat")
	chat.POST("/turns", route.processTurn)
}

// processTurn godoc
// @Summary Process a conversational turn
// @Description Runs one user turn through the flow router. With stream=true the
// @Description response is SSE: progress events during ticket resolution, then a final done event.
// @Tags Chat API
// @Accept json
// @Produce json
// @Param stream query bool false "Stream progress checkpoints as SSE"
// @Param request body chatrequests.TurnRequest true "Turn input"
// @Success 200 {object} chatresponses.TurnResponse "Turn reply"
// @Failure 400 {object} responses.ErrorResponse "Invalid request body"
// @Failure 404 {object} responses.ErrorResponse "Session not found"
// @Failure 409 {object} responses.ErrorResponse "Session is closed"
// @Router /v1/chat/turns [post]
func (route *ChatRoute) processTurn(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req chatrequests.TurnRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "b6e2f9c4-7a1d-4583-9c0e-5f8b3d6a2e97")
		return
	}
	if reqCtx.Query("stream") == "true" {
		req.Stream = true
	}

	if !req.Stream {
		resp, err := route.handler.ProcessTurn(ctx, req, nil)
		if err != nil {
			responses.HandleError(reqCtx, err, "Failed to process turn")
			return
		}
		reqCtx.JSON(http.StatusOK, resp)
		return
	}

	flusher, ok := middlewares.PrepareSSE(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "streaming not supported", "3a9c7e5f-1d4b-4826-a0f3-8e6b2c9d5a71")
		return
	}

	metrics.ActiveProgressStreams.Inc()
	defer metrics.ActiveProgressStreams.Dec()

	// Progress callbacks must never block resolution, so events are dropped
	// when the buffer is full.
	events := make(chan chatresponses.ProgressEvent, 16)

	type turnResult struct {
		resp *chatresponses.TurnResponse
		err  error
	}
	done := make(chan turnResult, 1)

	go func() {
		resp, err := route.handler.ProcessTurn(ctx, req, func(stage ticket.ProgressStage, percent int) {
			select {
			case events <- chatresponses.ProgressEvent{Stage: string(stage), Percent: percent}:
			default:
			}
		})
		done <- turnResult{resp: resp, err: err}
	}()

	for {
		select {
		case event := <-events:
			writeSSEEvent(reqCtx, "progress", event)
			flusher.Flush()
		case result := <-done:
			draining := true
			for draining {
				select {
				case event := <-events:
					writeSSEEvent(reqCtx, "progress", event)
				default:
					draining = false
				}
			}
			if result.err != nil {
				writeSSEEvent(reqCtx, "error", gin.H{"message": result.err.Error()})
			} else {
				writeSSEEvent(reqCtx, "done", result.resp)
			}
			flusher.Flush()
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeSSEEvent(c *gin.Context, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
}
