package chat

import (
	"betline-server/services/support-api/internal/domain/router"
)

// TurnResponse is the final payload of POST /v1/chat/turns.
type TurnResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Flow      string `json:"flow"`
}

// ProgressEvent is one SSE progress checkpoint emitted during ticket
// resolution when stream=true.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

func NewTurnResponse(out *router.TurnOutput) *TurnResponse {
	return &TurnResponse{
		SessionID: out.SessionPublicID,
		Reply:     out.Reply,
		Flow:      string(out.FlowType),
	}
}
