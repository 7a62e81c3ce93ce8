package chat

// TurnRequest is the body of POST /v1/chat/turns.
type TurnRequest struct {
	SessionID string   `json:"session_id"`
	Text      string   `json:"text"`
	Images    []string `json:"images,omitempty"`
	AccountID *string  `json:"account_id,omitempty"`
	Stream    bool     `json:"stream,omitempty"`
}
