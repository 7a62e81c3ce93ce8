package session

// AppendMessageRequest is the body of POST /v1/sessions/:id/messages.
type AppendMessageRequest struct {
	Role    string   `json:"role" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images,omitempty"`
}
