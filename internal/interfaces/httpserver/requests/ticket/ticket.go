package ticket

// ResolveRequest is the body of POST /v1/tickets/resolve. Either an explicit
// ticket id or a ticket image must be provided.
type ResolveRequest struct {
	TicketID string `json:"ticket_id,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Question string `json:"question,omitempty"`
}
