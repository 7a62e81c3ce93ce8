package session

import (
	"time"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/utils/functional"
)

// SessionResponse is the API shape of a support session.
type SessionResponse struct {
	ID             string     `json:"id"`
	AccountID      *string    `json:"account_id,omitempty"`
	Status         string     `json:"status"`
	Context        string     `json:"context"`
	ActiveTicketID *string    `json:"active_ticket_id,omitempty"`
	KycStage       *string    `json:"kyc_stage,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
}

// MessageResponse is the API shape of one transcript message.
type MessageResponse struct {
	ID             string    `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Images         []string  `json:"images,omitempty"`
	SequenceNumber int       `json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageListResponse wraps the ordered transcript.
type MessageListResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []MessageResponse `json:"messages"`
}

func NewSessionResponse(s *session.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:             s.PublicID,
		AccountID:      s.AccountID,
		Status:         string(s.Status),
		Context:        string(s.Context),
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
	}
	if s.LastVerifiedTicket != nil {
		resp.ActiveTicketID = &s.LastVerifiedTicket.TicketID
	}
	if s.KycState != nil {
		stage := string(s.KycState.CurrentStage)
		resp.KycStage = &stage
	}
	return resp
}

func NewMessageResponse(m *session.Message) MessageResponse {
	return MessageResponse{
		ID:             m.PublicID,
		Role:           string(m.Role),
		Content:        m.Content,
		Images:         m.Images,
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
	}
}

func NewMessageListResponse(sessionPublicID string, messages []*session.Message) *MessageListResponse {
	return &MessageListResponse{
		SessionID: sessionPublicID,
		Messages:  functional.Map(messages, NewMessageResponse),
	}
}
