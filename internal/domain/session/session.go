package session

import (
	"context"
	"encoding/json"
	"time"

	"betline-server/services/support-api/internal/utils/idgen"
)

// Status of a session lifecycle
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// ContextTag is an advisory marker of the session's current topic. Routing
// never trusts it alone; the explicit ticket/KYC state below is authoritative.
type ContextTag string

const (
	ContextGeneral            ContextTag = "general"
	ContextTicketVerification ContextTag = "ticket_verification"
	ContextKyc                ContextTag = "kyc"
)

// KycStage values form a strict forward-only chain. The only backward
// transition is a full reset to not_started.
type KycStage string

const (
	KycStageNotStarted    KycStage = "not_started"
	KycStageFrontDocument KycStage = "front_document"
	KycStageBackDocument  KycStage = "back_document"
	KycStageSelfie        KycStage = "selfie"
	KycStageCompleted     KycStage = "completed"
)

// TicketContext is the memory of the last successfully resolved ticket.
// Record holds the resolved ledger row as opaque JSON used to ground
// follow-up answers.
type TicketContext struct {
	TicketID   string          `json:"ticket_id"`
	Record     json.RawMessage `json:"record,omitempty"`
	VerifiedAt time.Time       `json:"verified_at"`
}

// KycState is the per-session identity verification progress.
type KycState struct {
	CurrentStage   KycStage   `json:"current_stage"`
	DocumentNumber string     `json:"document_number,omitempty"`
	FullName       string     `json:"full_name,omitempty"`
	DateOfBirth    string     `json:"date_of_birth,omitempty"`
	FrontImageRef  string     `json:"front_image_ref,omitempty"`
	BackImageRef   string     `json:"back_image_ref,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Session is the aggregate root for one conversation. It is mutated by at
// most one in-flight turn at a time; per-session serialization is the
// caller's responsibility (one logical delivery channel per session).
type Session struct {
	ID                 uint
	PublicID           string
	AccountID          *string
	Status             Status
	Context            ContextTag
	LastVerifiedTicket *TicketContext
	KycState           *KycState
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LastActivityAt     time.Time
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageMetadata carries processing details of an assistant reply.
type MessageMetadata struct {
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Model     string `json:"model,omitempty"`
}

// Message is one turn contribution. Append-only, immutable once created,
// ordered within its session by SequenceNumber.
type Message struct {
	ID             uint
	PublicID       string
	SessionID      uint
	Role           Role
	Content        string
	Images         []string
	Metadata       *MessageMetadata
	SequenceNumber int
	CreatedAt      time.Time
}

// Repository abstracts session persistence. AppendMessage assigns the next
// sequence number for the session.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByPublicID(ctx context.Context, publicID string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	AppendMessage(ctx context.Context, m *Message) error
	FindMessages(ctx context.Context, sessionID uint) ([]*Message, error)
	CloseIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// New creates an active session with a generated public id.
func New(accountID *string) (*Session, error) {
	publicID, err := idgen.GenerateSecureID("sess", 16)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		PublicID:       publicID,
		AccountID:      accountID,
		Status:         StatusActive,
		Context:        ContextGeneral,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
	}, nil
}

func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}

// SetTicketContext remembers a freshly resolved ticket and tags the topic.
func (s *Session) SetTicketContext(ticketID string, record json.RawMessage) {
	s.LastVerifiedTicket = &TicketContext{
		TicketID:   ticketID,
		Record:     record,
		VerifiedAt: time.Now().UTC(),
	}
	s.Context = ContextTicketVerification
}

// ClearTicketContext drops the active ticket topic and returns to general.
func (s *Session) ClearTicketContext() {
	s.LastVerifiedTicket = nil
	s.Context = ContextGeneral
}

// EnsureKycState returns the session's KYC state, initializing it at
// not_started on first use.
func (s *Session) EnsureKycState() *KycState {
	if s.KycState == nil {
		s.KycState = &KycState{
			CurrentStage: KycStageNotStarted,
			StartedAt:    time.Now().UTC(),
		}
	}
	return s.KycState
}

// ResetKycState wipes all KYC progress back to not_started.
func (s *Session) ResetKycState() {
	s.KycState = nil
	if s.Context == ContextKyc {
		s.Context = ContextGeneral
	}
}
