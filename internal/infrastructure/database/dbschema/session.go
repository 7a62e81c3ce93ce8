package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"betline-server/services/support-api/internal/domain/session"
	"betline-server/services/support-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Session{})
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Session represents the database schema for chat sessions
type Session struct {
	BaseModel
	PublicID  string             `gorm:"type:varchar(50);uniqueIndex;not null"`
	AccountID *string            `gorm:"type:varchar(64);index"`
	Status    session.Status     `gorm:"type:varchar(20);index;not null;default:'active'"`
	Context   session.ContextTag `gorm:"type:varchar(30);not null;default:'general'"`

	// Last verified ticket context; Record is the opaque resolved ledger row
	LastTicketID         *string        `gorm:"type:varchar(50)"`
	LastTicketRecord     datatypes.JSON `gorm:"type:jsonb"`
	LastTicketVerifiedAt *time.Time     `gorm:"type:timestamp"`

	KycState       JSONKycState `gorm:"type:jsonb"`
	LastActivityAt time.Time    `gorm:"index;not null"`

	Messages []Message `gorm:"foreignKey:SessionID"`
}

// Message represents the database schema for conversation messages
type Message struct {
	BaseModel
	SessionID      uint                `gorm:"index:idx_message_session_sequence;not null"`
	Session        Session             `gorm:"foreignKey:SessionID"`
	PublicID       string              `gorm:"type:varchar(50);uniqueIndex;not null"`
	Role           session.Role        `gorm:"type:varchar(20);not null"`
	Content        string              `gorm:"type:text"`
	Images         JSONStringSlice     `gorm:"type:jsonb"`
	Metadata       JSONMessageMetadata `gorm:"type:jsonb"`
	SequenceNumber int                 `gorm:"index:idx_message_session_sequence;not null"`
}

// JSONKycState is a custom type for session.KycState stored as JSON
type JSONKycState struct {
	*session.KycState
}

func (j JSONKycState) Value() (driver.Value, error) {
	if j.KycState == nil {
		return nil, nil
	}
	return json.Marshal(j.KycState)
}

func (j *JSONKycState) Scan(value any) error {
	if value == nil {
		j.KycState = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	state := &session.KycState{}
	if err := json.Unmarshal(bytes, state); err != nil {
		return err
	}
	j.KycState = state
	return nil
}

// JSONStringSlice is a custom type for []string stored as JSON
type JSONStringSlice []string

func (j JSONStringSlice) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONStringSlice) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONMessageMetadata is a custom type for session.MessageMetadata stored as JSON
type JSONMessageMetadata struct {
	*session.MessageMetadata
}

func (j JSONMessageMetadata) Value() (driver.Value, error) {
	if j.MessageMetadata == nil {
		return nil, nil
	}
	return json.Marshal(j.MessageMetadata)
}

func (j *JSONMessageMetadata) Scan(value any) error {
	if value == nil {
		j.MessageMetadata = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	meta := &session.MessageMetadata{}
	if err := json.Unmarshal(bytes, meta); err != nil {
		return err
	}
	j.MessageMetadata = meta
	return nil
}

// NewSchemaSession creates a database schema from a domain session
func NewSchemaSession(s *session.Session) *Session {
	schema := &Session{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		PublicID:       s.PublicID,
		AccountID:      s.AccountID,
		Status:         s.Status,
		Context:        s.Context,
		KycState:       JSONKycState{s.KycState},
		LastActivityAt: s.LastActivityAt,
	}
	if s.LastVerifiedTicket != nil {
		ticketID := s.LastVerifiedTicket.TicketID
		verifiedAt := s.LastVerifiedTicket.VerifiedAt
		schema.LastTicketID = &ticketID
		schema.LastTicketRecord = datatypes.JSON(s.LastVerifiedTicket.Record)
		schema.LastTicketVerifiedAt = &verifiedAt
	}
	return schema
}

// EtoD converts database schema to domain session (Entity to Domain)
func (s *Session) EtoD() *session.Session {
	domain := &session.Session{
		ID:             s.ID,
		PublicID:       s.PublicID,
		AccountID:      s.AccountID,
		Status:         s.Status,
		Context:        s.Context,
		KycState:       s.KycState.KycState,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		LastActivityAt: s.LastActivityAt,
	}
	if s.LastTicketID != nil {
		domain.LastVerifiedTicket = &session.TicketContext{
			TicketID: *s.LastTicketID,
			Record:   json.RawMessage(s.LastTicketRecord),
		}
		if s.LastTicketVerifiedAt != nil {
			domain.LastVerifiedTicket.VerifiedAt = *s.LastTicketVerifiedAt
		}
	}
	return domain
}

// NewSchemaMessage creates a database schema from a domain message
func NewSchemaMessage(m *session.Message) *Message {
	return &Message{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		SessionID:      m.SessionID,
		PublicID:       m.PublicID,
		Role:           m.Role,
		Content:        m.Content,
		Images:         JSONStringSlice(m.Images),
		Metadata:       JSONMessageMetadata{m.Metadata},
		SequenceNumber: m.SequenceNumber,
	}
}

// EtoD converts database schema to domain message (Entity to Domain)
func (m *Message) EtoD() *session.Message {
	return &session.Message{
		ID:             m.ID,
		SessionID:      m.SessionID,
		PublicID:       m.PublicID,
		Role:           m.Role,
		Content:        m.Content,
		Images:         []string(m.Images),
		Metadata:       m.Metadata.MessageMetadata,
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
	}
}
