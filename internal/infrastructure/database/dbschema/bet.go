package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"betline-server/services/support-api/internal/domain/ticket"
	"betline-server/services/support-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(BetTicket{})
}

// BetTicket represents the ledger view of a bet. This service only reads it.
type BetTicket struct {
	BaseModel
	LocalID         string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	SignatureID     string          `gorm:"type:varchar(100);index"`
	Stake           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency        string          `gorm:"type:varchar(10);not null"`
	TotalOdds       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PotentialPayout decimal.Decimal `gorm:"type:numeric(14,2)"`
	Result          ticket.Result   `gorm:"type:varchar(20);index;not null;default:'pending'"`
	SettledAt       *time.Time      `gorm:"type:timestamp"`
	Events          JSONBetEvents   `gorm:"type:jsonb"`
}

// JSONBetEvents is a custom type for []ticket.BetEvent stored as JSON
type JSONBetEvents []ticket.BetEvent

func (j JSONBetEvents) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBetEvents) Scan(value any) error {
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

// EtoD converts database schema to domain ticket (Entity to Domain)
func (b *BetTicket) EtoD() *ticket.BetTicket {
	return &ticket.BetTicket{
		LocalID:         b.LocalID,
		SignatureID:     b.SignatureID,
		Stake:           b.Stake,
		Currency:        b.Currency,
		TotalOdds:       b.TotalOdds,
		PotentialPayout: b.PotentialPayout,
		Result:          b.Result,
		SettledAt:       b.SettledAt,
		Events:          []ticket.BetEvent(b.Events),
	}
}
