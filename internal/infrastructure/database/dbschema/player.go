package dbschema

import (
	"betline-server/services/support-api/internal/domain/kyc"
	"betline-server/services/support-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Player{})
}

// Player represents a platform identity record. Read-only here except for
// the verification write-back.
type Player struct {
	BaseModel
	AccountID      string `gorm:"type:varchar(64);uniqueIndex;not null"`
	FullName       string `gorm:"type:varchar(256)"`
	DocumentNumber string `gorm:"type:varchar(64);index"`
	BirthDate      string `gorm:"type:varchar(20)"`
	Verified       bool   `gorm:"not null;default:false"`
}

// EtoD converts database schema to domain player (Entity to Domain)
func (p *Player) EtoD() *kyc.Player {
	return &kyc.Player{
		AccountID:      p.AccountID,
		FullName:       p.FullName,
		DocumentNumber: p.DocumentNumber,
		BirthDate:      p.BirthDate,
		Verified:       p.Verified,
	}
}
