package dbschema

import "time"

// BaseModel is the common column set for all schemas
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
