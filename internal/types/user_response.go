package types

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse records the single evaluation of a learner's answer to a unit.
// The unique index on unit_id enforces one response per unit at the store.
type UserResponse struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	UnitID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"unit_id"`
	Answer    string    `gorm:"column:answer;not null" json:"answer"`
	Feedback  string    `gorm:"column:feedback" json:"feedback"`
	IsCorrect bool      `gorm:"column:is_correct" json:"is_correct"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserResponse) TableName() string { return "user_response" }
