package types

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
)

type StudySession struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PassageReference string         `gorm:"column:passage_reference;not null" json:"passage_reference"`
	Status           SessionStatus  `gorm:"column:status;not null;default:'ACTIVE'" json:"status"`
	Units            []TrainingUnit `gorm:"foreignKey:SessionID;references:ID" json:"units,omitempty"`
	Responses        []UserResponse `gorm:"foreignKey:SessionID;references:ID" json:"responses,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (StudySession) TableName() string { return "study_session" }
