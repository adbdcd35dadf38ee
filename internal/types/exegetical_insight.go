package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExegeticalInsight struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	UnitID    uuid.UUID      `gorm:"type:uuid;index" json:"unit_id"`
	Content   string         `gorm:"column:content;not null" json:"content"`
	Tags      datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ExegeticalInsight) TableName() string { return "exegetical_insight" }
