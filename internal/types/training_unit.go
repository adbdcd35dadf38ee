package types

import (
	"time"

	"github.com/google/uuid"
)

// TrainingUnit is one generated teaching unit for an identified form.
// Units are append-only within a session and immutable after creation.
type TrainingUnit struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_training_unit_session_position,unique" json:"session_id"`
	Position  int       `gorm:"column:position;not null;index:idx_training_unit_session_position,unique" json:"position"`
	GreekForm GreekForm `gorm:"embedded" json:"greek_form"`

	Identification          string `gorm:"column:identification;not null" json:"identification"`
	RecognitionGuidance     string `gorm:"column:recognition_guidance" json:"recognition_guidance,omitempty"`
	FunctionInContext       string `gorm:"column:function_in_context" json:"function_in_context"`
	TheologicalSignificance string `gorm:"column:theological_significance" json:"theological_significance"`
	ReflectiveQuestion      string `gorm:"column:reflective_question" json:"reflective_question"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TrainingUnit) TableName() string { return "training_unit" }
