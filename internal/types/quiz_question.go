package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuizQuestionType string

const (
	QuizMultipleChoice QuizQuestionType = "multiple_choice"
	QuizTrueFalse      QuizQuestionType = "true_false"
)

// QuizQuestion is cache-scoped by fingerprint, not by unit: every unit that
// shares a lemma, grammatical category and language serves the same pool.
// UnitID is rewritten to the requesting unit when a cached set is served.
type QuizQuestion struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Fingerprint   string           `gorm:"column:fingerprint;not null;index:idx_quiz_question_fingerprint_position,unique" json:"fingerprint"`
	Position      int              `gorm:"column:position;not null;index:idx_quiz_question_fingerprint_position,unique" json:"position"`
	UnitID        uuid.UUID        `gorm:"type:uuid;column:unit_id" json:"unit_id"`
	Type          QuizQuestionType `gorm:"column:type;not null" json:"type"`
	Prompt        string           `gorm:"column:prompt;not null" json:"prompt"`
	Options       datatypes.JSON   `gorm:"column:options;type:jsonb" json:"options"`
	CorrectAnswer string           `gorm:"column:correct_answer;not null" json:"correct_answer"`
	Explanation   string           `gorm:"column:explanation" json:"explanation"`
	UsageCount    int              `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	CreatedAt     time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }
