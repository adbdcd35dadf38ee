package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyntaxAnalysisRecord is the persisted snapshot of a validated clause
// analysis. The authoritative representation lives in internal/syntax;
// this row only stores the serialized form so the UI can re-render it.
type SyntaxAnalysisRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID        uuid.UUID      `gorm:"type:uuid;index" json:"session_id"`
	PassageReference string         `gorm:"column:passage_reference;not null" json:"passage_reference"`
	RootClauseID     string         `gorm:"column:root_clause_id;not null" json:"root_clause_id"`
	Clauses          datatypes.JSON `gorm:"column:clauses;type:jsonb;not null" json:"clauses"`
	Summary          string         `gorm:"column:summary" json:"summary"`
	AnalyzedAt       time.Time      `gorm:"column:analyzed_at;not null" json:"analyzed_at"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (SyntaxAnalysisRecord) TableName() string { return "syntax_analysis_record" }
