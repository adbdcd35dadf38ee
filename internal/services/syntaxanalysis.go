package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/repos"
	"github.com/yungbote/koinetutor-backend/internal/syntax"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// ClauseInput is the wire shape of one raw clause description.
type ClauseInput struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	WordIndices       []int    `json:"word_indices"`
	MainVerbIndex     *int     `json:"main_verb_index,omitempty"`
	ParentClauseID    string   `json:"parent_clause_id,omitempty"`
	Conjunction       string   `json:"conjunction,omitempty"`
	Translation       string   `json:"translation,omitempty"`
	SyntacticFunction string   `json:"syntactic_function,omitempty"`
	Text              string   `json:"text,omitempty"`
}

type SyntaxAnalysisInput struct {
	SessionID        uuid.UUID     `json:"session_id,omitempty"`
	PassageReference string        `json:"passage_reference"`
	Clauses          []ClauseInput `json:"clauses"`
	RootClauseID     string        `json:"root_clause_id"`
	Summary          string        `json:"summary,omitempty"`
}

// SyntaxService validates raw clause descriptions into an Analysis and
// persists the resulting snapshot. Validation is pure; only a fully valid
// tree ever reaches the store.
type SyntaxService interface {
	BuildAndSave(ctx context.Context, input SyntaxAnalysisInput) (*syntax.Analysis, *types.SyntaxAnalysisRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*types.SyntaxAnalysisRecord, error)
}

type syntaxService struct {
	log  *logger.Logger
	repo repos.SyntaxAnalysisRepo
}

func NewSyntaxService(log *logger.Logger, repo repos.SyntaxAnalysisRepo) SyntaxService {
	return &syntaxService{
		log:  log.With("service", "SyntaxService"),
		repo: repo,
	}
}

func (s *syntaxService) BuildAndSave(ctx context.Context, input SyntaxAnalysisInput) (*syntax.Analysis, *types.SyntaxAnalysisRecord, error) {
	clauses := make([]*syntax.Clause, 0, len(input.Clauses))
	for _, ci := range input.Clauses {
		clause, err := syntax.BuildClause(syntax.ClauseParams{
			ID:                ci.ID,
			Type:              syntax.ClauseType(ci.Type),
			WordIndices:       ci.WordIndices,
			MainVerbIndex:     ci.MainVerbIndex,
			ParentClauseID:    ci.ParentClauseID,
			Conjunction:       ci.Conjunction,
			Translation:       ci.Translation,
			SyntacticFunction: ci.SyntacticFunction,
			Text:              ci.Text,
		})
		if err != nil {
			return nil, nil, err
		}
		clauses = append(clauses, clause)
	}

	analysis, err := syntax.BuildAnalysis(input.PassageReference, clauses, input.RootClauseID, input.Summary)
	if err != nil {
		return nil, nil, err
	}

	clausesJSON, err := json.Marshal(analysis.Clauses())
	if err != nil {
		return nil, nil, err
	}
	record := &types.SyntaxAnalysisRecord{
		ID:               uuid.New(),
		SessionID:        input.SessionID,
		PassageReference: analysis.PassageReference,
		RootClauseID:     analysis.RootClauseID,
		Clauses:          datatypes.JSON(clausesJSON),
		Summary:          analysis.Summary,
		AnalyzedAt:       analysis.AnalyzedAt,
	}
	saved, err := s.repo.Create(ctx, nil, record)
	if err != nil {
		return nil, nil, err
	}
	return analysis, saved, nil
}

func (s *syntaxService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*types.SyntaxAnalysisRecord, error) {
	return s.repo.GetBySessionID(ctx, nil, sessionID)
}
