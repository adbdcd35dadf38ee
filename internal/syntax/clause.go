package syntax

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidClause marks clause construction failures.
	ErrInvalidClause = errors.New("invalid clause")
	// ErrEmptyAnalysis marks an analysis built from zero clauses.
	ErrEmptyAnalysis = errors.New("empty analysis")
	// ErrUnknownRoot marks a root clause id that names no clause.
	ErrUnknownRoot = errors.New("unknown root clause")
	// ErrMalformedTree marks dangling parents or cycles in the clause graph.
	ErrMalformedTree = errors.New("malformed clause tree")
)

type ClauseType string

const (
	ClauseMain                        ClauseType = "MAIN"
	ClauseSubordinatePurpose          ClauseType = "SUBORDINATE_PURPOSE"
	ClauseSubordinateResult           ClauseType = "SUBORDINATE_RESULT"
	ClauseSubordinateCausal           ClauseType = "SUBORDINATE_CAUSAL"
	ClauseSubordinateConditional      ClauseType = "SUBORDINATE_CONDITIONAL"
	ClauseSubordinateTemporal         ClauseType = "SUBORDINATE_TEMPORAL"
	ClauseSubordinateIndirectQuestion ClauseType = "SUBORDINATE_INDIRECT_QUESTION"
	ClauseParticipial                 ClauseType = "PARTICIPIAL"
	ClauseInfinitival                 ClauseType = "INFINITIVAL"
	ClauseRelative                    ClauseType = "RELATIVE"
)

// Clause is one node of a passage's dependency tree. Clauses reference each
// other by id only; parent/child resolution happens in BuildAnalysis.
type Clause struct {
	ID                string     `json:"id"`
	Type              ClauseType `json:"type"`
	WordIndices       []int      `json:"word_indices"`
	MainVerbIndex     *int       `json:"main_verb_index,omitempty"`
	ParentClauseID    string     `json:"parent_clause_id,omitempty"`
	ChildClauseIDs    []string   `json:"child_clause_ids,omitempty"`
	Conjunction       string     `json:"conjunction,omitempty"`
	Translation       string     `json:"translation,omitempty"`
	SyntacticFunction string     `json:"syntactic_function,omitempty"`
	Text              string     `json:"text,omitempty"`
}

type ClauseParams struct {
	ID                string
	Type              ClauseType
	WordIndices       []int
	MainVerbIndex     *int
	ParentClauseID    string
	Conjunction       string
	Translation       string
	SyntacticFunction string
	Text              string
}

// BuildClause validates and freezes a single clause. Word indices are
// deduplicated and kept in ascending passage order; ChildClauseIDs starts
// empty and is only ever derived by BuildAnalysis.
func BuildClause(p ClauseParams) (*Clause, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: clause id required", ErrInvalidClause)
	}
	if len(p.WordIndices) == 0 {
		return nil, fmt.Errorf("%w: clause %q has no word indices", ErrInvalidClause, p.ID)
	}

	seen := make(map[int]struct{}, len(p.WordIndices))
	indices := make([]int, 0, len(p.WordIndices))
	for _, idx := range p.WordIndices {
		if idx < 0 {
			return nil, fmt.Errorf("%w: clause %q has negative word index %d", ErrInvalidClause, p.ID, idx)
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var mainVerb *int
	if p.MainVerbIndex != nil {
		if _, ok := seen[*p.MainVerbIndex]; !ok {
			return nil, fmt.Errorf("%w: clause %q main verb index %d outside word indices", ErrInvalidClause, p.ID, *p.MainVerbIndex)
		}
		v := *p.MainVerbIndex
		mainVerb = &v
	}

	return &Clause{
		ID:                p.ID,
		Type:              p.Type,
		WordIndices:       indices,
		MainVerbIndex:     mainVerb,
		ParentClauseID:    p.ParentClauseID,
		ChildClauseIDs:    []string{},
		Conjunction:       p.Conjunction,
		Translation:       p.Translation,
		SyntacticFunction: p.SyntacticFunction,
		Text:              p.Text,
	}, nil
}

func (c *Clause) clone() *Clause {
	cp := *c
	cp.WordIndices = append([]int(nil), c.WordIndices...)
	cp.ChildClauseIDs = append([]string(nil), c.ChildClauseIDs...)
	if c.MainVerbIndex != nil {
		v := *c.MainVerbIndex
		cp.MainVerbIndex = &v
	}
	return &cp
}
