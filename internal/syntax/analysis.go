package syntax

import (
	"fmt"
	"time"
)

// Analysis is the validated, immutable clause-dependency tree for one
// passage. It is only ever produced by BuildAnalysis; corrections mean
// building a fresh Analysis over a new clause list.
type Analysis struct {
	PassageReference string
	RootClauseID     string
	Summary          string
	AnalyzedAt       time.Time

	clauses []*Clause
	byID    map[string]*Clause
}

// BuildAnalysis validates a flat clause list into an Analysis. It fails with
// ErrEmptyAnalysis when no clauses are given, ErrUnknownRoot when rootClauseID
// names no clause, and ErrMalformedTree on duplicate ids, dangling parent
// references or parent cycles. Inputs are deep-copied; mutating the caller's
// clauses afterwards does not affect the aggregate.
func BuildAnalysis(passageReference string, clauses []*Clause, rootClauseID, summary string) (*Analysis, error) {
	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: passage %q", ErrEmptyAnalysis, passageReference)
	}

	byID := make(map[string]*Clause, len(clauses))
	copies := make([]*Clause, 0, len(clauses))
	for _, c := range clauses {
		if c == nil {
			return nil, fmt.Errorf("%w: nil clause", ErrMalformedTree)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate clause id %q", ErrMalformedTree, c.ID)
		}
		cp := c.clone()
		cp.ChildClauseIDs = []string{}
		byID[cp.ID] = cp
		copies = append(copies, cp)
	}

	if _, ok := byID[rootClauseID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoot, rootClauseID)
	}

	// Resolve parents and derive children in input order.
	for _, c := range copies {
		if c.ParentClauseID == "" {
			continue
		}
		parent, ok := byID[c.ParentClauseID]
		if !ok {
			return nil, fmt.Errorf("%w: clause %q references unknown parent %q", ErrMalformedTree, c.ID, c.ParentClauseID)
		}
		if parent.ID == c.ID {
			return nil, fmt.Errorf("%w: clause %q is its own parent", ErrMalformedTree, c.ID)
		}
		parent.ChildClauseIDs = append(parent.ChildClauseIDs, c.ID)
	}

	// Acyclicity: walk parent pointers from every clause with a visited set.
	for _, c := range copies {
		visited := map[string]struct{}{c.ID: {}}
		cur := c
		for cur.ParentClauseID != "" {
			next := byID[cur.ParentClauseID]
			if _, seen := visited[next.ID]; seen {
				return nil, fmt.Errorf("%w: cycle through clause %q", ErrMalformedTree, next.ID)
			}
			visited[next.ID] = struct{}{}
			cur = next
		}
	}

	return &Analysis{
		PassageReference: passageReference,
		RootClauseID:     rootClauseID,
		Summary:          summary,
		AnalyzedAt:       time.Now().UTC(),
		clauses:          copies,
		byID:             byID,
	}, nil
}

// Clauses returns a deep copy of the clause list in construction order.
func (a *Analysis) Clauses() []*Clause {
	out := make([]*Clause, len(a.clauses))
	for i, c := range a.clauses {
		out[i] = c.clone()
	}
	return out
}

// Clause returns a copy of the clause with the given id, or nil.
func (a *Analysis) Clause(id string) *Clause {
	c, ok := a.byID[id]
	if !ok {
		return nil
	}
	return c.clone()
}

// Root returns a copy of the designated root clause.
func (a *Analysis) Root() *Clause {
	return a.Clause(a.RootClauseID)
}

// Children returns copies of the direct children of the given clause,
// in the order their parent references appeared.
func (a *Analysis) Children(id string) []*Clause {
	c, ok := a.byID[id]
	if !ok {
		return nil
	}
	out := make([]*Clause, 0, len(c.ChildClauseIDs))
	for _, childID := range c.ChildClauseIDs {
		out = append(out, a.byID[childID].clone())
	}
	return out
}

// Len reports the number of clauses in the analysis.
func (a *Analysis) Len() int { return len(a.clauses) }

// MaxDepth reports the deepest subordination level across the analysis,
// 0 when every clause sits at root level.
func (a *Analysis) MaxDepth() int {
	deepest := 0
	for _, c := range a.clauses {
		if d := a.Depth(c.ID); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Depth reports the parent-chain length from the given clause to its
// root-level ancestor, 0 for root-level clauses and -1 for unknown ids.
func (a *Analysis) Depth(id string) int {
	c, ok := a.byID[id]
	if !ok {
		return -1
	}
	depth := 0
	for c.ParentClauseID != "" {
		c = a.byID[c.ParentClauseID]
		depth++
	}
	return depth
}
