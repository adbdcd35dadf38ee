package syntax

import (
	"errors"
	"testing"
)

func mustClause(t *testing.T, p ClauseParams) *Clause {
	t.Helper()
	c, err := BuildClause(p)
	if err != nil {
		t.Fatalf("BuildClause(%q) failed: %v", p.ID, err)
	}
	return c
}

func john11Clauses(t *testing.T) []*Clause {
	t.Helper()
	return []*Clause{
		mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{2, 3, 4}, MainVerbIndex: intPtr(3)}),
		mustClause(t, ClauseParams{ID: "temporal", Type: ClauseSubordinateTemporal, WordIndices: []int{0, 1}, ParentClauseID: "main", Conjunction: "en"}),
		mustClause(t, ClauseParams{ID: "relative", Type: ClauseRelative, WordIndices: []int{5, 6, 7}, ParentClauseID: "main"}),
	}
}

func TestBuildAnalysisValidation(t *testing.T) {
	cases := []struct {
		name    string
		clauses func(t *testing.T) []*Clause
		rootID  string
		wantErr error
	}{
		{
			name:    "empty_clause_list",
			clauses: func(t *testing.T) []*Clause { return nil },
			rootID:  "main",
			wantErr: ErrEmptyAnalysis,
		},
		{
			name:    "unknown_root",
			clauses: john11Clauses,
			rootID:  "missing",
			wantErr: ErrUnknownRoot,
		},
		{
			name: "dangling_parent",
			clauses: func(t *testing.T) []*Clause {
				return []*Clause{
					mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{0}}),
					mustClause(t, ClauseParams{ID: "sub", Type: ClauseSubordinateCausal, WordIndices: []int{1}, ParentClauseID: "ghost"}),
				}
			},
			rootID:  "main",
			wantErr: ErrMalformedTree,
		},
		{
			name: "self_parent",
			clauses: func(t *testing.T) []*Clause {
				return []*Clause{
					mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{0}}),
					mustClause(t, ClauseParams{ID: "sub", Type: ClauseParticipial, WordIndices: []int{1}, ParentClauseID: "sub"}),
				}
			},
			rootID:  "main",
			wantErr: ErrMalformedTree,
		},
		{
			name: "two_clause_cycle",
			clauses: func(t *testing.T) []*Clause {
				return []*Clause{
					mustClause(t, ClauseParams{ID: "root", Type: ClauseMain, WordIndices: []int{0}}),
					mustClause(t, ClauseParams{ID: "a", Type: ClauseSubordinatePurpose, WordIndices: []int{1}, ParentClauseID: "b"}),
					mustClause(t, ClauseParams{ID: "b", Type: ClauseSubordinateResult, WordIndices: []int{2}, ParentClauseID: "a"}),
				}
			},
			rootID:  "root",
			wantErr: ErrMalformedTree,
		},
		{
			name: "duplicate_clause_id",
			clauses: func(t *testing.T) []*Clause {
				return []*Clause{
					mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{0}}),
					mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{1}}),
				}
			},
			rootID:  "main",
			wantErr: ErrMalformedTree,
		},
		{
			name:    "valid_tree",
			clauses: john11Clauses,
			rootID:  "main",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := BuildAnalysis("John 1:1", tc.clauses(t), tc.rootID, "verbless clauses around ēn")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("BuildAnalysis error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildAnalysis failed: %v", err)
			}
			if a.Len() != 3 {
				t.Fatalf("clause count = %d, want 3", a.Len())
			}
		})
	}
}

func TestBuildAnalysisDerivesChildren(t *testing.T) {
	a, err := BuildAnalysis("John 1:1", john11Clauses(t), "main", "")
	if err != nil {
		t.Fatalf("BuildAnalysis failed: %v", err)
	}

	root := a.Root()
	if root == nil || root.ID != "main" {
		t.Fatalf("root = %+v, want clause main", root)
	}
	children := a.Children("main")
	if len(children) != 2 || children[0].ID != "temporal" || children[1].ID != "relative" {
		t.Fatalf("children of main = %+v, want [temporal relative]", children)
	}
	if d := a.Depth("relative"); d != 1 {
		t.Fatalf("Depth(relative) = %d, want 1", d)
	}
	if d := a.Depth("main"); d != 0 {
		t.Fatalf("Depth(main) = %d, want 0", d)
	}
}

func TestAnalysisMaxDepth(t *testing.T) {
	flat, err := BuildAnalysis("John 1:1", []*Clause{
		mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{0}}),
	}, "main", "")
	if err != nil {
		t.Fatalf("BuildAnalysis failed: %v", err)
	}
	if d := flat.MaxDepth(); d != 0 {
		t.Fatalf("MaxDepth of single-clause analysis = %d, want 0", d)
	}

	nested, err := BuildAnalysis("John 1:1", []*Clause{
		mustClause(t, ClauseParams{ID: "main", Type: ClauseMain, WordIndices: []int{0}}),
		mustClause(t, ClauseParams{ID: "purpose", Type: ClauseSubordinatePurpose, WordIndices: []int{1}, ParentClauseID: "main"}),
		mustClause(t, ClauseParams{ID: "relative", Type: ClauseRelative, WordIndices: []int{2}, ParentClauseID: "purpose"}),
	}, "main", "")
	if err != nil {
		t.Fatalf("BuildAnalysis failed: %v", err)
	}
	if d := nested.MaxDepth(); d != 2 {
		t.Fatalf("MaxDepth of two-level subordination = %d, want 2", d)
	}
}

func TestAnalysisImmutableToExternalMutation(t *testing.T) {
	input := john11Clauses(t)
	a, err := BuildAnalysis("John 1:1", input, "main", "")
	if err != nil {
		t.Fatalf("BuildAnalysis failed: %v", err)
	}

	// Mutating the input after construction must not leak in.
	input[0].WordIndices[0] = 999
	input[1].ParentClauseID = "relative"
	if got := a.Clause("main").WordIndices[0]; got == 999 {
		t.Fatal("analysis shares word index storage with caller clauses")
	}
	if got := a.Clause("temporal").ParentClauseID; got != "main" {
		t.Fatalf("parent of temporal changed to %q after external mutation", got)
	}

	// Mutating accessor results must not write through either.
	a.Clause("main").WordIndices[0] = 777
	if got := a.Clause("main").WordIndices[0]; got == 777 {
		t.Fatal("accessor returns shared clause storage")
	}
}
