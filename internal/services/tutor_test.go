package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIdentifyFormsReturnsGeneratorOrder(t *testing.T) {
	ai := newFakeAI()
	ai.queue("identify_forms", map[string]any{"forms": []any{"en archē", "ēn", "ho logos", "ēn"}})
	tutor := NewTutorService(testLogger(), ai, nil)

	forms, err := tutor.IdentifyForms(context.Background(), "John 1:1", GenerationOpts{Language: "en"})
	if err != nil {
		t.Fatalf("IdentifyForms failed: %v", err)
	}
	// Order and duplicates are passed through; deduplication is the caller's call.
	want := []string{"en archē", "ēn", "ho logos", "ēn"}
	if len(forms) != len(want) {
		t.Fatalf("forms = %v, want %v", forms, want)
	}
	for i := range want {
		if forms[i] != want[i] {
			t.Fatalf("forms = %v, want %v", forms, want)
		}
	}
}

func TestCreateTrainingUnitParsesGeneratedFields(t *testing.T) {
	ai := newFakeAI()
	ai.queue("training_unit", map[string]any{
		"surface_text":             "ēn",
		"transliteration":          "ēn",
		"lemma":                    "eimi",
		"morphology_code":          "V-IAI-3S",
		"gloss":                    "was",
		"grammatical_category":     "Verb",
		"identification":           "imperfect active indicative, 3rd singular",
		"recognition_guidance":     "augment ē- plus -n ending",
		"function_in_context":      "links ho logos to continuous existence",
		"theological_significance": "the Word already was when everything began",
		"reflective_question":      "What does the imperfect imply about the Word?",
	})
	tutor := NewTutorService(testLogger(), ai, nil)

	unit, err := tutor.CreateTrainingUnit(context.Background(), "ēn", "John 1:1", GenerationOpts{})
	if err != nil {
		t.Fatalf("CreateTrainingUnit failed: %v", err)
	}
	if unit.GreekForm.Lemma != "eimi" {
		t.Fatalf("lemma = %q, want eimi", unit.GreekForm.Lemma)
	}
	if unit.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("unit id not assigned")
	}
	if unit.SessionID.String() != "00000000-0000-0000-0000-000000000000" {
		t.Fatal("engine assigned a session id; persistence belongs to the caller")
	}
}

func TestCreateTrainingUnitRejectsMissingLemma(t *testing.T) {
	ai := newFakeAI()
	ai.queue("training_unit", map[string]any{
		"surface_text": "ēn", "transliteration": "", "lemma": "  ",
		"morphology_code": "", "gloss": "", "grammatical_category": "",
		"identification": "something", "function_in_context": "",
		"theological_significance": "", "reflective_question": "",
	})
	tutor := NewTutorService(testLogger(), ai, nil)

	_, err := tutor.CreateTrainingUnit(context.Background(), "ēn", "John 1:1", GenerationOpts{})
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != GenerationMalformed {
		t.Fatalf("error = %v, want malformed GenerationError", err)
	}
}

func TestEvaluateResponseSurfacesVerdictVerbatim(t *testing.T) {
	ai := newFakeAI()
	ai.queue("evaluate_response", map[string]any{
		"feedback":   "Exactly: the imperfect points to ongoing past existence.",
		"is_correct": true,
	})
	tutor := NewTutorService(testLogger(), ai, nil)

	eval, err := tutor.EvaluateResponse(context.Background(), eimiUnit(), "it shows continuous past action", GenerationOpts{})
	if err != nil {
		t.Fatalf("EvaluateResponse failed: %v", err)
	}
	if !eval.IsCorrect || !strings.Contains(eval.Feedback, "imperfect") {
		t.Fatalf("evaluation = %+v, want generator verdict passed through", eval)
	}
}

func TestExplainMorphologyRequiresComponents(t *testing.T) {
	ai := newFakeAI()
	ai.queue("morphology", map[string]any{
		"word":       "elusamen",
		"components": []any{},
		"summary":    "empty",
	})
	tutor := NewTutorService(testLogger(), ai, nil)

	_, err := tutor.ExplainMorphology(context.Background(), "elusamen", "passage", GenerationOpts{})
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != GenerationMalformed {
		t.Fatalf("error = %v, want malformed GenerationError", err)
	}

	ai.queue("morphology", map[string]any{
		"word": "elusamen",
		"components": []any{
			map[string]any{"part": "e-", "type": "prefix", "meaning": "past-time augment"},
			map[string]any{"part": "lu", "type": "root", "meaning": "loose"},
			map[string]any{"part": "-sa-", "type": "formative", "meaning": "aorist marker"},
			map[string]any{"part": "-men", "type": "ending", "meaning": "first plural"},
		},
		"summary": "aorist: we loosed",
	})
	breakdown, err := tutor.ExplainMorphology(context.Background(), "elusamen", "passage", GenerationOpts{})
	if err != nil {
		t.Fatalf("ExplainMorphology failed: %v", err)
	}
	if len(breakdown.Components) != 4 || breakdown.Components[1].Type != "root" {
		t.Fatalf("breakdown = %+v", breakdown)
	}
}

func TestTransientGenerationErrorsAreRetryable(t *testing.T) {
	cases := []struct {
		name      string
		kind      GenerationErrorKind
		retryable bool
	}{
		{name: "timeout", kind: GenerationTimeout, retryable: true},
		{name: "rate_limited", kind: GenerationRateLimited, retryable: true},
		{name: "service", kind: GenerationService, retryable: true},
		{name: "malformed", kind: GenerationMalformed, retryable: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := newGenerationError(tc.kind, "op", errors.New("boom"))
			if IsRetryableGeneration(err) != tc.retryable {
				t.Fatalf("IsRetryableGeneration(%s) = %v, want %v", tc.kind, !tc.retryable, tc.retryable)
			}
		})
	}
	if IsRetryableGeneration(errors.New("plain")) {
		t.Fatal("plain error reported retryable")
	}
}

func TestRenderPromptSubstitution(t *testing.T) {
	opts := GenerationOpts{GroundingID: "sbl-gnt", Language: "ES"}
	got := renderPrompt("Passage: {passage}\n{grounding}Answer in {language}.", opts, map[string]string{"passage": "John 1:1"})
	if !strings.Contains(got, "Passage: John 1:1") {
		t.Fatalf("prompt missing passage: %q", got)
	}
	if !strings.Contains(got, "Grounding corpus: sbl-gnt") {
		t.Fatalf("prompt missing grounding line: %q", got)
	}
	if !strings.Contains(got, "Answer in ES.") {
		t.Fatalf("prompt missing language: %q", got)
	}

	noGrounding := renderPrompt("{grounding}Q", GenerationOpts{}, nil)
	if noGrounding != "Q" {
		t.Fatalf("empty grounding rendered %q, want bare template", noGrounding)
	}
}
