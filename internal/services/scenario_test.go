package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// Full study flow over John 1:1: identify forms, build a unit for ēn,
// evaluate the learner's answer, then exercise quiz reuse across two units
// that share the eimi/verb/es fingerprint.
func TestJohnOneOneStudyFlow(t *testing.T) {
	ctx := context.Background()
	ai := newFakeAI()
	tutor := NewTutorService(testLogger(), ai, nil)
	sessions := NewSessionService(testLogger(), newFakeSessionRepo(), newFakeUnitRepo(), newFakeResponseRepo(), newFakeInsightRepo(), tutor)
	quizzes := NewQuizCacheService(testLogger(), ai, newFakeFastCache(), newFakeQuizRepo(), nil)

	session, err := sessions.CreateSession(ctx, uuid.New(), "John 1:1")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ai.queue("identify_forms", map[string]any{"forms": []any{"en archē", "ēn", "ho logos"}})
	forms, err := tutor.IdentifyForms(ctx, session.PassageReference, GenerationOpts{})
	if err != nil {
		t.Fatalf("IdentifyForms failed: %v", err)
	}
	if len(forms) != 3 || forms[1] != "ēn" {
		t.Fatalf("forms = %v", forms)
	}

	ai.queue("training_unit", map[string]any{
		"surface_text": "ēn", "transliteration": "ēn", "lemma": "eimi",
		"morphology_code": "V-IAI-3S", "gloss": "was", "grammatical_category": "Verb",
		"identification":           "imperfect active indicative, 3rd singular of eimi",
		"recognition_guidance":     "augment plus -n",
		"function_in_context":      "continuous existence of the Word",
		"theological_significance": "the Word preexists creation",
		"reflective_question":      "Why imperfect and not aorist?",
	})
	unit, err := tutor.CreateTrainingUnit(ctx, forms[1], session.PassageReference, GenerationOpts{})
	if err != nil {
		t.Fatalf("CreateTrainingUnit failed: %v", err)
	}
	if unit.GreekForm.Lemma != "eimi" {
		t.Fatalf("lemma = %q, want eimi", unit.GreekForm.Lemma)
	}
	if unit, err = sessions.AppendUnit(ctx, session.ID, unit); err != nil {
		t.Fatalf("AppendUnit failed: %v", err)
	}

	ai.queue("evaluate_response", map[string]any{
		"feedback":   "Yes — the imperfect marks continuous past action.",
		"is_correct": true,
	})
	eval, err := tutor.EvaluateResponse(ctx, unit, "it shows continuous past action", GenerationOpts{})
	if err != nil {
		t.Fatalf("EvaluateResponse failed: %v", err)
	}
	if !eval.IsCorrect || eval.Feedback == "" {
		t.Fatalf("evaluation = %+v", eval)
	}
	if _, err := sessions.RecordResponse(ctx, unit.ID, "it shows continuous past action", eval); err != nil {
		t.Fatalf("RecordResponse failed: %v", err)
	}

	// First quiz request in Spanish generates and caches under eimi:verb:es.
	ai.queue("quiz_questions", quizResponse(3))
	first, err := quizzes.GetQuizQuestions(ctx, unit, 3, GenerationOpts{Language: "es"})
	if err != nil {
		t.Fatalf("first quiz request failed: %v", err)
	}
	if len(first) != 3 || first[0].Fingerprint != "eimi:verb:es" {
		t.Fatalf("first quiz set = %d questions, fingerprint %q", len(first), first[0].Fingerprint)
	}

	// A different unit sharing lemma "eimi", category "Verb", language "es"
	// is served the first two cached questions, rewritten to its own id.
	other := eimiUnit()
	second, err := quizzes.GetQuizQuestions(ctx, other, 2, GenerationOpts{Language: "es"})
	if err != nil {
		t.Fatalf("second quiz request failed: %v", err)
	}
	if ai.calls["quiz_questions"] != 1 {
		t.Fatalf("generator called %d times, want 1", ai.calls["quiz_questions"])
	}
	if len(second) != 2 {
		t.Fatalf("second quiz set has %d questions, want 2", len(second))
	}
	for i, q := range second {
		if q.UnitID != other.ID {
			t.Fatalf("question %d unit id = %s, want %s", i, q.UnitID, other.ID)
		}
		if q.ID != first[i].ID {
			t.Fatalf("question %d is not the cached question (got %s, want %s)", i, q.ID, first[i].ID)
		}
	}
}
