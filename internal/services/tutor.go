package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/metrics"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// TutorService is the pedagogical engine. It orchestrates generation calls
// and parses their structured output; it never persists anything itself —
// appending units and recording responses is the session layer's job.
type TutorService interface {
	IdentifyForms(ctx context.Context, passage string, opts GenerationOpts) ([]string, error)
	CreateTrainingUnit(ctx context.Context, form, passage string, opts GenerationOpts) (*types.TrainingUnit, error)
	EvaluateResponse(ctx context.Context, unit *types.TrainingUnit, answer string, opts GenerationOpts) (*Evaluation, error)
	ExplainMorphology(ctx context.Context, word, passage string, opts GenerationOpts) (*MorphologyBreakdown, error)
	AnswerFreeQuestion(ctx context.Context, question string, qc QuestionContext, opts GenerationOpts) (string, error)
}

type Evaluation struct {
	Feedback  string `json:"feedback"`
	IsCorrect bool   `json:"is_correct"`
}

type MorphemeComponent struct {
	Part    string `json:"part"`
	Type    string `json:"type"`
	Meaning string `json:"meaning"`
}

type MorphologyBreakdown struct {
	Word       string              `json:"word"`
	Components []MorphemeComponent `json:"components"`
	Summary    string              `json:"summary"`
}

// QuestionContext grounds a free question without dragging in the whole
// session aggregate.
type QuestionContext struct {
	Word                    string `json:"word"`
	Gloss                   string `json:"gloss"`
	Identification          string `json:"identification"`
	FunctionInContext       string `json:"function_in_context"`
	TheologicalSignificance string `json:"theological_significance"`
	Passage                 string `json:"passage"`
}

type tutorService struct {
	log       *logger.Logger
	ai        OpenAIClient
	templates *PromptTemplates
	tracer    trace.Tracer
}

func NewTutorService(log *logger.Logger, ai OpenAIClient, templates *PromptTemplates) TutorService {
	if templates == nil {
		t := defaultPromptTemplates
		templates = &t
	}
	return &tutorService{
		log:       log.With("service", "TutorService"),
		ai:        ai,
		templates: templates,
		tracer:    otel.Tracer("tutor"),
	}
}

// decodeInto round-trips the generated object through JSON into a typed
// struct. Failures here mean the model produced the wrong shape.
func decodeInto(op string, obj map[string]any, out any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return newGenerationError(GenerationMalformed, op, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newGenerationError(GenerationMalformed, op, err)
	}
	return nil
}

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GenerationRequests.WithLabelValues(op, outcome).Inc()
}

func (s *tutorService) IdentifyForms(ctx context.Context, passage string, opts GenerationOpts) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "IdentifyForms", trace.WithAttributes(attribute.String("language", opts.language())))
	defer span.End()

	prompt := renderPrompt(opts.templates(s.templates).IdentifyForms, opts, map[string]string{
		"passage": passage,
	})
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"forms": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"forms"},
		"additionalProperties": false,
	}

	obj, err := s.ai.GenerateJSON(ctx, tutorSystemPrompt, prompt, "identify_forms", schema)
	observe("identify_forms", err)
	if err != nil {
		return nil, err
	}

	var out struct {
		Forms []string `json:"forms"`
	}
	if err := decodeInto("identify_forms", obj, &out); err != nil {
		return nil, err
	}
	return out.Forms, nil
}

func (s *tutorService) CreateTrainingUnit(ctx context.Context, form, passage string, opts GenerationOpts) (*types.TrainingUnit, error) {
	ctx, span := s.tracer.Start(ctx, "CreateTrainingUnit", trace.WithAttributes(attribute.String("form", form)))
	defer span.End()

	prompt := renderPrompt(opts.templates(s.templates).TrainingUnit, opts, map[string]string{
		"passage": passage,
		"form":    form,
	})
	stringProp := map[string]any{"type": "string"}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"surface_text":             stringProp,
			"transliteration":          stringProp,
			"lemma":                    stringProp,
			"morphology_code":          stringProp,
			"gloss":                    stringProp,
			"grammatical_category":     stringProp,
			"identification":           stringProp,
			"recognition_guidance":     stringProp,
			"function_in_context":      stringProp,
			"theological_significance": stringProp,
			"reflective_question":      stringProp,
		},
		"required": []string{
			"surface_text", "transliteration", "lemma", "morphology_code",
			"gloss", "grammatical_category", "identification",
			"function_in_context", "theological_significance", "reflective_question",
		},
		"additionalProperties": false,
	}

	obj, err := s.ai.GenerateJSON(ctx, tutorSystemPrompt, prompt, "training_unit", schema)
	observe("training_unit", err)
	if err != nil {
		return nil, err
	}

	var out struct {
		types.GreekForm
		Identification          string `json:"identification"`
		RecognitionGuidance     string `json:"recognition_guidance"`
		FunctionInContext       string `json:"function_in_context"`
		TheologicalSignificance string `json:"theological_significance"`
		ReflectiveQuestion      string `json:"reflective_question"`
	}
	if err := decodeInto("training_unit", obj, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Lemma) == "" || strings.TrimSpace(out.Identification) == "" {
		return nil, newGenerationError(GenerationMalformed, "training_unit",
			fmt.Errorf("generated unit missing lemma or identification"))
	}

	return &types.TrainingUnit{
		ID:                      uuid.New(),
		GreekForm:               out.GreekForm,
		Identification:          out.Identification,
		RecognitionGuidance:     out.RecognitionGuidance,
		FunctionInContext:       out.FunctionInContext,
		TheologicalSignificance: out.TheologicalSignificance,
		ReflectiveQuestion:      out.ReflectiveQuestion,
	}, nil
}

func (s *tutorService) EvaluateResponse(ctx context.Context, unit *types.TrainingUnit, answer string, opts GenerationOpts) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "EvaluateResponse", trace.WithAttributes(attribute.String("unit_id", unit.ID.String())))
	defer span.End()

	prompt := renderPrompt(opts.templates(s.templates).EvaluateResponse, opts, map[string]string{
		"form":           unit.GreekForm.SurfaceText,
		"identification": unit.Identification,
		"function":       unit.FunctionInContext,
		"answer":         answer,
	})
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback":   map[string]any{"type": "string"},
			"is_correct": map[string]any{"type": "boolean"},
		},
		"required":             []string{"feedback", "is_correct"},
		"additionalProperties": false,
	}

	obj, err := s.ai.GenerateJSON(ctx, tutorSystemPrompt, prompt, "evaluate_response", schema)
	observe("evaluate_response", err)
	if err != nil {
		return nil, err
	}

	// Correctness is the generator's judgment, surfaced verbatim.
	var eval Evaluation
	if err := decodeInto("evaluate_response", obj, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (s *tutorService) ExplainMorphology(ctx context.Context, word, passage string, opts GenerationOpts) (*MorphologyBreakdown, error) {
	ctx, span := s.tracer.Start(ctx, "ExplainMorphology", trace.WithAttributes(attribute.String("word", word)))
	defer span.End()

	prompt := renderPrompt(opts.templates(s.templates).Morphology, opts, map[string]string{
		"passage": passage,
		"word":    word,
	})
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"word": map[string]any{"type": "string"},
			"components": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"part":    map[string]any{"type": "string"},
						"type":    map[string]any{"type": "string", "enum": []string{"prefix", "root", "formative", "ending", "other"}},
						"meaning": map[string]any{"type": "string"},
					},
					"required":             []string{"part", "type", "meaning"},
					"additionalProperties": false,
				},
			},
			"summary": map[string]any{"type": "string"},
		},
		"required":             []string{"word", "components", "summary"},
		"additionalProperties": false,
	}

	obj, err := s.ai.GenerateJSON(ctx, tutorSystemPrompt, prompt, "morphology", schema)
	observe("morphology", err)
	if err != nil {
		return nil, err
	}

	var breakdown MorphologyBreakdown
	if err := decodeInto("morphology", obj, &breakdown); err != nil {
		return nil, err
	}
	if len(breakdown.Components) == 0 {
		return nil, newGenerationError(GenerationMalformed, "morphology",
			fmt.Errorf("generated breakdown for %q has no components", word))
	}
	return &breakdown, nil
}

func (s *tutorService) AnswerFreeQuestion(ctx context.Context, question string, qc QuestionContext, opts GenerationOpts) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AnswerFreeQuestion")
	defer span.End()

	contextBlock, err := json.Marshal(qc)
	if err != nil {
		return "", err
	}
	prompt := renderPrompt(opts.templates(s.templates).FreeQuestion, opts, map[string]string{
		"context":  string(contextBlock),
		"question": question,
	})

	answer, err := s.ai.GenerateText(ctx, tutorSystemPrompt, prompt)
	observe("free_question", err)
	if err != nil {
		return "", err
	}
	return answer, nil
}
