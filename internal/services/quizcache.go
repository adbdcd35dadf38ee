package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/koinetutor-backend/internal/cache"
	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/metrics"
	"github.com/yungbote/koinetutor-backend/internal/repos"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// QuizCacheService owns the hybrid lookup/generate/store policy for quiz
// questions: redis fast layer, postgres durable layer, generation on a full
// miss. Cache failures never fail the operation — reads degrade to misses,
// writes are logged and swallowed.
type QuizCacheService interface {
	GetQuizQuestions(ctx context.Context, unit *types.TrainingUnit, count int, opts GenerationOpts) ([]*types.QuizQuestion, error)
}

// Fingerprint derives the cache key for a unit and target language.
// Units sharing a lemma, grammatical category and language share a question
// pool across sessions and users; that reuse is the point of the cache.
func Fingerprint(unit *types.TrainingUnit, language string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	lang := norm(language)
	if lang == "" {
		lang = "en"
	}
	return norm(unit.GreekForm.Lemma) + ":" + norm(unit.GreekForm.GrammaticalCategory) + ":" + lang
}

type quizCacheService struct {
	log       *logger.Logger
	ai        OpenAIClient
	fast      cache.QuizFastCache // optional; nil disables the redis layer
	durable   repos.QuizCacheRepo
	templates *PromptTemplates
}

func NewQuizCacheService(log *logger.Logger, ai OpenAIClient, fast cache.QuizFastCache, durable repos.QuizCacheRepo, templates *PromptTemplates) QuizCacheService {
	if templates == nil {
		t := defaultPromptTemplates
		templates = &t
	}
	return &quizCacheService{
		log:       log.With("service", "QuizCacheService"),
		ai:        ai,
		fast:      fast,
		durable:   durable,
		templates: templates,
	}
}

func (s *quizCacheService) GetQuizQuestions(ctx context.Context, unit *types.TrainingUnit, count int, opts GenerationOpts) ([]*types.QuizQuestion, error) {
	if count <= 0 {
		return []*types.QuizQuestion{}, nil
	}
	fingerprint := Fingerprint(unit, opts.Language)

	if cached := s.lookup(ctx, fingerprint); len(cached) >= count {
		served := make([]*types.QuizQuestion, 0, count)
		ids := make([]uuid.UUID, 0, count)
		for _, q := range cached[:count] {
			cp := *q
			cp.UnitID = unit.ID
			cp.UsageCount++
			served = append(served, &cp)
			ids = append(ids, q.ID)
		}
		if err := s.durable.IncrementUsage(ctx, nil, ids); err != nil {
			s.log.Warn("quiz usage increment failed", "fingerprint", fingerprint, "error", err)
		}
		return served, nil
	}

	metrics.QuizCacheMisses.Inc()
	questions, err := s.generate(ctx, unit, count, fingerprint, opts)
	if err != nil {
		return nil, err
	}
	s.store(ctx, fingerprint, questions)
	return questions, nil
}

// lookup tries redis, then postgres, repopulating redis on a durable hit.
// Any layer error counts as a miss for that layer.
func (s *quizCacheService) lookup(ctx context.Context, fingerprint string) []*types.QuizQuestion {
	if s.fast != nil {
		cached, err := s.fast.GetQuizSet(ctx, fingerprint)
		if err != nil {
			s.log.Warn("quiz fast-cache read failed, treating as miss", "fingerprint", fingerprint, "error", err)
		} else if len(cached) > 0 {
			metrics.QuizCacheHits.WithLabelValues("redis").Inc()
			return cached
		}
	}

	stored, err := s.durable.GetByFingerprint(ctx, nil, fingerprint)
	if err != nil {
		s.log.Warn("quiz durable-cache read failed, treating as miss", "fingerprint", fingerprint, "error", err)
		return nil
	}
	if len(stored) == 0 {
		return nil
	}
	metrics.QuizCacheHits.WithLabelValues("postgres").Inc()
	if s.fast != nil {
		if err := s.fast.SetQuizSet(ctx, fingerprint, stored); err != nil {
			metrics.QuizCacheWriteFailures.WithLabelValues("redis").Inc()
			s.log.Warn("quiz fast-cache repopulate failed", "fingerprint", fingerprint, "error", err)
		}
	}
	return stored
}

// store persists a freshly generated set, best-effort on both layers.
// The durable write is a last-writer-wins replace keyed by fingerprint, so
// racing misses overwrite each other instead of failing.
func (s *quizCacheService) store(ctx context.Context, fingerprint string, questions []*types.QuizQuestion) {
	if err := s.durable.ReplaceSet(ctx, nil, fingerprint, questions); err != nil {
		metrics.QuizCacheWriteFailures.WithLabelValues("postgres").Inc()
		s.log.Warn("quiz durable-cache write failed, returning generated set anyway", "fingerprint", fingerprint, "error", err)
	}
	if s.fast != nil {
		if err := s.fast.SetQuizSet(ctx, fingerprint, questions); err != nil {
			metrics.QuizCacheWriteFailures.WithLabelValues("redis").Inc()
			s.log.Warn("quiz fast-cache write failed", "fingerprint", fingerprint, "error", err)
		}
	}
}

func (s *quizCacheService) generate(ctx context.Context, unit *types.TrainingUnit, count int, fingerprint string, opts GenerationOpts) ([]*types.QuizQuestion, error) {
	prompt := renderPrompt(opts.templates(s.templates).Quiz, opts, map[string]string{
		"form":           unit.GreekForm.SurfaceText,
		"identification": unit.Identification,
		"function":       unit.FunctionInContext,
		"significance":   unit.TheologicalSignificance,
		"count":          fmt.Sprintf("%d", count),
	})
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":           map[string]any{"type": "string", "enum": []string{"multiple_choice", "true_false"}},
						"prompt":         map[string]any{"type": "string"},
						"options":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correct_answer": map[string]any{"type": "string"},
						"explanation":    map[string]any{"type": "string"},
					},
					"required":             []string{"type", "prompt", "options", "correct_answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}

	obj, err := s.ai.GenerateJSON(ctx, tutorSystemPrompt, prompt, "quiz_questions", schema)
	observe("quiz_questions", err)
	if err != nil {
		return nil, err
	}

	var out struct {
		Questions []struct {
			Type          string   `json:"type"`
			Prompt        string   `json:"prompt"`
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correct_answer"`
			Explanation   string   `json:"explanation"`
		} `json:"questions"`
	}
	if err := decodeInto("quiz_questions", obj, &out); err != nil {
		return nil, err
	}
	if len(out.Questions) != count {
		return nil, newGenerationError(GenerationMalformed, "quiz_questions",
			fmt.Errorf("generator produced %d questions, requested %d", len(out.Questions), count))
	}

	questions := make([]*types.QuizQuestion, 0, count)
	for i, q := range out.Questions {
		optionsJSON, mErr := json.Marshal(q.Options)
		if mErr != nil {
			return nil, mErr
		}
		questions = append(questions, &types.QuizQuestion{
			ID:            uuid.New(),
			Fingerprint:   fingerprint,
			Position:      i,
			UnitID:        unit.ID,
			Type:          types.QuizQuestionType(q.Type),
			Prompt:        q.Prompt,
			Options:       datatypes.JSON(optionsJSON),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			UsageCount:    1,
		})
	}
	return questions, nil
}
