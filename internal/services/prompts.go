package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/koinetutor-backend/internal/logger"
)

// GenerationOpts carries the optional knobs every tutor operation accepts:
// a grounding corpus id, the learner's target language, and per-call prompt
// template overrides.
type GenerationOpts struct {
	GroundingID string
	Language    string
	Templates   *PromptTemplates
}

func (o GenerationOpts) language() string {
	lang := strings.TrimSpace(o.Language)
	if lang == "" {
		return "en"
	}
	return lang
}

// PromptTemplates holds the instruction text for each generation operation.
// Placeholders use {name} tokens. Operators can override any template via a
// yaml file pointed at by PROMPTS_FILE; unset fields keep the defaults.
type PromptTemplates struct {
	IdentifyForms    string `yaml:"identify_forms"`
	TrainingUnit     string `yaml:"training_unit"`
	EvaluateResponse string `yaml:"evaluate_response"`
	Morphology       string `yaml:"morphology"`
	FreeQuestion     string `yaml:"free_question"`
	Quiz             string `yaml:"quiz"`
}

const tutorSystemPrompt = "You are a patient teacher of New Testament Greek. " +
	"You ground every explanation in the passage the learner is studying and " +
	"answer in the learner's language."

var defaultPromptTemplates = PromptTemplates{
	IdentifyForms: "Passage: {passage}\n{grounding}" +
		"List the grammatical forms in this passage that are most significant " +
		"for exegesis, in the order they occur. Answer in {language}.",
	TrainingUnit: "Passage: {passage}\nForm: {form}\n{grounding}" +
		"Produce a teaching unit for this form: its full grammatical " +
		"identification, guidance for recognizing the form, its syntactic " +
		"function in this passage, its theological significance here, and one " +
		"reflective question for the learner. Answer in {language}.",
	EvaluateResponse: "Form: {form} ({identification})\nFunction: {function}\n" +
		"Learner's answer: {answer}\n{grounding}" +
		"Judge whether the learner's answer is substantially correct and give " +
		"brief, encouraging feedback in {language}.",
	Morphology: "Passage: {passage}\nWord: {word}\n{grounding}" +
		"Break this word into its morphemes (prefix, root, formative, ending) " +
		"with the meaning each part contributes, then summarize. Answer in {language}.",
	FreeQuestion: "Context:\n{context}\n{grounding}" +
		"Question: {question}\nAnswer the learner's question using the context " +
		"above. Answer in {language}.",
	Quiz: "Form: {form}\nIdentification: {identification}\n" +
		"Function: {function}\nSignificance: {significance}\n{grounding}" +
		"Write exactly {count} quiz questions about this grammatical " +
		"phenomenon in {language}. Question 1 tests morphological recognition, " +
		"question 2 tests syntactic function in context, any further questions " +
		"test theological or exegetical implications. Use multiple_choice or " +
		"true_false types.",
}

// LoadPromptTemplates returns the defaults, overlaid with any templates set
// in the yaml file at path. An empty path means defaults only.
func LoadPromptTemplates(path string, log *logger.Logger) (*PromptTemplates, error) {
	templates := defaultPromptTemplates
	if path == "" {
		return &templates, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file %s: %w", path, err)
	}
	var overrides PromptTemplates
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	applyOverride(&templates.IdentifyForms, overrides.IdentifyForms)
	applyOverride(&templates.TrainingUnit, overrides.TrainingUnit)
	applyOverride(&templates.EvaluateResponse, overrides.EvaluateResponse)
	applyOverride(&templates.Morphology, overrides.Morphology)
	applyOverride(&templates.FreeQuestion, overrides.FreeQuestion)
	applyOverride(&templates.Quiz, overrides.Quiz)
	if log != nil {
		log.Info("Prompt templates loaded", "path", path)
	}
	return &templates, nil
}

func applyOverride(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// renderPrompt substitutes {name} tokens. The grounding token renders to a
// line or to nothing, so templates can place it mid-prompt safely.
func renderPrompt(template string, opts GenerationOpts, vars map[string]string) string {
	grounding := ""
	if opts.GroundingID != "" {
		grounding = "Grounding corpus: " + opts.GroundingID + "\n"
	}
	pairs := []string{
		"{language}", opts.language(),
		"{grounding}", grounding,
	}
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (o GenerationOpts) templates(defaults *PromptTemplates) *PromptTemplates {
	if o.Templates != nil {
		return o.Templates
	}
	return defaults
}
