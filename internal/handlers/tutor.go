package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/services"
)

type TutorHandler struct {
	log        *logger.Logger
	tutorSvc   services.TutorService
	sessionSvc services.SessionService
}

func NewTutorHandler(log *logger.Logger, tutorSvc services.TutorService, sessionSvc services.SessionService) *TutorHandler {
	return &TutorHandler{
		log:        log.With("handler", "TutorHandler"),
		tutorSvc:   tutorSvc,
		sessionSvc: sessionSvc,
	}
}

type generationBody struct {
	GroundingID string `json:"grounding_id"`
	Language    string `json:"language"`
}

func (b generationBody) opts() services.GenerationOpts {
	return services.GenerationOpts{GroundingID: b.GroundingID, Language: b.Language}
}

// POST /api/tutor/identify-forms
func (h *TutorHandler) IdentifyForms(c *gin.Context) {
	var body struct {
		generationBody
		Passage string `json:"passage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	forms, err := h.tutorSvc.IdentifyForms(c.Request.Context(), body.Passage, body.opts())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"forms": forms})
}

// POST /api/sessions/:id/units
func (h *TutorHandler) CreateUnit(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session := resolveOwnedSession(c, h.sessionSvc, sessionID)
	if session == nil {
		return
	}
	var body struct {
		generationBody
		Form    string `json:"form" binding:"required"`
		Passage string `json:"passage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	passage := body.Passage
	if passage == "" {
		passage = session.PassageReference
	}
	unit, err := h.tutorSvc.CreateTrainingUnit(c.Request.Context(), body.Form, passage, body.opts())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	appended, err := h.sessionSvc.AppendUnit(c.Request.Context(), sessionID, unit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appended)
}

// POST /api/units/:id/response
func (h *TutorHandler) EvaluateResponse(c *gin.Context) {
	unitID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		generationBody
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	unit := resolveOwnedUnit(c, h.sessionSvc, unitID)
	if unit == nil {
		return
	}
	// Refuse a second submission before spending a generation call on it.
	existing, err := h.sessionSvc.GetResponse(c.Request.Context(), unitID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if existing != nil {
		RespondServiceError(c, services.ErrResponseExists)
		return
	}
	eval, err := h.tutorSvc.EvaluateResponse(c.Request.Context(), unit, body.Answer, body.opts())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	response, err := h.sessionSvc.RecordResponse(c.Request.Context(), unitID, body.Answer, eval)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// POST /api/tutor/morphology
func (h *TutorHandler) ExplainMorphology(c *gin.Context) {
	var body struct {
		generationBody
		Word    string `json:"word" binding:"required"`
		Passage string `json:"passage"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	breakdown, err := h.tutorSvc.ExplainMorphology(c.Request.Context(), body.Word, body.Passage, body.opts())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, breakdown)
}

// POST /api/tutor/question
func (h *TutorHandler) AnswerFreeQuestion(c *gin.Context) {
	var body struct {
		generationBody
		Question string                   `json:"question" binding:"required"`
		Context  services.QuestionContext `json:"context"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	answer, err := h.tutorSvc.AnswerFreeQuestion(c.Request.Context(), body.Question, body.Context, body.opts())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"answer": answer})
}
