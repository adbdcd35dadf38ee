package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/requestdata"
	"github.com/yungbote/koinetutor-backend/internal/services"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type SessionHandler struct {
	log        *logger.Logger
	sessionSvc services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessionSvc services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:        log.With("handler", "SessionHandler"),
		sessionSvc: sessionSvc,
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return uuid.Nil, false
	}
	return id, true
}

// resolveOwnedSession loads the session and hides other users' sessions
// behind 404.
func resolveOwnedSession(c *gin.Context, svc services.SessionService, id uuid.UUID) *types.StudySession {
	session, err := svc.GetSession(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return nil
	}
	if session == nil || session.UserID != requestdata.UserID(c.Request.Context()) {
		RespondError(c, http.StatusNotFound, "not_found", services.ErrSessionNotFound)
		return nil
	}
	return session
}

// resolveOwnedUnit loads a unit and checks that its session belongs to the
// caller; units inside other users' sessions look like missing units.
func resolveOwnedUnit(c *gin.Context, svc services.SessionService, id uuid.UUID) *types.TrainingUnit {
	unit, err := svc.GetUnit(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return nil
	}
	if unit == nil {
		RespondError(c, http.StatusNotFound, "not_found", services.ErrUnitNotFound)
		return nil
	}
	session, err := svc.GetSession(c.Request.Context(), unit.SessionID)
	if err != nil {
		RespondServiceError(c, err)
		return nil
	}
	if session == nil || session.UserID != requestdata.UserID(c.Request.Context()) {
		RespondError(c, http.StatusNotFound, "not_found", services.ErrUnitNotFound)
		return nil
	}
	return unit
}

// POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var body struct {
		PassageReference string `json:"passage_reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.sessionSvc.CreateSession(c.Request.Context(), requestdata.UserID(c.Request.Context()), body.PassageReference)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session := resolveOwnedSession(c, h.sessionSvc, id)
	if session == nil {
		return
	}
	RespondOK(c, session)
}

// POST /api/sessions/:id/complete
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if resolveOwnedSession(c, h.sessionSvc, id) == nil {
		return
	}
	session, err := h.sessionSvc.CompleteSession(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, session)
}

// POST /api/sessions/:id/bootstrap
func (h *SessionHandler) BootstrapSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if resolveOwnedSession(c, h.sessionSvc, id) == nil {
		return
	}
	var body struct {
		GroundingID string `json:"grounding_id"`
		Language    string `json:"language"`
	}
	// The body is optional; an empty body means default options.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	units, err := h.sessionSvc.BootstrapSession(c.Request.Context(), id, services.GenerationOpts{
		GroundingID: body.GroundingID,
		Language:    body.Language,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"units": units})
}

// POST /api/sessions/:id/insights
func (h *SessionHandler) SaveInsight(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if resolveOwnedSession(c, h.sessionSvc, id) == nil {
		return
	}
	var body struct {
		UnitID  uuid.UUID `json:"unit_id"`
		Content string    `json:"content" binding:"required"`
		Tags    []string  `json:"tags"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	tagsJSON, err := json.Marshal(body.Tags)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	insight, err := h.sessionSvc.SaveInsight(c.Request.Context(), &types.ExegeticalInsight{
		SessionID: id,
		UnitID:    body.UnitID,
		Content:   body.Content,
		Tags:      datatypes.JSON(tagsJSON),
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, insight)
}

// GET /api/sessions/:id/insights
func (h *SessionHandler) ListInsights(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if resolveOwnedSession(c, h.sessionSvc, id) == nil {
		return
	}
	insights, err := h.sessionSvc.ListInsights(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"insights": insights})
}
