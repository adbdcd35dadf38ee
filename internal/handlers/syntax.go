package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/services"
)

type SyntaxHandler struct {
	log       *logger.Logger
	syntaxSvc services.SyntaxService
}

func NewSyntaxHandler(log *logger.Logger, syntaxSvc services.SyntaxService) *SyntaxHandler {
	return &SyntaxHandler{
		log:       log.With("handler", "SyntaxHandler"),
		syntaxSvc: syntaxSvc,
	}
}

// POST /api/syntax/analyze
func (h *SyntaxHandler) Analyze(c *gin.Context) {
	var input services.SyntaxAnalysisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	analysis, record, err := h.syntaxSvc.BuildAndSave(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"record":  record,
		"depth":   analysis.MaxDepth(),
		"clauses": analysis.Len(),
	})
}

// GET /api/sessions/:id/syntax
func (h *SyntaxHandler) ListBySession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	records, err := h.syntaxSvc.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"analyses": records})
}
