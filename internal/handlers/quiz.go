package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/services"
)

const defaultQuizCount = 3

type QuizHandler struct {
	log        *logger.Logger
	quizSvc    services.QuizCacheService
	sessionSvc services.SessionService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizCacheService, sessionSvc services.SessionService) *QuizHandler {
	return &QuizHandler{
		log:        log.With("handler", "QuizHandler"),
		quizSvc:    quizSvc,
		sessionSvc: sessionSvc,
	}
}

// GET /api/units/:id/quiz?count=3&lang=en
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	unitID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	count := defaultQuizCount
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("count must be a positive integer"))
			return
		}
		count = parsed
	}
	unit := resolveOwnedUnit(c, h.sessionSvc, unitID)
	if unit == nil {
		return
	}
	questions, err := h.quizSvc.GetQuizQuestions(c.Request.Context(), unit, count, services.GenerationOpts{
		Language: c.Query("lang"),
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}
