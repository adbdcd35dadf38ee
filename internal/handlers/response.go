package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
	"github.com/yungbote/koinetutor-backend/internal/services"
	"github.com/yungbote/koinetutor-backend/internal/syntax"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service-layer error taxonomy onto HTTP:
// validation and malformed-generation failures are the caller's (or the
// generator's) fault and non-retryable; transient generation failures tell
// the client to try again.
func RespondServiceError(c *gin.Context, err error) {
	var genErr *services.GenerationError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperrors.ErrInvalidArgument),
		errors.Is(err, syntax.ErrInvalidClause),
		errors.Is(err, syntax.ErrEmptyAnalysis),
		errors.Is(err, syntax.ErrUnknownRoot),
		errors.Is(err, syntax.ErrMalformedTree):
		RespondError(c, http.StatusUnprocessableEntity, "invalid_input", err)
	case errors.As(err, &genErr) && genErr.Kind == services.GenerationMalformed:
		RespondError(c, http.StatusBadGateway, "generation_malformed", err)
	case services.IsRetryableGeneration(err):
		RespondError(c, http.StatusServiceUnavailable, "generation_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
