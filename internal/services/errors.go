package services

import (
	"errors"
	"fmt"

	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
)

// GenerationErrorKind separates "try again" failures from structurally
// broken generated content, so the surface layer can tell them apart.
type GenerationErrorKind string

const (
	GenerationTimeout     GenerationErrorKind = "timeout"
	GenerationRateLimited GenerationErrorKind = "rate_limited"
	GenerationService     GenerationErrorKind = "service_error"
	GenerationMalformed   GenerationErrorKind = "malformed_output"
)

type GenerationError struct {
	Kind GenerationErrorKind
	Op   string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func newGenerationError(kind GenerationErrorKind, op string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Op: op, Err: err}
}

// IsRetryableGeneration reports whether the error is a transient generation
// failure worth retrying with backoff. Malformed output is never retryable.
func IsRetryableGeneration(err error) bool {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return false
	}
	switch genErr.Kind {
	case GenerationTimeout, GenerationRateLimited, GenerationService:
		return true
	default:
		return false
	}
}

// Session state-machine errors, built on the shared sentinels so handlers
// can map them to HTTP statuses with errors.Is.
var (
	ErrSessionNotFound  = fmt.Errorf("session %w", apperrors.ErrNotFound)
	ErrUnitNotFound     = fmt.Errorf("training unit %w", apperrors.ErrNotFound)
	ErrSessionCompleted = fmt.Errorf("%w: session is completed", apperrors.ErrConflict)
	ErrResponseExists   = fmt.Errorf("%w: unit already has a recorded response", apperrors.ErrConflict)
)
