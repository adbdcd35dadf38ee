package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
	"github.com/yungbote/koinetutor-backend/internal/repos"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// SessionService owns the study-session lifecycle: ACTIVE sessions
// accumulate units append-only and record at most one response per unit;
// COMPLETED is terminal and rejects further writes.
type SessionService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, passageReference string) (*types.StudySession, error)
	// GetSession returns nil for a missing session; absence is a normal
	// outcome, not an error.
	GetSession(ctx context.Context, id uuid.UUID) (*types.StudySession, error)
	// GetUnit returns nil for a missing unit.
	GetUnit(ctx context.Context, id uuid.UUID) (*types.TrainingUnit, error)
	AppendUnit(ctx context.Context, sessionID uuid.UUID, unit *types.TrainingUnit) (*types.TrainingUnit, error)
	RecordResponse(ctx context.Context, unitID uuid.UUID, answer string, eval *Evaluation) (*types.UserResponse, error)
	// GetResponse returns the unit's recorded response, or nil.
	GetResponse(ctx context.Context, unitID uuid.UUID) (*types.UserResponse, error)
	CompleteSession(ctx context.Context, id uuid.UUID) (*types.StudySession, error)
	SaveInsight(ctx context.Context, insight *types.ExegeticalInsight) (*types.ExegeticalInsight, error)
	ListInsights(ctx context.Context, sessionID uuid.UUID) ([]*types.ExegeticalInsight, error)
	// BootstrapSession identifies the passage's significant forms and
	// generates a training unit for each, appending them in form order.
	BootstrapSession(ctx context.Context, sessionID uuid.UUID, opts GenerationOpts) ([]*types.TrainingUnit, error)
}

const bootstrapConcurrency = 4

type sessionService struct {
	log          *logger.Logger
	sessionRepo  repos.StudySessionRepo
	unitRepo     repos.TrainingUnitRepo
	responseRepo repos.UserResponseRepo
	insightRepo  repos.InsightRepo
	tutor        TutorService
}

func NewSessionService(
	log *logger.Logger,
	sessionRepo repos.StudySessionRepo,
	unitRepo repos.TrainingUnitRepo,
	responseRepo repos.UserResponseRepo,
	insightRepo repos.InsightRepo,
	tutor TutorService,
) SessionService {
	return &sessionService{
		log:          log.With("service", "SessionService"),
		sessionRepo:  sessionRepo,
		unitRepo:     unitRepo,
		responseRepo: responseRepo,
		insightRepo:  insightRepo,
		tutor:        tutor,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID uuid.UUID, passageReference string) (*types.StudySession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id required", apperrors.ErrInvalidArgument)
	}
	if passageReference == "" {
		return nil, fmt.Errorf("%w: passage reference required", apperrors.ErrInvalidArgument)
	}
	session := &types.StudySession{
		ID:               uuid.New(),
		UserID:           userID,
		PassageReference: passageReference,
		Status:           types.SessionActive,
	}
	return s.sessionRepo.Create(ctx, nil, session)
}

func (s *sessionService) GetSession(ctx context.Context, id uuid.UUID) (*types.StudySession, error) {
	return s.sessionRepo.GetByID(ctx, nil, id)
}

func (s *sessionService) GetUnit(ctx context.Context, id uuid.UUID) (*types.TrainingUnit, error) {
	return s.unitRepo.GetByID(ctx, nil, id)
}

func (s *sessionService) activeSession(ctx context.Context, id uuid.UUID) (*types.StudySession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == types.SessionCompleted {
		return nil, ErrSessionCompleted
	}
	return session, nil
}

func (s *sessionService) AppendUnit(ctx context.Context, sessionID uuid.UUID, unit *types.TrainingUnit) (*types.TrainingUnit, error) {
	if _, err := s.activeSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	unit.SessionID = sessionID
	return s.unitRepo.AppendToSession(ctx, nil, unit)
}

func (s *sessionService) RecordResponse(ctx context.Context, unitID uuid.UUID, answer string, eval *Evaluation) (*types.UserResponse, error) {
	unit, err := s.unitRepo.GetByID(ctx, nil, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, ErrUnitNotFound
	}
	if _, err := s.activeSession(ctx, unit.SessionID); err != nil {
		return nil, err
	}
	existing, err := s.responseRepo.GetByUnitID(ctx, nil, unitID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrResponseExists
	}

	response := &types.UserResponse{
		ID:        uuid.New(),
		SessionID: unit.SessionID,
		UnitID:    unitID,
		Answer:    answer,
		Feedback:  eval.Feedback,
		IsCorrect: eval.IsCorrect,
	}
	created, err := s.responseRepo.Create(ctx, nil, response)
	if errors.Is(err, apperrors.ErrConflict) {
		// Lost the check-then-append race; same outcome as the pre-check.
		return nil, ErrResponseExists
	}
	return created, err
}

func (s *sessionService) GetResponse(ctx context.Context, unitID uuid.UUID) (*types.UserResponse, error) {
	return s.responseRepo.GetByUnitID(ctx, nil, unitID)
}

func (s *sessionService) CompleteSession(ctx context.Context, id uuid.UUID) (*types.StudySession, error) {
	session, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == types.SessionCompleted {
		return session, nil
	}
	if err := s.sessionRepo.UpdateStatus(ctx, nil, id, types.SessionCompleted); err != nil {
		return nil, err
	}
	session.Status = types.SessionCompleted
	return session, nil
}

func (s *sessionService) SaveInsight(ctx context.Context, insight *types.ExegeticalInsight) (*types.ExegeticalInsight, error) {
	if insight.SessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session id required", apperrors.ErrInvalidArgument)
	}
	if insight.Content == "" {
		return nil, fmt.Errorf("%w: insight content required", apperrors.ErrInvalidArgument)
	}
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	return s.insightRepo.Create(ctx, nil, insight)
}

func (s *sessionService) ListInsights(ctx context.Context, sessionID uuid.UUID) ([]*types.ExegeticalInsight, error) {
	return s.insightRepo.GetBySessionID(ctx, nil, sessionID)
}

func (s *sessionService) BootstrapSession(ctx context.Context, sessionID uuid.UUID, opts GenerationOpts) ([]*types.TrainingUnit, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	forms, err := s.tutor.IdentifyForms(ctx, session.PassageReference, opts)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return []*types.TrainingUnit{}, nil
	}

	// Generate concurrently, then append sequentially to preserve form order.
	generated := make([]*types.TrainingUnit, len(forms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bootstrapConcurrency)
	for i, form := range forms {
		g.Go(func() error {
			unit, uErr := s.tutor.CreateTrainingUnit(gctx, form, session.PassageReference, opts)
			if uErr != nil {
				return uErr
			}
			generated[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	units := make([]*types.TrainingUnit, 0, len(generated))
	for _, unit := range generated {
		appended, aErr := s.AppendUnit(ctx, sessionID, unit)
		if aErr != nil {
			return units, aErr
		}
		units = append(units, appended)
	}
	return units, nil
}
