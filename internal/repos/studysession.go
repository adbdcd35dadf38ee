package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type StudySessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) (*types.StudySession, error)
	// GetByID loads the session with its ordered unit list and responses.
	// A missing session is a nil result, not an error.
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.SessionStatus) error
}

type studySessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudySessionRepo(db *gorm.DB, baseLog *logger.Logger) StudySessionRepo {
	return &studySessionRepo{db: db, log: baseLog.With("repo", "StudySessionRepo")}
}

func (r *studySessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *studySessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var session types.StudySession
	err := transaction.WithContext(ctx).
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Responses").
		First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *studySessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.SessionStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.StudySession{}).
		Where("id = ?", id).
		Update("status", status).Error
}
