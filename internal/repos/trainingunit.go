package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	apperrors "github.com/yungbote/koinetutor-backend/internal/pkg/errors"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type TrainingUnitRepo interface {
	// AppendToSession assigns the next position within the session and
	// creates the unit, both inside one transaction. The unique
	// (session_id, position) index turns a racing append into
	// ErrConflict, which callers may retry.
	AppendToSession(ctx context.Context, tx *gorm.DB, unit *types.TrainingUnit) (*types.TrainingUnit, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TrainingUnit, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.TrainingUnit, error)
}

type trainingUnitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrainingUnitRepo(db *gorm.DB, baseLog *logger.Logger) TrainingUnitRepo {
	return &trainingUnitRepo{db: db, log: baseLog.With("repo", "TrainingUnitRepo")}
}

func (r *trainingUnitRepo) AppendToSession(ctx context.Context, tx *gorm.DB, unit *types.TrainingUnit) (*types.TrainingUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var next int
		if err := inner.Model(&types.TrainingUnit{}).
			Where("session_id = ?", unit.SessionID).
			Select("COALESCE(MAX(position)+1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		unit.Position = next
		return inner.Create(unit).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *trainingUnitRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TrainingUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var unit types.TrainingUnit
	err := transaction.WithContext(ctx).First(&unit, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *trainingUnitRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.TrainingUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var units []*types.TrainingUnit
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
