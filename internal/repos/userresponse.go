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

type UserResponseRepo interface {
	// Create records the single response for a unit. A second response for
	// the same unit fails with ErrConflict via the unique unit_id index.
	Create(ctx context.Context, tx *gorm.DB, response *types.UserResponse) (*types.UserResponse, error)
	GetByUnitID(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.UserResponse, error)
}

type userResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserResponseRepo(db *gorm.DB, baseLog *logger.Logger) UserResponseRepo {
	return &userResponseRepo{db: db, log: baseLog.With("repo", "UserResponseRepo")}
}

func (r *userResponseRepo) Create(ctx context.Context, tx *gorm.DB, response *types.UserResponse) (*types.UserResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(response).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	return response, nil
}

func (r *userResponseRepo) GetByUnitID(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.UserResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var response types.UserResponse
	err := transaction.WithContext(ctx).First(&response, "unit_id = ?", unitID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}
