package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type InsightRepo interface {
	Create(ctx context.Context, tx *gorm.DB, insight *types.ExegeticalInsight) (*types.ExegeticalInsight, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ExegeticalInsight, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) Create(ctx context.Context, tx *gorm.DB, insight *types.ExegeticalInsight) (*types.ExegeticalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(insight).Error; err != nil {
		return nil, err
	}
	return insight, nil
}

func (r *insightRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ExegeticalInsight, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var insights []*types.ExegeticalInsight
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&insights).Error; err != nil {
		return nil, err
	}
	return insights, nil
}
