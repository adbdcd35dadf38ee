package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

type SyntaxAnalysisRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.SyntaxAnalysisRecord) (*types.SyntaxAnalysisRecord, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SyntaxAnalysisRecord, error)
}

type syntaxAnalysisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyntaxAnalysisRepo(db *gorm.DB, baseLog *logger.Logger) SyntaxAnalysisRepo {
	return &syntaxAnalysisRepo{db: db, log: baseLog.With("repo", "SyntaxAnalysisRepo")}
}

func (r *syntaxAnalysisRepo) Create(ctx context.Context, tx *gorm.DB, record *types.SyntaxAnalysisRecord) (*types.SyntaxAnalysisRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *syntaxAnalysisRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SyntaxAnalysisRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var records []*types.SyntaxAnalysisRecord
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
