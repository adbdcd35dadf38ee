package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// QuizCacheRepo is the durable layer of the quiz cache: question sets keyed
// by grammatical fingerprint. Writes are last-writer-wins by design so that
// two callers racing on the same cache miss never fail the store.
type QuizCacheRepo interface {
	GetByFingerprint(ctx context.Context, tx *gorm.DB, fingerprint string) ([]*types.QuizQuestion, error)
	// ReplaceSet upserts the set under the fingerprint position by position
	// and trims any leftover rows, all in one transaction. Racing writers
	// both succeed; the later one wins.
	ReplaceSet(ctx context.Context, tx *gorm.DB, fingerprint string, questions []*types.QuizQuestion) error
	IncrementUsage(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error
}

type quizCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizCacheRepo(db *gorm.DB, baseLog *logger.Logger) QuizCacheRepo {
	return &quizCacheRepo{db: db, log: baseLog.With("repo", "QuizCacheRepo")}
}

func (r *quizCacheRepo) GetByFingerprint(ctx context.Context, tx *gorm.DB, fingerprint string) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var questions []*types.QuizQuestion
	if err := transaction.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("position ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizCacheRepo) ReplaceSet(ctx context.Context, tx *gorm.DB, fingerprint string, questions []*types.QuizQuestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if len(questions) == 0 {
			return inner.Where("fingerprint = ?", fingerprint).Delete(&types.QuizQuestion{}).Error
		}
		for i, q := range questions {
			q.Fingerprint = fingerprint
			q.Position = i
		}
		if err := inner.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "fingerprint"}, {Name: "position"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"unit_id", "type", "prompt", "options",
				"correct_answer", "explanation", "usage_count", "updated_at",
			}),
		}).Create(&questions).Error; err != nil {
			return err
		}
		// Trim rows past the new set's length when the set shrank.
		return inner.
			Where("fingerprint = ? AND position >= ?", fingerprint, len(questions)).
			Delete(&types.QuizQuestion{}).Error
	})
}

func (r *quizCacheRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(questionIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.QuizQuestion{}).
		Where("id IN ?", questionIDs).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
