package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
	"github.com/yungbote/koinetutor-backend/internal/utils"
)

// QuizFastCache is the redis layer of the hybrid quiz cache. Everything here
// is best-effort: a failed read is a miss, a failed write is a warning.
type QuizFastCache interface {
	GetQuizSet(ctx context.Context, fingerprint string) ([]*types.QuizQuestion, error)
	SetQuizSet(ctx context.Context, fingerprint string, questions []*types.QuizQuestion) error
	Close() error
}

type quizFastCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewQuizFastCache(log *logger.Logger) (QuizFastCache, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttlHours := utils.GetEnvAsInt("QUIZ_CACHE_TTL_HOURS", 24*7, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    utils.GetEnv("REDIS_PASSWORD", "", log),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &quizFastCache{
		log: log.With("service", "QuizFastCache"),
		rdb: rdb,
		ttl: time.Duration(ttlHours) * time.Hour,
	}, nil
}

func quizKey(fingerprint string) string {
	return "quiz:" + fingerprint
}

func (c *quizFastCache) GetQuizSet(ctx context.Context, fingerprint string) ([]*types.QuizQuestion, error) {
	raw, err := c.rdb.Get(ctx, quizKey(fingerprint)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []*types.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("corrupt quiz set for %s: %w", fingerprint, err)
	}
	return questions, nil
}

func (c *quizFastCache) SetQuizSet(ctx context.Context, fingerprint string, questions []*types.QuizQuestion) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, quizKey(fingerprint), raw, c.ttl).Err()
}

func (c *quizFastCache) Close() error { return c.rdb.Close() }
