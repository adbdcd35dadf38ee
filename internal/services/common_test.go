package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/koinetutor-backend/internal/logger"
	"github.com/yungbote/koinetutor-backend/internal/types"
)

// fakeAI scripts GenerateJSON responses by schema name, consumed in order.
// It is safe for the concurrent calls BootstrapSession makes.
type fakeAI struct {
	mu            sync.Mutex
	jsonResponses map[string][]map[string]any
	textResponse  string
	err           error
	calls         map[string]int
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		jsonResponses: map[string][]map[string]any{},
		calls:         map[string]int{},
	}
}

func (f *fakeAI) queue(schemaName string, obj map[string]any) {
	f.jsonResponses[schemaName] = append(f.jsonResponses[schemaName], obj)
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[schemaName]++
	if f.err != nil {
		return nil, f.err
	}
	queued := f.jsonResponses[schemaName]
	if len(queued) == 0 {
		return nil, fmt.Errorf("fakeAI: no queued response for %s", schemaName)
	}
	f.jsonResponses[schemaName] = queued[1:]
	return queued[0], nil
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["free_text"]++
	if f.err != nil {
		return "", f.err
	}
	return f.textResponse, nil
}

// fakeQuizRepo is an in-memory durable quiz layer.
type fakeQuizRepo struct {
	sets       map[string][]*types.QuizQuestion
	usage      map[uuid.UUID]int
	getErr     error
	replaceErr error
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		sets:  map[string][]*types.QuizQuestion{},
		usage: map[uuid.UUID]int{},
	}
}

func (f *fakeQuizRepo) GetByFingerprint(ctx context.Context, tx *gorm.DB, fingerprint string) ([]*types.QuizQuestion, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sets[fingerprint], nil
}

func (f *fakeQuizRepo) ReplaceSet(ctx context.Context, tx *gorm.DB, fingerprint string, questions []*types.QuizQuestion) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.sets[fingerprint] = questions
	return nil
}

func (f *fakeQuizRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) error {
	for _, id := range questionIDs {
		f.usage[id]++
	}
	return nil
}

// fakeFastCache is an in-memory redis stand-in.
type fakeFastCache struct {
	sets   map[string][]*types.QuizQuestion
	getErr error
	setErr error
}

func newFakeFastCache() *fakeFastCache {
	return &fakeFastCache{sets: map[string][]*types.QuizQuestion{}}
}

func (f *fakeFastCache) GetQuizSet(ctx context.Context, fingerprint string) ([]*types.QuizQuestion, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sets[fingerprint], nil
}

func (f *fakeFastCache) SetQuizSet(ctx context.Context, fingerprint string, questions []*types.QuizQuestion) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets[fingerprint] = questions
	return nil
}

func (f *fakeFastCache) Close() error { return nil }

// In-memory session store fakes.

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*types.StudySession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*types.StudySession{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.StudySession) (*types.StudySession, error) {
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StudySession, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.SessionStatus) error {
	if s, ok := f.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

type fakeUnitRepo struct {
	units     map[uuid.UUID]*types.TrainingUnit
	bySession map[uuid.UUID][]*types.TrainingUnit
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{
		units:     map[uuid.UUID]*types.TrainingUnit{},
		bySession: map[uuid.UUID][]*types.TrainingUnit{},
	}
}

func (f *fakeUnitRepo) AppendToSession(ctx context.Context, tx *gorm.DB, unit *types.TrainingUnit) (*types.TrainingUnit, error) {
	unit.Position = len(f.bySession[unit.SessionID])
	f.units[unit.ID] = unit
	f.bySession[unit.SessionID] = append(f.bySession[unit.SessionID], unit)
	return unit, nil
}

func (f *fakeUnitRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TrainingUnit, error) {
	return f.units[id], nil
}

func (f *fakeUnitRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.TrainingUnit, error) {
	return f.bySession[sessionID], nil
}

type fakeResponseRepo struct {
	byUnit map[uuid.UUID]*types.UserResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{byUnit: map[uuid.UUID]*types.UserResponse{}}
}

func (f *fakeResponseRepo) Create(ctx context.Context, tx *gorm.DB, response *types.UserResponse) (*types.UserResponse, error) {
	f.byUnit[response.UnitID] = response
	return response, nil
}

func (f *fakeResponseRepo) GetByUnitID(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) (*types.UserResponse, error) {
	return f.byUnit[unitID], nil
}

type fakeInsightRepo struct {
	bySession map[uuid.UUID][]*types.ExegeticalInsight
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{bySession: map[uuid.UUID][]*types.ExegeticalInsight{}}
}

func (f *fakeInsightRepo) Create(ctx context.Context, tx *gorm.DB, insight *types.ExegeticalInsight) (*types.ExegeticalInsight, error) {
	f.bySession[insight.SessionID] = append(f.bySession[insight.SessionID], insight)
	return insight, nil
}

func (f *fakeInsightRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ExegeticalInsight, error) {
	return f.bySession[sessionID], nil
}

func testLogger() *logger.Logger { return logger.NewNop() }
