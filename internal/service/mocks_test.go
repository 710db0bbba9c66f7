package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/schedule"
	"github.com/phrazzld/artquiz-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockQuizStore mocks the store.QuizStore interface
type MockQuizStore struct {
	mock.Mock
}

func (m *MockQuizStore) FindByContext(ctx context.Context, qc domain.QuizContext, pageSize int) ([]*domain.Quiz, error) {
	args := m.Called(ctx, qc, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizStore) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockQuizStore) AddSubmissions(ctx context.Context, id uuid.UUID, correct, incorrect int64) error {
	args := m.Called(ctx, id, correct, incorrect)
	return args.Error(0)
}

// MockPaintingStore mocks the store.PaintingStore interface
type MockPaintingStore struct {
	mock.Mock
}

func (m *MockPaintingStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Painting, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Painting), args.Error(1)
}

func (m *MockPaintingStore) GetByArtist(ctx context.Context, artist string, limit, offset int) ([]*domain.Painting, error) {
	args := m.Called(ctx, artist, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Painting), args.Error(1)
}

func (m *MockPaintingStore) GetWeekly(ctx context.Context) ([]*domain.Painting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Painting), args.Error(1)
}

func (m *MockPaintingStore) ArtistExists(ctx context.Context, artist string) (bool, error) {
	args := m.Called(ctx, artist)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaintingStore) StyleExists(ctx context.Context, style string) (bool, error) {
	args := m.Called(ctx, style)
	return args.Bool(0), args.Error(1)
}

// MockTagStore mocks the store.TagStore interface
type MockTagStore struct {
	mock.Mock
}

func (m *MockTagStore) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockTagStore) FindByNames(ctx context.Context, names []string) ([]*domain.Tag, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tag), args.Error(1)
}

func (m *MockTagStore) CreateMultiple(ctx context.Context, tags []*domain.Tag) error {
	args := m.Called(ctx, tags)
	return args.Error(0)
}

func (m *MockTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return m
}

// MockScheduler mocks the QuizScheduler interface
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Initialize(ctx context.Context, fixed []domain.QuizContext) error {
	args := m.Called(ctx, fixed)
	return args.Error(0)
}

func (m *MockScheduler) Schedule(ctx context.Context) (domain.QuizContext, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.QuizContext), args.Error(1)
}

func (m *MockScheduler) RequestAddContext(ctx context.Context, contexts []domain.QuizContext, isFixed bool) (bool, error) {
	args := m.Called(ctx, contexts, isFixed)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) RequestDeleteContext(ctx context.Context, c domain.QuizContext) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) RequestUpdateFixedQuiz(ctx context.Context, fixed []domain.QuizContext) (bool, error) {
	args := m.Called(ctx, fixed)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) Optimize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockScheduler) Report(ctx context.Context) (schedule.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(schedule.Status), args.Error(1)
}
