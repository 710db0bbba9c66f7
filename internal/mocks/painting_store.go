package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// MockPaintingStore implements store.PaintingStore for testing.
// Unset function fields return empty results.
type MockPaintingStore struct {
	GetByIDsFn     func(ctx context.Context, ids []uuid.UUID) ([]*domain.Painting, error)
	GetByArtistFn  func(ctx context.Context, artist string, limit, offset int) ([]*domain.Painting, error)
	GetWeeklyFn    func(ctx context.Context) ([]*domain.Painting, error)
	ArtistExistsFn func(ctx context.Context, artist string) (bool, error)
	StyleExistsFn  func(ctx context.Context, style string) (bool, error)
}

var _ store.PaintingStore = (*MockPaintingStore)(nil)

// GetByIDs implements store.PaintingStore
func (m *MockPaintingStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Painting, error) {
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return []*domain.Painting{}, nil
}

// GetByArtist implements store.PaintingStore
func (m *MockPaintingStore) GetByArtist(ctx context.Context, artist string, limit, offset int) ([]*domain.Painting, error) {
	if m.GetByArtistFn != nil {
		return m.GetByArtistFn(ctx, artist, limit, offset)
	}
	return []*domain.Painting{}, nil
}

// GetWeekly implements store.PaintingStore
func (m *MockPaintingStore) GetWeekly(ctx context.Context) ([]*domain.Painting, error) {
	if m.GetWeeklyFn != nil {
		return m.GetWeeklyFn(ctx)
	}
	return []*domain.Painting{}, nil
}

// ArtistExists implements store.PaintingStore
func (m *MockPaintingStore) ArtistExists(ctx context.Context, artist string) (bool, error) {
	if m.ArtistExistsFn != nil {
		return m.ArtistExistsFn(ctx, artist)
	}
	return false, nil
}

// StyleExists implements store.PaintingStore
func (m *MockPaintingStore) StyleExists(ctx context.Context, style string) (bool, error) {
	if m.StyleExistsFn != nil {
		return m.StyleExistsFn(ctx, style)
	}
	return false, nil
}
