package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/service"
)

// MockTagService implements service.TagService for testing
type MockTagService struct {
	// CreateTagFn allows test cases to mock the CreateTag behavior.
	// By default a tag with the given name is returned.
	CreateTagFn func(ctx context.Context, name string) (*domain.Tag, error)

	Closed bool
}

var _ service.TagService = (*MockTagService)(nil)

// CreateTag implements service.TagService
func (m *MockTagService) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	if m.CreateTagFn != nil {
		return m.CreateTagFn(ctx, name)
	}
	return &domain.Tag{ID: uuid.New(), Name: name}, nil
}

// Close implements service.TagService
func (m *MockTagService) Close() {
	m.Closed = true
}
