package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
)

// PaintingStore defines read access to paintings and the filter values
// derived from them.
type PaintingStore interface {
	// GetByIDs returns the paintings with the given IDs. Unknown IDs are
	// skipped, so the result may be shorter than ids.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Painting, error)

	// GetByArtist returns one page of an artist's paintings, oldest first.
	GetByArtist(ctx context.Context, artist string, limit, offset int) ([]*domain.Painting, error)

	// GetWeekly returns the featured paintings of the current week.
	GetWeekly(ctx context.Context) ([]*domain.Painting, error)

	// ArtistExists reports whether any painting is attributed to artist.
	ArtistExists(ctx context.Context, artist string) (bool, error)

	// StyleExists reports whether any painting carries style.
	StyleExists(ctx context.Context, style string) (bool, error)
}
