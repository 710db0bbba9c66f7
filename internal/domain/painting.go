package domain

import (
	"github.com/google/uuid"
)

// Painting is an artwork quizzes are built from.
type Painting struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	ArtistName string    `json:"artist_name"`
	ImageURL   string    `json:"image_url"`
	Tags       []string  `json:"tags"`
	Styles     []string  `json:"styles"`
	// IsWeekly marks the featured paintings of the current week.
	IsWeekly bool `json:"is_weekly"`
}

// WeeklyContexts turns featured paintings into the fixed contexts of the
// scheduler: one first-page context per distinct artist.
func WeeklyContexts(paintings []Painting) []QuizContext {
	contexts := make([]QuizContext, 0, len(paintings))
	for _, p := range paintings {
		if p.ArtistName == "" {
			continue
		}
		contexts = append(contexts, QuizContext{Artist: p.ArtistName, Page: 0})
	}
	return UniqueContexts(contexts)
}
