package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/counter"
	"github.com/phrazzld/artquiz-api/internal/domain"
)

// ContextDTO is a quiz context on the wire. Empty filters match everything.
type ContextDTO struct {
	Artist string `json:"artist"`
	Tag    string `json:"tag"`
	Style  string `json:"style"`
	Page   int    `json:"page" validate:"gte=0"`
}

func (c ContextDTO) toDomain() domain.QuizContext {
	return domain.QuizContext{Artist: c.Artist, Tag: c.Tag, Style: c.Style, Page: c.Page}.Normalize()
}

func contextToDTO(c domain.QuizContext) ContextDTO {
	return ContextDTO{Artist: c.Artist, Tag: c.Tag, Style: c.Style, Page: c.Page}
}

// QuizResponse is one quiz as served to players.
type QuizResponse struct {
	ID                    uuid.UUID   `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	Artists               []string    `json:"artists"`
	Tags                  []string    `json:"tags"`
	Styles                []string    `json:"styles"`
	AnswerPaintingIDs     []uuid.UUID `json:"answer_painting_ids"`
	DistractorPaintingIDs []uuid.UUID `json:"distractor_painting_ids"`
	ViewCount             int64       `json:"view_count"`
	CorrectCount          int64       `json:"correct_count"`
	IncorrectCount        int64       `json:"incorrect_count"`
}

func quizToResponse(q *domain.Quiz) QuizResponse {
	return QuizResponse{
		ID:                    q.ID,
		Title:                 q.Title,
		Description:           q.Description,
		Artists:               q.ArtistNames,
		Tags:                  q.Tags,
		Styles:                q.Styles,
		AnswerPaintingIDs:     q.AnswerPaintingIDs,
		DistractorPaintingIDs: q.DistractorPaintingIDs,
		ViewCount:             q.ViewCount,
		CorrectCount:          q.CorrectCount,
		IncorrectCount:        q.IncorrectCount,
	}
}

// QuizStatus tells the client where it is in the page of its context. The
// client sends it back with the next schedule request.
type QuizStatus struct {
	CurrentIndex int        `json:"current_index"`
	EndIndex     int        `json:"end_index"`
	Context      ContextDTO `json:"context"`
}

// ScheduleResponse is the quiz to show next and the paging status.
type ScheduleResponse struct {
	Quiz   QuizResponse `json:"quiz"`
	Status QuizStatus   `json:"status"`
}

// AddContextResponse reports whether the scheduler accepted the context.
type AddContextResponse struct {
	Added bool `json:"added"`
}

// SubmissionRequest records one answer to a quiz.
type SubmissionRequest struct {
	IsCorrect *bool `json:"is_correct" validate:"required"`
}

// CreateTagRequest defines the payload for tag creation.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// TagResponse is a created tag.
type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func tagToResponse(t *domain.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

// PaintingResponse is a painting as served to players.
type PaintingResponse struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	ImageURL string    `json:"image_url"`
	Tags     []string  `json:"tags"`
	Styles   []string  `json:"styles"`
}

func paintingsToResponse(paintings []*domain.Painting) []PaintingResponse {
	out := make([]PaintingResponse, 0, len(paintings))
	for _, p := range paintings {
		out = append(out, PaintingResponse{
			ID:       p.ID,
			Title:    p.Title,
			Artist:   p.ArtistName,
			ImageURL: p.ImageURL,
			Tags:     p.Tags,
			Styles:   p.Styles,
		})
	}
	return out
}

// TokenResponse carries an admin access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateFixedRequest replaces the fixed contexts of the scheduler.
type UpdateFixedRequest struct {
	Contexts []ContextDTO `json:"contexts" validate:"required,min=1,dive"`
}

// UpdateFixedResponse reports whether the fixed set was replaced.
type UpdateFixedResponse struct {
	Updated bool `json:"updated"`
}

// FlushResponse reports the outcome of a manual counter flush.
type FlushResponse struct {
	Views       counter.FlushResult `json:"views"`
	Submissions counter.FlushResult `json:"submissions"`
}
