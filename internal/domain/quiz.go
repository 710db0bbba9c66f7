package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is a multiple-choice question over a set of paintings.
type Quiz struct {
	ID                    uuid.UUID   `json:"id"`
	Title                 string      `json:"title"`
	Description           string      `json:"description"`
	ArtistNames           []string    `json:"artists"`
	Tags                  []string    `json:"tags"`
	Styles                []string    `json:"styles"`
	AnswerPaintingIDs     []uuid.UUID `json:"answer_painting_ids"`
	DistractorPaintingIDs []uuid.UUID `json:"distractor_painting_ids"`
	ViewCount             int64       `json:"view_count"`
	CorrectCount          int64       `json:"correct_count"`
	IncorrectCount        int64       `json:"incorrect_count"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}
