package domain

import (
	"fmt"
	"strings"
)

// ContextKey identifies a QuizContext. It is derived from the normalized
// fields and never stored independently.
type ContextKey string

// QuizContext is the filter a page of quizzes is generated from. Empty
// strings mean "no filter" for that dimension.
type QuizContext struct {
	Artist string `json:"artist,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Style  string `json:"style,omitempty"`
	Page   int    `json:"page"`
}

// Normalize returns a copy with surrounding whitespace removed from every filter.
func (c QuizContext) Normalize() QuizContext {
	return QuizContext{
		Artist: strings.TrimSpace(c.Artist),
		Tag:    strings.TrimSpace(c.Tag),
		Style:  strings.TrimSpace(c.Style),
		Page:   c.Page,
	}
}

// Key returns the identity of the context. Contexts whose normalized fields
// are equal share a key.
func (c QuizContext) Key() ContextKey {
	n := c.Normalize()
	return ContextKey(fmt.Sprintf("%s-%s-%s-%d", n.Artist, n.Tag, n.Style, n.Page))
}

// Equal reports whether both contexts have the same key.
func (c QuizContext) Equal(other QuizContext) bool {
	return c.Key() == other.Key()
}

// Validate checks the page number.
func (c QuizContext) Validate() error {
	if c.Page < 0 {
		return NewValidationError("page", "must not be negative", ErrInvalidPage)
	}
	return nil
}

// UniqueContexts collapses contexts with equal keys, keeping the first
// occurrence and the input order.
func UniqueContexts(contexts []QuizContext) []QuizContext {
	seen := make(map[ContextKey]struct{}, len(contexts))
	out := make([]QuizContext, 0, len(contexts))
	for _, c := range contexts {
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c.Normalize())
	}
	return out
}
