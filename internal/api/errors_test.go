package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/artquiz-api/internal/api/shared"
	"github.com/phrazzld/artquiz-api/internal/batch"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/service"
	"github.com/phrazzld/artquiz-api/internal/service/auth"
	"github.com/phrazzld/artquiz-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"insufficient role", auth.ErrInsufficientRole, http.StatusForbidden},
		{"wrapped not found", fmt.Errorf("load: %w", store.ErrNotFound), http.StatusNotFound},
		{"tag exists", service.ErrTagExists, http.StatusConflict},
		{"validation", domain.NewValidationError("page", "must not be negative", domain.ErrInvalidPage), http.StatusBadRequest},
		{"unknown filter", fmt.Errorf("%w: artist %q", service.ErrUnknownFilter, "Nobody"), http.StatusBadRequest},
		{"scheduler busy", service.ErrSchedulerUnavailable, http.StatusServiceUnavailable},
		{"batcher closed", batch.ErrClosed, http.StatusServiceUnavailable},
		{"no quizzes", service.ErrNoQuizzes, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Tag already exists", GetSafeErrorMessage(fmt.Errorf("insert: %w", service.ErrTagExists)))
	assert.Equal(t, "Invalid page: must not be negative",
		GetSafeErrorMessage(domain.NewValidationError("page", "must not be negative", domain.ErrInvalidPage)))

	internal := errors.New(`pq: relation "quizzes" does not exist at postgres://app:hunter2@db:5432`)
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "hunter2")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(CreateTagRequest{Name: strings.Repeat("x", 51)})
	assert.Equal(t, "Invalid Name: too long", SanitizeValidationError(err))

	err = shared.ValidateRequest(SubmissionRequest{})
	assert.Equal(t, "Invalid IsCorrect: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}

func TestHandleAPIError_Fallback(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"), "Failed to load paintings")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to load paintings")

	rec = httptest.NewRecorder()
	HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrTagExists, "Failed to create tag")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tag already exists")
}
