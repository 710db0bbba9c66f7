package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// queryInt parses an optional non-negative integer query parameter.
// It returns nil when the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrInvalidFormat)
	}
	return &v, nil
}

// queryIntDefault parses an optional integer query parameter in [0, max].
func queryIntDefault(r *http.Request, name string, def, max int) (int, error) {
	v, err := queryInt(r, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	if *v > max {
		return 0, domain.NewValidationError(name, "must be at most "+strconv.Itoa(max), domain.ErrValidation)
	}
	return *v, nil
}

// queryUUIDs parses a list of ids given as repeated or comma separated
// query parameters.
func queryUUIDs(r *http.Request, name string, max int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, value := range r.URL.Query()[name] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, domain.NewValidationError(name, "contains an invalid id", domain.ErrInvalidID)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	if len(ids) > max {
		return nil, domain.NewValidationError(name, "has more than "+strconv.Itoa(max)+" ids", domain.ErrValidation)
	}
	return ids, nil
}
