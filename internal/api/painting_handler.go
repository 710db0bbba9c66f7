package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/artquiz-api/internal/api/shared"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/store"
)

const (
	// MaxPaintingIDs bounds GET /api/paintings?ids=.
	MaxPaintingIDs = 100

	defaultPaintingLimit = 20
	maxPaintingLimit     = 100
)

// PaintingHandler serves painting lookups.
type PaintingHandler struct {
	paintings store.PaintingStore
}

// NewPaintingHandler creates a new PaintingHandler.
func NewPaintingHandler(paintings store.PaintingStore) *PaintingHandler {
	return &PaintingHandler{paintings: paintings}
}

// GetByIDs handles GET /api/paintings?ids=a,b,c.
// Unknown ids are left out of the response.
func (h *PaintingHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := queryUUIDs(r, "ids", MaxPaintingIDs)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	paintings, err := h.paintings.GetByIDs(r.Context(), ids)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load paintings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, paintingsToResponse(paintings))
}

// GetByArtist handles GET /api/paintings/artist/{name}?limit=&offset=.
func (h *PaintingHandler) GetByArtist(w http.ResponseWriter, r *http.Request) {
	artist := strings.TrimSpace(chi.URLParam(r, "name"))
	if artist == "" {
		HandleAPIError(w, r, domain.NewValidationError("name", "is required", domain.ErrValidation), "")
		return
	}

	limit, err := queryIntDefault(r, "limit", defaultPaintingLimit, maxPaintingLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := queryIntDefault(r, "offset", 0, int(^uint32(0)>>1))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	paintings, err := h.paintings.GetByArtist(r.Context(), artist, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load paintings")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, paintingsToResponse(paintings))
}
