package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/artquiz-api/internal/api/shared"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/service"
	"github.com/phrazzld/artquiz-api/internal/service/auth"
)

// AdminAuthenticator exchanges administrator credentials for a token.
type AdminAuthenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// AdminHandler serves the administrator endpoints. Everything except the
// token endpoint sits behind the admin role.
type AdminHandler struct {
	authenticator AdminAuthenticator
	quizService   service.QuizService
	logger        *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authenticator AdminAuthenticator, quizService service.QuizService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		authenticator: authenticator,
		quizService:   quizService,
		logger:        logger.With(slog.String("component", "admin_handler")),
	}
}

// IssueToken handles POST /api/admin/token with HTTP basic credentials.
func (h *AdminHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Authentication required",
			auth.ErrMissingToken, shared.WithElevatedLogLevel())
		return
	}

	token, err := h.authenticator.Login(r.Context(), username, password)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusUnauthorized {
			// Failed logins are worth seeing at WARN.
			shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to issue token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

// UpdateFixed handles PUT /api/admin/schedule/fixed.
func (h *AdminHandler) UpdateFixed(w http.ResponseWriter, r *http.Request) {
	var req UpdateFixedRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	contexts := make([]domain.QuizContext, 0, len(req.Contexts))
	for _, c := range req.Contexts {
		contexts = append(contexts, c.toDomain())
	}

	updated, err := h.quizService.UpdateFixedContexts(r.Context(), contexts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update fixed contexts")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("fixed contexts updated",
		slog.Int("count", len(contexts)),
		slog.Bool("updated", updated))

	shared.RespondWithJSON(w, r, http.StatusOK, UpdateFixedResponse{Updated: updated})
}

// ScheduleStatus handles GET /api/admin/schedule/status.
func (h *AdminHandler) ScheduleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.quizService.ScheduleStatus(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to read scheduler status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Optimize handles POST /api/admin/schedule/optimize.
func (h *AdminHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if err := h.quizService.OptimizeSchedule(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to optimize schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlushCounters handles POST /api/admin/counters/flush.
func (h *AdminHandler) FlushCounters(w http.ResponseWriter, r *http.Request) {
	resp := FlushResponse{
		Views:       h.quizService.FlushViews(r.Context()),
		Submissions: h.quizService.FlushSubmissions(r.Context()),
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("counters flushed on request",
		slog.Int("views_persisted", resp.Views.Persisted),
		slog.Int("submissions_persisted", resp.Submissions.Persisted),
		slog.Int("failed", resp.Views.Failed+resp.Submissions.Failed))

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
