package api

import (
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/phrazzld/artquiz-api/internal/api/shared"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/service"
)

// QuizHandler handles the public quiz endpoints.
type QuizHandler struct {
	quizService service.QuizService
	logger      *slog.Logger

	// intN picks the starting quiz of a freshly scheduled page.
	intN func(n int) int
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService service.QuizService, logger *slog.Logger) *QuizHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizHandler{
		quizService: quizService,
		logger:      logger.With(slog.String("component", "quiz_handler")),
		intN:        rand.IntN,
	}
}

// GetSchedule handles GET /api/quiz/schedule.
//
// A client paging through a context sends it back as artist, tag, style and
// page together with current_index and end_index from the previous response.
// The next quiz of the page is served until current_index reaches end_index;
// then a newly scheduled context takes over.
func (h *QuizHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, err := parseScheduleRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.quizService.ScheduleQuizzes(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to schedule quiz")
		return
	}
	if len(result.Quizzes) == 0 {
		log.Error("scheduler returned an empty page", slog.String("context", string(result.Context.Key())))
		HandleAPIError(w, r, service.ErrNoQuizzes, "")
		return
	}

	n := len(result.Quizzes)
	var index int
	if result.CurrentIndex != nil {
		index = (*result.CurrentIndex%n + 1) % n
	} else {
		index = h.intN(n)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ScheduleResponse{
		Quiz: quizToResponse(result.Quizzes[index]),
		Status: QuizStatus{
			CurrentIndex: index,
			EndIndex:     n - 1,
			Context:      contextToDTO(result.Context),
		},
	})
}

func parseScheduleRequest(r *http.Request) (service.ScheduleRequest, error) {
	var req service.ScheduleRequest
	q := r.URL.Query()

	page, err := queryInt(r, "page")
	if err != nil {
		return req, err
	}
	if req.CurrentIndex, err = queryInt(r, "current_index"); err != nil {
		return req, err
	}
	if req.EndIndex, err = queryInt(r, "end_index"); err != nil {
		return req, err
	}

	if q.Has("artist") || q.Has("tag") || q.Has("style") || page != nil {
		qc := domain.QuizContext{Artist: q.Get("artist"), Tag: q.Get("tag"), Style: q.Get("style")}
		if page != nil {
			qc.Page = *page
		}
		qc = qc.Normalize()
		req.Context = &qc
	}
	return req, nil
}

// AddContext handles POST /api/quiz/schedule.
func (h *QuizHandler) AddContext(w http.ResponseWriter, r *http.Request) {
	var req ContextDTO
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	added, err := h.quizService.AddContext(r.Context(), req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add quiz context")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AddContextResponse{Added: added})
}

// RecordView handles POST /api/quiz/{id}/view.
func (h *QuizHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	quizID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.quizService.RecordView(r.Context(), quizID)
	w.WriteHeader(http.StatusAccepted)
}

// RecordSubmission handles POST /api/quiz/{id}/submission.
func (h *QuizHandler) RecordSubmission(w http.ResponseWriter, r *http.Request) {
	quizID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmissionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.quizService.RecordSubmission(r.Context(), quizID, *req.IsCorrect)
	w.WriteHeader(http.StatusAccepted)
}
