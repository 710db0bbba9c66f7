package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/artquiz-api/internal/api"
	apiMiddleware "github.com/phrazzld/artquiz-api/internal/api/middleware"
	"github.com/phrazzld/artquiz-api/internal/service/auth"
)

const requestTimeout = 30 * time.Second

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Timeout(requestTimeout))

	quizHandler := api.NewQuizHandler(app.quizService, app.logger)
	tagHandler := api.NewTagHandler(app.tagService)
	paintingHandler := api.NewPaintingHandler(app.paintingStore)
	adminHandler := api.NewAdminHandler(app.authenticator, app.quizService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/quiz/schedule", quizHandler.GetSchedule)
		r.Post("/quiz/schedule", quizHandler.AddContext)
		r.Post("/quiz/{id}/view", quizHandler.RecordView)
		r.Post("/quiz/{id}/submission", quizHandler.RecordSubmission)

		r.Post("/tags", tagHandler.CreateTag)

		r.Get("/paintings", paintingHandler.GetByIDs)
		r.Get("/paintings/artist/{name}", paintingHandler.GetByArtist)

		r.Post("/admin/token", adminHandler.IssueToken)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(authMiddleware.RequireRole(auth.RoleAdmin))

			r.Put("/admin/schedule/fixed", adminHandler.UpdateFixed)
			r.Get("/admin/schedule/status", adminHandler.ScheduleStatus)
			r.Post("/admin/schedule/optimize", adminHandler.Optimize)
			r.Post("/admin/counters/flush", adminHandler.FlushCounters)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
