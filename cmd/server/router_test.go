package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/artquiz-api/internal/api/shared"
	"github.com/phrazzld/artquiz-api/internal/config"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/mocks"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/service"
	"github.com/phrazzld/artquiz-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAuthenticator struct{}

func (fixedAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	if username == "admin" && password == "secret" {
		return "admin-token", nil
	}
	return "", auth.ErrInvalidCredentials
}

func newTestApplication(t *testing.T) (*application, *mocks.MockQuizService, *mocks.MockTagService) {
	t.Helper()

	quizzes := &mocks.MockQuizService{
		ScheduleQuizzesFn: func(ctx context.Context, req service.ScheduleRequest) (*service.ScheduleResult, error) {
			return &service.ScheduleResult{Quizzes: []*domain.Quiz{{Title: "Who painted this?"}}}, nil
		},
	}
	tags := &mocks.MockTagService{}
	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "admin-token":
				return mocks.AdminClaims(), nil
			case "player-token":
				return &auth.Claims{Subject: "player", Role: "player"}, nil
			}
			return nil, auth.ErrInvalidToken
		},
	}

	app := &application{
		config:        &config.Config{Server: config.ServerConfig{Port: 8080, LogLevel: "debug"}},
		logger:        testLogger(t),
		paintingStore: &mocks.MockPaintingStore{},
		jwtService:    jwt,
		authenticator: fixedAuthenticator{},
		quizService:   quizzes,
		tagService:    tags,
	}
	return app, quizzes, tags
}

func TestRouter_PublicRoutes(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	router := app.setupRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"schedule", http.MethodGet, "/api/quiz/schedule", "", http.StatusOK},
		{"add context", http.MethodPost, "/api/quiz/schedule", `{"artist":"Monet"}`, http.StatusOK},
		{"create tag", http.MethodPost, "/api/tags", `{"name":"light"}`, http.StatusCreated},
		{"paintings by artist", http.MethodGet, "/api/paintings/artist/Monet", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/cards", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body)))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(shared.TraceIDHeader))
		})
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	router := app.setupRouter()

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"invalid token", "forged", http.StatusUnauthorized},
		{"player token", "player-token", http.StatusForbidden},
		{"admin token", "admin-token", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/admin/schedule/status", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRouter_AdminTokenFlow(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/token", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin-token")

	req = httptest.NewRequest(http.MethodPost, "/api/admin/counters/flush", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/token", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func testLogger(t *testing.T) *slog.Logger {
	l, _ := logger.GetTestLogger(t)
	return l
}
