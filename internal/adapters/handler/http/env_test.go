package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/workers"
	"github.com/comitanigiacomo/kanso-streaks/internal/metrics"
)

// fixedNow is noon UTC on Wednesday 2024-01-10.
var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	router  *gin.Engine
	users   *repository.InMemoryUserRepository
	habits  *repository.InMemoryHabitRepository
	logs    *repository.InMemoryHabitLogRepository
	metrics *metrics.Metrics
}

type envOption func(deps *adapterHTTP.RouterDependencies)

func withLocalLimit(limit int) envOption {
	return func(deps *adapterHTTP.RouterDependencies) {
		deps.RateLimit = limit
		deps.RateWindow = time.Minute
		deps.LocalLimiter = middleware.NewLocalRateLimiter(limit, time.Minute)
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:   repository.NewInMemoryUserRepository(),
		habits:  repository.NewInMemoryHabitRepository(),
		logs:    repository.NewInMemoryHabitLogRepository(),
		metrics: metrics.New(),
	}
	clock := func() time.Time { return fixedNow }

	worker := workers.NewStreakWorker(env.habits, env.logs, env.users,
		workers.WithMetrics(env.metrics),
		workers.WithClock(clock),
	)
	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	t.Cleanup(func() {
		cancel()
		worker.Wait()
	})

	tokens := services.NewTokenService("test-secret", "kanso-test", time.Hour, env.users)
	habitSvc := services.NewHabitService(env.habits, worker)
	dashboardSvc := services.NewDashboardService(env.users, env.habits, env.logs, time.UTC)
	dashboardSvc.SetClock(clock)
	statsSvc := services.NewStatsService(env.users, env.habits, env.logs, time.UTC)
	statsSvc.SetClock(clock)

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:      adapterHTTP.NewAuthHandler(services.NewAuthService(env.users, tokens)),
		UserHandler:      adapterHTTP.NewUserHandler(services.NewUserService(env.users)),
		HabitHandler:     adapterHTTP.NewHabitHandler(habitSvc),
		LogHandler:       adapterHTTP.NewLogHandler(services.NewLogService(env.logs, habitSvc, worker)),
		DashboardHandler: adapterHTTP.NewDashboardHandler(dashboardSvc, env.metrics),
		StatsHandler:     adapterHTTP.NewStatsHandler(statsSvc),
		TokenValidator:   tokens,
		Logger:           zap.NewNop(),
		Metrics:          env.metrics,
		StartTime:        fixedNow,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.router = adapterHTTP.NewRouter(deps)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signUp registers and logs in a user named after the local part of email,
// returning its id and a bearer token.
func (e *testEnv) signUp(t *testing.T, email, timezone string) (string, string) {
	t.Helper()

	username, _, _ := strings.Cut(email, "@")
	body := `{"email":"` + email + `","username":"` + username + `","password":"password123","timezone":"` + timezone + `"}`
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user struct {
		ID string `json:"id"`
	}
	decode(t, w, &user)

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &tok)

	return user.ID, tok.AccessToken
}

// createHabit posts body and returns the new habit's id.
func (e *testEnv) createHabit(t *testing.T, token, body string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/habits", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var habit struct {
		ID string `json:"id"`
	}
	decode(t, w, &habit)
	return habit.ID
}

func (e *testEnv) logDay(t *testing.T, token, habitID, day string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/habits/"+habitID+"/logs", token, `{"date":"`+day+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
