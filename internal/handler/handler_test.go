package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/quiz/quiztest"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// harness wires the session endpoints against an in-memory catalog and
// miniredis, the way the router does in production.
type harness struct {
	t      *testing.T
	mr     *miniredis.Miniredis
	clock  *quiztest.Clock
	auth   *service.AuthService
	engine *quiz.Engine
	router *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	expired := t0.Add(-time.Hour)
	catalog := &quiztest.Catalog{
		Quizzes: map[int]quiz.Quiz{
			1: {ID: 1, Name: "Basics", DurationMinutes: 1},
			2: {ID: 2, Name: "Old", DurationMinutes: 1, EndTime: &expired},
			3: {ID: 3, Name: "Empty", DurationMinutes: 1},
		},
		Questions: map[int][]quiz.Question{1: quiztest.ThreeQuestions(), 2: quiztest.ThreeQuestions()},
	}
	clock := quiztest.NewClock(t0)
	engine := quiz.NewEngine(catalog, catalog, service.NewAttemptSubmitter(rdb), quiz.WithClock(clock))
	sessions := service.NewQuizSessionService(engine, zerolog.Nop())

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	auth := service.NewAuthService(cfg, rdb, nil, zerolog.Nop())

	r := gin.New()
	sh := NewSessionHandler(sessions, zerolog.Nop())
	api := r.Group("/api/v1", middleware.RequireAuth(auth))
	api.POST("/quizzes/:quiz_id/sessions", sh.Start)
	api.GET("/sessions/:session_id", sh.Get)
	api.PUT("/sessions/:session_id/answers", sh.Answer)
	api.POST("/sessions/:session_id/next", sh.Next)
	api.POST("/sessions/:session_id/previous", sh.Previous)
	api.POST("/sessions/:session_id/goto", sh.GoTo)
	api.POST("/sessions/:session_id/submit", sh.Submit)
	api.POST("/sessions/:session_id/resubmit", sh.Resubmit)

	wh := NewWSHandler(sessions, zerolog.Nop(), nil)
	r.GET("/ws/v1/sessions/:session_id/stream", middleware.RequireWSAuth(auth), wh.SessionStream)

	return &harness{t: t, mr: mr, clock: clock, auth: auth, engine: engine, router: r}
}

func (h *harness) token(userID int) string {
	h.t.Helper()
	tok, err := h.auth.GenerateToken(&model.User{ID: userID, Username: "learner", Role: model.RoleUser})
	require.NoError(h.t, err)
	return tok
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		PersistError string `json:"persist_error"`
	} `json:"metadata"`
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
