package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(t *testing.T) (*service.AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, rdb, nil, zerolog.Nop()), mr
}

func TestRequireAuth(t *testing.T) {
	auth, _ := newAuth(t)
	r := gin.New()
	r.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	r.GET("/admin", RequireAuth(auth), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	learner, err := auth.GenerateToken(&model.User{ID: 1, Username: "ana", Role: model.RoleUser})
	require.NoError(t, err)
	admin, err := auth.GenerateToken(&model.User{ID: 2, Username: "root", Role: model.RoleAdmin})
	require.NoError(t, err)

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do("/me", learner)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do("/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do("/me", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, do("/admin", learner).Code)
	assert.Equal(t, http.StatusNoContent, do("/admin", admin).Code)

	claims, err := auth.ValidateToken(learner)
	require.NoError(t, err)
	require.NoError(t, auth.Revoke(context.Background(), claims))

	w = do("/me", learner)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestRequireAuth_DenylistUnavailable(t *testing.T) {
	auth, mr := newAuth(t)
	r := gin.New()
	r.POST("/submit", RequireAuth(auth), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})

	token, err := auth.GenerateToken(&model.User{ID: 1, Username: "ana", Role: model.RoleUser})
	require.NoError(t, err)

	mr.SetError("ERR connection lost")
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", w.Body.String())
}

func TestRequireWSAuth_QueryToken(t *testing.T) {
	auth, _ := newAuth(t)
	r := gin.New()
	r.GET("/ws", RequireWSAuth(auth), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	token, err := auth.GenerateToken(&model.User{ID: 1, Username: "ana", Role: model.RoleUser})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(59 * time.Second)
	assert.False(t, rl.Allow("1.2.3.4"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestBrotli(t *testing.T) {
	body := strings.Repeat("attempt_id,score\n", 200)
	r := gin.New()
	r.GET("/big", BrotliWithConfig(BrotliConfig{MinLength: 64}), func(c *gin.Context) {
		c.Data(http.StatusOK, "text/csv", []byte(body))
	})
	r.GET("/small", BrotliWithConfig(BrotliConfig{MinLength: 64}), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}
