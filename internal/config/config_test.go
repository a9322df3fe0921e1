package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASS_THRESHOLD", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 60, cfg.PassThreshold)
	assert.Equal(t, 30*time.Minute, cfg.SessionRetention)
	assert.Equal(t, 24*time.Hour, cfg.ReminderInterval)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PASS_THRESHOLD", "70")
	t.Setenv("EXPORT_TTL_MINUTES", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	assert.Equal(t, 70, cfg.PassThreshold)
	assert.Equal(t, 5*time.Minute, cfg.ExportTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PASS_THRESHOLD", "abc")
	assert.Equal(t, 60, Load().PassThreshold)

	t.Setenv("PASS_THRESHOLD", "150")
	assert.Equal(t, 100, Load().PassThreshold)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "quiz:12:payload", CacheKey.QuizPayloadKey(12))
	assert.Equal(t, "export:abc:file", CacheKey.ExportFileKey("abc"))
	assert.Equal(t, "auth:revoked:j1", CacheKey.RevokedTokenKey("j1"))
}
