package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.InDelta(t, 1.0, cfg.Ranking.Floor, 1e-9)
	assert.InDelta(t, 10.0, cfg.Ranking.Ceil, 1e-9)
	assert.InDelta(t, 60.0, cfg.Ranking.FallbackThreshold, 1e-9)
	assert.InDelta(t, 0.8, cfg.Ranking.RelaxFactor, 1e-9)
	assert.Equal(t, "https://api.ocr.space", cfg.OCR.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_RANKING_FALLBACK_THRESHOLD", "50")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("DEDUP_WINDOW", "3s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 50.0, cfg.Ranking.FallbackThreshold, 1e-9)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.DedupWindow)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_OCR_LANGUAGE=fre\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("APP_OCR_LANGUAGE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fre", cfg.OCR.Language)
}

func TestLoad_InvalidRanking(t *testing.T) {
	t.Setenv("APP_RANKING_FLOOR", "10")
	t.Setenv("APP_RANKING_CEIL", "1")

	_, err := Load("")
	assert.ErrorContains(t, err, "floor")
}

func TestLoad_EnabledProviderNeedsKey(t *testing.T) {
	t.Setenv("APP_OPENROUTER_ENABLED", "true")
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "openrouter api key")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...cdef", MaskAPIKey("sk-or-1234567890abcdef"))
}
