package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "CACHE_BACKEND", "CACHE_CAPACITY", "PAGE_DELAY_MS",
		"MAX_PAGES", "DEFAULT_RADIUS_KM", "DETAIL_CONCURRENCY", "DATABASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "5001", cfg.ServerPort)
	assert.Equal(t, CacheBackendPostgres, cfg.Cache.Backend)
	assert.Equal(t, 1000, cfg.Cache.Capacity)
	assert.Equal(t, 2*time.Second, cfg.Search.PageDelay)
	assert.Equal(t, 0, cfg.Search.MaxPages)
	assert.Equal(t, 10, cfg.Search.DefaultRadiusKm)
	assert.Equal(t, 10*time.Second, cfg.GooglePlaces.UpstreamTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "badger")
	t.Setenv("CACHE_CAPACITY", "50")
	t.Setenv("PAGE_DELAY_MS", "250")
	t.Setenv("DETAIL_CONCURRENCY", "4")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg := Load()

	assert.Equal(t, CacheBackendBadger, cfg.Cache.Backend)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.PageDelay)
	assert.Equal(t, 4, cfg.Search.DetailConcurrency)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseURL)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("CACHE_CAPACITY", "lots")

	cfg := Load()

	assert.Equal(t, 1000, cfg.Cache.Capacity)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Cache.Backend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Cache.Capacity = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Search.DefaultRadiusKm = -1
	assert.Error(t, cfg.Validate())
}
