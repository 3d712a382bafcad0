package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "STORE_BACKEND", "ADMIN_PASSWORD", "POLL_INTERVAL", "SUPABASE_URL", "SUPABASE_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "data/splitters.json", cfg.LocalPath)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "location-documents", cfg.DocumentsBucket)
	assert.False(t, cfg.DocumentsEnabled())
}

func TestLoadPicksPostgresWhenDatabaseURLSet(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/splitters?sslmode=disable")
	t.Setenv("POLL_INTERVAL", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
}

func TestLoadRejectsPostgresWithoutURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
