package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "QUEUE_DRIVER", "OPPORTUNITY_CACHE_TTL", "DEMEX_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3003", cfg.Port)
	assert.Equal(t, "memory", cfg.QueueDriver)
	assert.Equal(t, 10*time.Minute, cfg.OpportunityCacheTTL)
	assert.Equal(t, "postgres://postgres:@localhost:5432/outreach?sslmode=disable", cfg.DSN())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"9000\"\nDEMEX_URL: http://demex.local\n"), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "http://demex.local", cfg.DemexURL)
}

func TestDatabaseURLWins(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

func TestUnknownQueueDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("QUEUE_DRIVER", "kafka")

	_, err := Load("")
	assert.Error(t, err)
}
