package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAppliesDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"server":{"port":8080}}`), 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.Read(file))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./uploads", cfg.Media.UploadDir)
	assert.Equal(t, "vhist:transcode", cfg.Transcode.Stream)
	assert.Equal(t, 2, cfg.Transcode.Workers)
	assert.Equal(t, 2, cfg.Transcode.MaxAttempts)

	// A zero-valued config must come out runnable: upload limits that
	// reject nothing valid, a ticker-safe health interval, a real
	// consumer name and a non-instant requeue delay.
	assert.Positive(t, cfg.Upload.MaxRequestBodyMB)
	assert.Positive(t, cfg.Upload.MaxMultipartMemoryMB)
	assert.Positive(t, cfg.Redis.HealthCheckInterval)
	assert.NotEmpty(t, cfg.Transcode.Consumer)
	assert.Equal(t, 5*time.Second, cfg.Transcode.BackoffBase)
}

func TestReadEnvOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"database":{"dsn":"postgres://file"},"media":{"domain":"https://file.example"}}`), 0o644))

	t.Setenv("VHIST_DATABASE_DSN", "postgres://env")
	t.Setenv("VHIST_DOMAIN", "https://env.example")

	cfg := NewConfig()
	require.NoError(t, cfg.Read(file))

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "https://env.example", cfg.Media.Domain)
}

func TestReadMissingFile(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.Read(filepath.Join(t.TempDir(), "absent.json")))
}
