package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const testConfig = `
log-level: debug
http-port: "8080"
storage: redis
session-ttl: 30m
jwt-secret-key: secret
allowed-origins:
  - localhost:5173
  - example.com
redis:
  host: redis
  port: "6380"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file and fills defaults", func(t *testing.T) {
		// Given: a config file without socket-port
		path := writeConfig(t, testConfig)

		// When: it is loaded
		conf, err := Load(path)

		// Then: file values and defaults are both present
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, StorageRedis, conf.Storage)
		assert.Equal(t, 30*time.Minute, conf.SessionTTL)
		assert.Equal(t, []string{"localhost:5173", "example.com"}, conf.AllowedOrigins)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, testConfig)
		t.Setenv("HTTP_PORT", "7000")
		t.Setenv("STORAGE", "memory")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7000", conf.HTTPPort)
		assert.Equal(t, StorageMemory, conf.Storage)
	})

	t.Run("Missing file falls back to the environment", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "from-env")

		conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.NoError(t, err)
		assert.Equal(t, "from-env", conf.JWTSecretKey)
		assert.Equal(t, StorageMemory, conf.Storage)
		assert.Equal(t, 24*time.Hour, conf.SessionTTL)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Unknown storage is rejected", func(t *testing.T) {
		path := writeConfig(t, "storage: sqlite\njwt-secret-key: secret\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrUnknownStorage)
	})

	t.Run("Empty secret is rejected", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		path := writeConfig(t, "storage: memory\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrEmptySecret)
	})

	t.Run("MustLoad panics on invalid config", func(t *testing.T) {
		t.Setenv("JWT_SECRET_KEY", "")
		path := writeConfig(t, "storage: memory\n")

		assert.Panics(t, func() { MustLoad(path) })
	})

	t.Run("Shipped config.yml needs a secret from the environment", func(t *testing.T) {
		// Given: the config.yml committed at the repository root
		path := filepath.Join("..", "..", "config.yml")
		require.FileExists(t, path)
		t.Setenv("JWT_SECRET_KEY", "")

		// When: it is loaded without JWT_SECRET_KEY
		_, err := Load(path)

		// Then: startup is refused
		require.ErrorIs(t, err, apperror.ErrEmptySecret)

		// When: the secret is provided by the environment
		t.Setenv("JWT_SECRET_KEY", "from-env")
		conf, err := Load(path)

		// Then: the file loads
		require.NoError(t, err)
		assert.Equal(t, "from-env", conf.JWTSecretKey)
	})
}
