package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_port: "9090"
db_driver: sqlite
sqlite_path: /tmp/gig.db
rate_limit_capacity: 5
rate_limit_refill_interval: 2s
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "7070")
	t.Setenv("PUBLISH_EVENTS", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port, "env wins over file")
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/gig.db", cfg.SQLitePath)
	assert.True(t, cfg.PublishEvents)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=from-dotenv\nDB_DRIVER=sqlite\n"), 0o644))
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DB_DRIVER", "")
	os.Unsetenv("DB_DRIVER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())

	cfg.DBDriver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unsupported DB_DRIVER")

	cfg = Defaults()
	cfg.JWTSecret = "x"
	cfg.PublishEvents = true
	cfg.RabbitMQURL = ""
	assert.ErrorContains(t, cfg.Validate(), "RABBITMQ_URL")
}

func TestRateLimitNormalize(t *testing.T) {
	r := RateLimitConfig{RefillInterval: 10 * time.Second}
	r.normalize()
	assert.Equal(t, 1, r.Capacity)
	assert.Equal(t, 1, r.RefillTokens)
	assert.Equal(t, 50*time.Second, r.TTL)
}

func TestRateLimitLegacyAliases(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "3s")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.Capacity)
	assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
