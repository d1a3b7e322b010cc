package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// Check defaults
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "localhost:3000", cfg.FrontendHost)
	assert.Equal(t, "https://api.mobilitydatabase.org/v1", cfg.MobilityDB.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.MobilityDB.Timeout)
	assert.Equal(t, "@daily", cfg.Agency.RefreshSchedule)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("GTFS_RT_RATER_BUCKET", "rater-aggregates")
	t.Setenv("BACKEND_SOURCE", "Remote")
	t.Setenv("MOBILITY_DB_TIMEOUT", "10s")
	t.Setenv("ADMIN_TOKEN", "secret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "rater-aggregates", cfg.Storage.Bucket)
	assert.Equal(t, "remote", cfg.Storage.BackendSource, "backend source is lower-cased")
	assert.Equal(t, 10*time.Second, cfg.MobilityDB.Timeout)
	assert.Equal(t, "secret", cfg.Admin.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadUnknownBackendSource(t *testing.T) {
	t.Setenv("BACKEND_SOURCE", "S3")

	cfg, err := Load()
	require.NoError(t, err, "unknown overrides fall through to auto-detect")
	assert.Equal(t, "s3", cfg.Storage.BackendSource)
}

func TestValidateAfterOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Env = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidateInvalidBaseURL(t *testing.T) {
	t.Setenv("MOBILITY_DB_BASE_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	os.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
	assert.Equal(t, 50, getEnvAsInt("TEST_INT_MISSING", 50))
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}
