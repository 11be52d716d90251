package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, ImportPolicyZero, cfg.Import.DefaultPolicy)
	assert.Nil(t, cfg.Import.DefaultGPA)
	assert.Nil(t, cfg.Import.DefaultIncome)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSizeBytes)
	assert.False(t, cfg.StatusCheck.CacheEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("IMPORT_DEFAULT_POLICY", "Placeholder")
	t.Setenv("IMPORT_DEFAULT_GPA", "2.5")
	t.Setenv("IMPORT_DEFAULT_INCOME", "1000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ImportPolicyPlaceholder, cfg.Import.DefaultPolicy)
	require.NotNil(t, cfg.Import.DefaultGPA)
	assert.Equal(t, 2.5, *cfg.Import.DefaultGPA)
	require.NotNil(t, cfg.Import.DefaultIncome)
	assert.Equal(t, int64(1000), *cfg.Import.DefaultIncome)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
