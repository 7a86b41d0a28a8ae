// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PAYOUT_MINIMUM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Payment.MinimumPayout)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.GeminiModel)
	assert.Equal(t, "admin@sapmusicgroup.com", cfg.Email.AdminNotifyEmail)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.False(t, cfg.AIEnabled())
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: defaultJWTSecret},
		Database:    DatabaseConfig{Password: "secret"},
		Storage:     StorageConfig{Provider: "local"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.NoError(t, cfg.Validate())
}

func TestValidateStorageProvider(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Provider: "ftp"}}
	assert.EqualError(t, cfg.Validate(), `unknown storage provider "ftp"`)
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: "6380"}
	assert.Equal(t, "cache:6380", r.Addr())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "12")
	t.Setenv("X_BAD_INT", "twelve")
	t.Setenv("X_BOOL", "TRUE")
	t.Setenv("X_FLOAT", "2.5")

	assert.Equal(t, 12, getEnvAsInt("X_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("X_BAD_INT", 1))
	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 0))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}
