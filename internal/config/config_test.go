package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "test-secret")
		t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$fakehash")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost:8000", cfg.Listen)
		assert.Equal(t, "admin", cfg.AdminUsername)
		assert.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
		assert.InDelta(t, 0.33, cfg.LowRiskThreshold, 0.0001)
		assert.InDelta(t, 0.67, cfg.HighRiskThreshold, 0.0001)
		assert.InDelta(t, 0.25, cfg.WeightHRV, 0.0001)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "test-secret")
		t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$fakehash")
		t.Setenv("LISTEN_ADDR", "0.0.0.0:9000")
		t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "60")
		t.Setenv("HIGH_RISK_THRESHOLD", "0.8")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
		assert.Equal(t, time.Hour, cfg.AccessTokenExpiry)
		assert.InDelta(t, 0.8, cfg.HighRiskThreshold, 0.0001)
	})

	t.Run("requires a secret key", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "")
		t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$fakehash")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET_KEY")
	})

	t.Run("requires an admin password hash", func(t *testing.T) {
		t.Setenv("SECRET_KEY", "test-secret")
		t.Setenv("ADMIN_PASSWORD_HASH", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH")
	})
}
