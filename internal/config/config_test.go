package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL())
	assert.Equal(t, time.Minute, cfg.Auth.OTPCooldown())
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPCooldownRetention())
	assert.Equal(t, time.Minute, cfg.Auth.OTPCooldownSweep())
	assert.Equal(t, CooldownBackendMemory, cfg.Auth.OTPCooldownBackend)
	assert.False(t, cfg.Auth.OTPDebugEcho)
	assert.Equal(t, 15*time.Minute, cfg.App.RateLimitWindow())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_OTP_COOLDOWN_BACKEND", "REDIS")
	t.Setenv("AUTH_OTP_COOLDOWN_SECONDS", "30")
	t.Setenv("AUTH_OTP_DEBUG_ECHO", "true")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CooldownBackendRedis, cfg.Auth.OTPCooldownBackend)
	assert.Equal(t, 30*time.Second, cfg.Auth.OTPCooldown())
	assert.True(t, cfg.Auth.OTPDebugEcho)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "development accepts dev secret",
			mutate: func(c *Config) {},
		},
		{
			name:    "production requires secret",
			mutate:  func(c *Config) { c.App.Env = "production" },
			wantErr: "AUTH_JWT_SECRET",
		},
		{
			name: "production forbids otp echo",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.Auth.JWTSecret = "s3cret"
				c.Auth.OTPDebugEcho = true
			},
			wantErr: "AUTH_OTP_DEBUG_ECHO",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Auth.OTPCooldownBackend = "memcached" },
			wantErr: "AUTH_OTP_COOLDOWN_BACKEND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:  AppConfig{Env: "development"},
				Auth: AuthConfig{JWTSecret: devJWTSecret, OTPCooldownBackend: CooldownBackendMemory},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
