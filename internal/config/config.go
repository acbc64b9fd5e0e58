package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret"

// Cooldown limiter backends.
const (
	CooldownBackendMemory = "memory"
	CooldownBackendRedis  = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	ClientURL             string
	RateLimitMax          int
	RateLimitWindowMin    int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int

	OTPTTLMinutes           int
	OTPCooldownSeconds      int
	OTPCooldownRetentionMin int
	OTPCooldownSweepSeconds int
	OTPCooldownBackend      string
	OTPDebugEcho            bool
}

// NotificationConfig holds stub delivery settings.
type NotificationConfig struct {
	SMSSenderID string
	EmailFrom   string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			ClientURL:             getEnv("CLIENT_URL", "http://localhost:3000"),
			RateLimitMax:          getEnvAsInt("HTTP_RATE_LIMIT_MAX", 100),
			RateLimitWindowMin:    getEnvAsInt("HTTP_RATE_LIMIT_WINDOW_MINUTES", 15),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 10<<20),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30*24*60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 10),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			OTPTTLMinutes:           getEnvAsInt("AUTH_OTP_TTL_MINUTES", 10),
			OTPCooldownSeconds:      getEnvAsInt("AUTH_OTP_COOLDOWN_SECONDS", 60),
			OTPCooldownRetentionMin: getEnvAsInt("AUTH_OTP_COOLDOWN_RETENTION_MINUTES", 5),
			OTPCooldownSweepSeconds: getEnvAsInt("AUTH_OTP_COOLDOWN_SWEEP_SECONDS", 60),
			OTPCooldownBackend:      strings.ToLower(getEnv("AUTH_OTP_COOLDOWN_BACKEND", CooldownBackendMemory)),
			OTPDebugEcho:            getEnvAsBool("AUTH_OTP_DEBUG_ECHO", false),
		},
		Notification: NotificationConfig{
			SMSSenderID: getEnv("NOTIFY_SMS_SENDER_ID", "STOREF"),
			EmailFrom:   getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that are unsafe outside development.
func (c *Config) Validate() error {
	switch c.Auth.OTPCooldownBackend {
	case CooldownBackendMemory, CooldownBackendRedis:
	default:
		return fmt.Errorf("invalid AUTH_OTP_COOLDOWN_BACKEND %q", c.Auth.OTPCooldownBackend)
	}
	if !c.App.IsProduction() {
		return nil
	}
	if c.Auth.JWTSecret == devJWTSecret {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.Auth.OTPDebugEcho {
		return errors.New("AUTH_OTP_DEBUG_ECHO cannot be enabled in production")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with a production posture.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RateLimitWindow returns the global limiter window.
func (a AppConfig) RateLimitWindow() time.Duration {
	return time.Duration(a.RateLimitWindowMin) * time.Minute
}

// AccessTokenTTL returns the bearer token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// PasswordResetTTL returns the reset token lifetime.
func (a AuthConfig) PasswordResetTTL() time.Duration {
	return time.Duration(a.PasswordResetTTLMinutes) * time.Minute
}

// OTPTTL returns how long an issued code stays valid.
func (a AuthConfig) OTPTTL() time.Duration {
	return time.Duration(a.OTPTTLMinutes) * time.Minute
}

// OTPCooldown returns the minimum interval between two issuances for one phone.
func (a AuthConfig) OTPCooldown() time.Duration {
	return time.Duration(a.OTPCooldownSeconds) * time.Second
}

// OTPCooldownRetention returns how long idle cooldown entries are kept in memory.
func (a AuthConfig) OTPCooldownRetention() time.Duration {
	return time.Duration(a.OTPCooldownRetentionMin) * time.Minute
}

// OTPCooldownSweep returns the in-memory cooldown sweep interval.
func (a AuthConfig) OTPCooldownSweep() time.Duration {
	return time.Duration(a.OTPCooldownSweepSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
