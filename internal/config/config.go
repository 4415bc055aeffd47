package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Cookies  CookieConfig
	Session  SessionConfig
	Store    StoreConfig
	OAuth    OAuthConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BackendConfig points at the upstream API host. The base URL stays server
// side and is never sent to the browser.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// CookieConfig controls the token cookie tier.
type CookieConfig struct {
	AccessName       string
	RefreshName      string
	AccessTTLMinutes int
	RefreshTTLDays   int
	Domain           string
	Secure           bool
}

// SessionConfig controls the gateway session cookie (JWT-encoded).
type SessionConfig struct {
	CookieName string
	JWTSecret  string
	TTLHours   int
}

// StoreConfig controls the server-side credential store.
type StoreConfig struct {
	EncryptionKey        string
	SessionScopedTTLMins int
}

// OAuthConfig holds provider verification settings.
type OAuthConfig struct {
	GoogleClientID string
	GoogleIssuer   string
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

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "club-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:        os.Getenv("BACKEND_BASE_URL"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 10),
		},
		Cookies: CookieConfig{
			AccessName:       getEnv("COOKIE_ACCESS_NAME", "access_token"),
			RefreshName:      getEnv("COOKIE_REFRESH_NAME", "refresh_token"),
			AccessTTLMinutes: getEnvAsInt("COOKIE_ACCESS_TTL_MINUTES", 15),
			RefreshTTLDays:   getEnvAsInt("COOKIE_REFRESH_TTL_DAYS", 7),
			Domain:           getEnv("COOKIE_DOMAIN", ""),
			Secure:           getEnvAsBool("COOKIE_SECURE", true),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "club_session"),
			JWTSecret:  getEnv("SESSION_JWT_SECRET", "dev-secret"),
			TTLHours:   getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Store: StoreConfig{
			EncryptionKey:        getEnv("STORE_ENCRYPTION_KEY", ""),
			SessionScopedTTLMins: getEnvAsInt("STORE_SESSION_TTL_MINUTES", 720),
		},
		OAuth: OAuthConfig{
			GoogleClientID: os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
			GoogleIssuer:   getEnv("OAUTH_GOOGLE_ISSUER", "https://accounts.google.com"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the bounded timeout applied to every upstream call.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// AccessTTL returns the access cookie lifetime.
func (c CookieConfig) AccessTTL() time.Duration {
	if c.AccessTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh cookie lifetime.
func (c CookieConfig) RefreshTTL() time.Duration {
	if c.RefreshTTLDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// TTL returns the session cookie lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// SessionScopedTTL returns the tier-B lifetime used when "remember me" is off.
func (s StoreConfig) SessionScopedTTL() time.Duration {
	if s.SessionScopedTTLMins <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.SessionScopedTTLMins) * time.Minute
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
