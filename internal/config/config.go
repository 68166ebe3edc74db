package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Hotmart endpoints used when no override is configured.
const (
	DefaultCommerceAuthURL    = "https://api-sec-vlc.hotmart.com/security/oauth/token"
	DefaultCommerceAPIBaseURL = "https://developers.hotmart.com/payments/api/v1"
	DefaultFipeBaseURL        = "https://parallelum.com.br/fipe/api/v1"
	DefaultGeminiModel        = "gemini-2.5-pro"
	DefaultJWTSecret          = "dev-secret"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Commerce  CommerceConfig
	Gemini    GeminiConfig
	Fipe      FipeConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines access pass parameters.
type AuthConfig struct {
	JWTSecret              string
	AccessPassTTLMinutes   int
	BypassEmails           []string
	RequireAccessPassForAI bool
}

// CommerceConfig holds the commerce platform credentials and product ids.
// Credentials are validated per request, not at load time.
type CommerceConfig struct {
	ClientID           string
	ClientSecret       string
	PrimaryProductID   string
	SecondaryProductID string
	AuthURL            string
	APIBaseURL         string
	RequestTimeout     time.Duration
	HistoryLookback    time.Duration
	InvalidStatusVeto  bool
}

// GeminiConfig configures the generative model proxy.
type GeminiConfig struct {
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// FipeConfig configures the reference price catalog client.
type FipeConfig struct {
	BaseURL        string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// RateLimitConfig limits entitlement checks per client IP.
type RateLimitConfig struct {
	ValidatePerMinute int
	ValidateBurst     int
}

// CORSConfig lists allowed origins for browser calls.
type CORSConfig struct {
	AllowOrigins string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "vehicle-pricing"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", DefaultJWTSecret),
			AccessPassTTLMinutes:   getEnvAsInt("AUTH_ACCESS_PASS_TTL_MINUTES", 720),
			BypassEmails:           getEnvAsList("ACCESS_BYPASS_EMAILS"),
			RequireAccessPassForAI: getEnvAsBool("AUTH_REQUIRE_ACCESS_PASS", true),
		},
		Commerce: CommerceConfig{
			ClientID:           os.Getenv("COMMERCE_CLIENT_ID"),
			ClientSecret:       os.Getenv("COMMERCE_CLIENT_SECRET"),
			PrimaryProductID:   os.Getenv("COMMERCE_PRODUCT_ID"),
			SecondaryProductID: os.Getenv("COMMERCE_SECONDARY_PRODUCT_ID"),
			AuthURL:            getEnv("COMMERCE_AUTH_URL", DefaultCommerceAuthURL),
			APIBaseURL:         getEnv("COMMERCE_API_BASE_URL", DefaultCommerceAPIBaseURL),
			RequestTimeout:     getEnvAsDuration("COMMERCE_REQUEST_TIMEOUT", 5*time.Second),
			HistoryLookback:    getEnvAsDuration("COMMERCE_HISTORY_LOOKBACK", 5*365*24*time.Hour),
			InvalidStatusVeto:  getEnvAsBool("COMMERCE_INVALID_STATUS_VETO", true),
		},
		Gemini: GeminiConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			Model:          getEnv("GEMINI_MODEL", DefaultGeminiModel),
			RequestTimeout: getEnvAsDuration("GEMINI_REQUEST_TIMEOUT", 60*time.Second),
		},
		Fipe: FipeConfig{
			BaseURL:        getEnv("FIPE_BASE_URL", DefaultFipeBaseURL),
			CacheTTL:       getEnvAsDuration("FIPE_CACHE_TTL", 24*time.Hour),
			RequestTimeout: getEnvAsDuration("FIPE_REQUEST_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			ValidatePerMinute: getEnvAsInt("RATE_LIMIT_VALIDATE_PER_MINUTE", 20),
			ValidateBurst:     getEnvAsInt("RATE_LIMIT_VALIDATE_BURST", 5),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
	}

	if cfg.App.IsProduction() && cfg.Auth.UsesDefaultSecret() {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV=production")
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), "production")
}

// UsesDefaultSecret reports whether access passes are signed with the
// built-in development secret.
func (a AuthConfig) UsesDefaultSecret() bool {
	return a.JWTSecret == DefaultJWTSecret
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

// AccessPassTTL returns the lifetime of issued access passes.
func (a AuthConfig) AccessPassTTL() time.Duration {
	if a.AccessPassTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.AccessPassTTLMinutes) * time.Minute
}

// Missing lists the names of required commerce settings that are empty.
func (c CommerceConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.ClientID) == "" {
		missing = append(missing, "COMMERCE_CLIENT_ID")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "COMMERCE_CLIENT_SECRET")
	}
	if strings.TrimSpace(c.PrimaryProductID) == "" {
		missing = append(missing, "COMMERCE_PRODUCT_ID")
	}
	return missing
}

// Validate reports an error naming every missing commerce setting.
func (c CommerceConfig) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("commerce settings not configured: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ProductIDs returns the configured products in check order.
func (c CommerceConfig) ProductIDs() []string {
	ids := []string{strings.TrimSpace(c.PrimaryProductID)}
	if secondary := strings.TrimSpace(c.SecondaryProductID); secondary != "" {
		ids = append(ids, secondary)
	}
	return ids
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
