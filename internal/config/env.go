package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "3000"
	defaultIssuer         = "turning-point"
	defaultAccessTTL      = "15m"
	defaultRefreshTTL     = "7d"
	defaultBcryptCost     = 12
	defaultCORSOrigin     = "http://localhost:5173"
	defaultCookieDomain   = "localhost"
	defaultRequestTimeout = "30s"
	defaultRateWindow     = "15m"
	defaultGeneralMax     = 100
	defaultAuthMax        = 5
)

// loads configuration from envFile (or ./.env if present) and the process environment
func LoadEnvironmentVariables(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return Load(os.Getenv)
}

// builds a Config from getenv; split out so tests can feed fixtures
func Load(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Environment: env("ENVIRONMENT", "development"),
		Port:        env("PORT", defaultPort),
		BaseURL:     env("BASE_URL", "http://localhost:"+env("PORT", defaultPort)),
		DatabaseURL: env("DATABASE_URL", ""),
		RedisURL:    env("REDIS_URL", ""),

		TrustedProxies: splitList(env("TRUSTED_PROXIES", "")),
		Token: TokenConfig{
			Secret: env("JWT_SECRET", ""),
			Issuer: env("TOKEN_ISSUER", defaultIssuer),
		},
		Google: GoogleConfig{
			ClientID:      env("GOOGLE_CLIENT_ID", ""),
			ClientSecret:  env("GOOGLE_CLIENT_SECRET", ""),
			SessionSecret: env("SESSION_SECRET", ""),
		},
		Cookie: CookieConfig{
			Domain: env("COOKIE_DOMAIN", defaultCookieDomain),
		},
		CORS: CORSConfig{
			Origin: env("CORS_ORIGIN", defaultCORSOrigin),
		},
	}

	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.DatabaseURL == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required in production")
	}

	var err error

	if cfg.Token.AccessTTL, err = positiveTTL("JWT_ACCESS_TOKEN_TTL", env("JWT_ACCESS_TOKEN_TTL", defaultAccessTTL)); err != nil {
		return nil, err
	}

	if cfg.Token.RefreshTTL, err = positiveTTL("JWT_REFRESH_TOKEN_TTL", env("JWT_REFRESH_TOKEN_TTL", defaultRefreshTTL)); err != nil {
		return nil, err
	}

	if cfg.RequestTimeout, err = positiveTTL("REQUEST_TIMEOUT", env("REQUEST_TIMEOUT", defaultRequestTimeout)); err != nil {
		return nil, err
	}

	if cfg.RateLimit.GeneralWindow, err = positiveTTL("GENERAL_RATE_LIMIT_WINDOW", env("GENERAL_RATE_LIMIT_WINDOW", defaultRateWindow)); err != nil {
		return nil, err
	}

	if cfg.RateLimit.AuthWindow, err = positiveTTL("AUTH_RATE_LIMIT_WINDOW", env("AUTH_RATE_LIMIT_WINDOW", defaultRateWindow)); err != nil {
		return nil, err
	}

	if cfg.RateLimit.GeneralMax, err = positiveInt("GENERAL_RATE_LIMIT_MAX", env("GENERAL_RATE_LIMIT_MAX", strconv.Itoa(defaultGeneralMax))); err != nil {
		return nil, err
	}

	if cfg.RateLimit.AuthMax, err = positiveInt("AUTH_RATE_LIMIT_MAX", env("AUTH_RATE_LIMIT_MAX", strconv.Itoa(defaultAuthMax))); err != nil {
		return nil, err
	}

	cost, err := positiveInt("BCRYPT_COST", env("BCRYPT_COST", strconv.Itoa(defaultBcryptCost)))
	if err != nil {
		return nil, err
	}

	if cost < 4 || cost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31 (got: %d)", cost)
	}

	cfg.Password.BcryptCost = int(cost)

	if cfg.Cookie.Secure, err = strconv.ParseBool(env("COOKIE_SECURE", "true")); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE must be a boolean: %w", err)
	}

	return cfg, nil
}

func positiveTTL(key, value string) (time.Duration, error) {
	d, err := ParseTTL(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (got: %s)", key, value)
	}

	return d, nil
}

func positiveInt(key, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive (got: %d)", key, n)
	}

	return n, nil
}

// comma separated values, blanks dropped; nil when nothing is left
func splitList(value string) []string {
	var out []string

	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
