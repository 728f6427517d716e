package config

import "time"

// Config is built once at start-up and never mutated afterwards
type Config struct {
	Environment    string
	Port           string
	RequestTimeout time.Duration
	BaseURL        string

	DatabaseURL string
	RedisURL    string

	// proxies whose X-Forwarded-For is believed; nil trusts none
	TrustedProxies []string

	Token     TokenConfig
	Password  PasswordConfig
	Google    GoogleConfig
	Cookie    CookieConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type PasswordConfig struct {
	BcryptCost int
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// signs the short-lived gothic cookie used by the redirect flow
	SessionSecret string
}

type CookieConfig struct {
	Domain string
	Secure bool
}

type CORSConfig struct {
	Origin string
}

type RateLimitConfig struct {
	GeneralWindow time.Duration
	GeneralMax    int64
	AuthWindow    time.Duration
	AuthMax       int64
}

// command line flags for the server binary
type Flags struct {
	EnvFile string
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// true when the redirect-based Google flow has everything it needs
func (g GoogleConfig) RedirectFlowEnabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.SessionSecret != ""
}
