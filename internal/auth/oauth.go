package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"codeberg.org/turningpoint/server/internal/config"
)

const (
	ProviderGoogle = "google"

	// path of the redirect-flow callback, relative to BASE_URL
	GoogleCallbackPath = "/api/v1/auth/oauth/google/callback"
)

// sets up the redirect-based Google flow using goth
func InitializeProviders(cfg *config.Config) {
	store := sessions.NewCookieStore([]byte(cfg.Google.SessionSecret))

	// configure cookie for OAuth redirects
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // 5 minutes, enough for OAuth flow
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	goth.UseProviders(google.New(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		strings.TrimSuffix(cfg.BaseURL, "/")+GoogleCallbackPath,
		"email", "profile",
	))
}

// maps a completed goth login onto an Identity
func IdentityFromGothUser(user goth.User) *Identity {
	identity := &Identity{
		Subject: user.UserID,
		Email:   user.Email,
		Name:    user.Name,
	}

	// userinfo v2 says "verified_email", the OIDC endpoint says "email_verified"
	for _, key := range []string{"verified_email", "email_verified"} {
		if verified, ok := user.RawData[key].(bool); ok {
			identity.EmailVerified = verified
			break
		}
	}

	return identity
}
