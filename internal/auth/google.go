package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

const googleCertsTimeout = 10 * time.Second

// checks Google ID tokens against Google's public keys and our client id
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID must be set")
	}

	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{
		Timeout: googleCertsTimeout,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create google token validator: %w", err)
	}

	return &GoogleVerifier{clientID: clientID, validator: validator}, nil
}

// validates signature, expiry and audience and returns the asserted identity
func (v *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	payload, err := v.validator.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}

	return identityFromClaims(payload.Subject, payload.Claims), nil
}

func identityFromClaims(subject string, claims map[string]any) *Identity {
	identity := &Identity{Subject: subject}

	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}

	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}

	if verified, ok := claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}

	return identity
}
