package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"codeberg.org/turningpoint/server/internal/config"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

var errMissingUserID = errors.New("token has no user id")

// signs and verifies HS256 tokens for one secret and issuer
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
}

func NewCodec(cfg config.TokenConfig) *Codec {
	return &Codec{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// lifetime of refresh tokens, also used as the refresh cookie max-age
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// creates a JWT carrying the profile that expires after ttl
func (c *Codec) Sign(profile users.Profile, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Profile: profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// signs an access and a refresh token over the same profile
func (c *Codec) IssuePair(profile users.Profile) (TokenPair, error) {
	access, err := c.Sign(profile, c.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := c.Sign(profile, c.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// checks signature, algorithm, issuer, expiry and claim shape.
// Expired is only reported when expiry is the sole reason for rejection.
func (c *Codec) Verify(tokenString string) Verification {
	claims := &Claims{}

	token, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})

	if err != nil {
		expired := errors.Is(err, jwt.ErrTokenExpired) &&
			!errors.Is(err, jwt.ErrTokenInvalidIssuer) &&
			!errors.Is(err, errMissingUserID)

		return Verification{Expired: expired}
	}

	if !token.Valid {
		return Verification{}
	}

	return Verification{Valid: true, Claims: claims}
}

// called by the parser after the registered claims pass
func (c Claims) Validate() error {
	if c.Profile.ID <= 0 {
		return errMissingUserID
	}

	return nil
}
