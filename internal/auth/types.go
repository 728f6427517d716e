package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"codeberg.org/turningpoint/server/turningpoint/users"
)

// represents JWT claims: the sanitized user plus iss/iat/exp
type Claims struct {
	users.Profile
	jwt.RegisteredClaims
}

// an access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// outcome of Codec.Verify; Claims is only set when Valid
type Verification struct {
	Valid   bool
	Expired bool
	Claims  *Claims
}

// a principal asserted by an external identity provider
type Identity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}
