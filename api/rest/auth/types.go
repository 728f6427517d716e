package auth

import (
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/turningpoint/users"
)

const statusSuccess = "success"

// RegisterRequest for creating an account with email and password
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=100"`
	Email                string `json:"email" binding:"required,email,max=254"`
	Password             string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
}

// LoginRequest for email/password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries an ID token obtained by the Google client SDK
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// SuccessResponse wraps every successful auth response
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.Profile `json:"user"`
}

// settings of the refresh token cookie
type CookieSettings struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// what RegisterRoutes needs besides the account service
type Options struct {
	Cookie CookieSettings

	// /auth/google is only mounted when an ID token verifier is configured
	GoogleEnabled bool

	// /auth/oauth/google* is only mounted when goth providers are initialized
	RedirectFlowEnabled bool

	// applied to the credential endpoints (register, login, google)
	Limiter gin.HandlerFunc
}
