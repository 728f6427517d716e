package accounts

import (
	"net/http"

	"codeberg.org/turningpoint/server/internal/errors"
)

// success messages
const (
	MsgLoginSuccess       = "Login successful"
	MsgRegisterSuccess    = "Account created successfully"
	MsgRefreshSuccess     = "Access token refreshed successfully"
	MsgGoogleLoginSuccess = "Google login successful"
	MsgLogoutSuccess      = "Logout successful"
	MsgProfileFetched     = "User profile fetched successfully"
)

// error codes
const (
	CodeEmailNotFound       = "email_not_found"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeEmailAlreadyExists  = "email_already_exists"
	CodePasswordTooLong     = "password_too_long"
	CodeRefreshTokenMissing = "refresh_token_missing"
	CodeRefreshTokenInvalid = "refresh_token_invalid"
	CodeAuthFailed          = "authentication_failed"
	CodeGoogleAuthFailed    = "google_auth_failed"
	CodeGoogleAccountLinked = "google_account_conflict"
	CodeGoogleUnverified    = "google_email_unverified"
	CodeUserNotFound        = "user_not_found"
)

var (
	ErrEmailNotFound = errors.New(http.StatusNotFound, CodeEmailNotFound,
		"No account found with this email address")

	ErrInvalidCredentials = errors.New(http.StatusBadRequest, CodeInvalidCredentials,
		"Invalid email or password")

	ErrEmailAlreadyExists = errors.New(http.StatusConflict, CodeEmailAlreadyExists,
		"An account with this email address already exists")

	ErrPasswordTooLong = errors.New(http.StatusBadRequest, CodePasswordTooLong,
		"Password must not exceed 72 bytes")

	ErrRefreshTokenMissing = errors.New(http.StatusBadRequest, CodeRefreshTokenMissing,
		"Refresh token is missing")

	ErrRefreshTokenInvalid = errors.New(http.StatusUnauthorized, CodeRefreshTokenInvalid,
		"Invalid refresh token")

	ErrGoogleAuthFailed = errors.New(http.StatusUnauthorized, CodeGoogleAuthFailed,
		"Google authentication failed")

	ErrGoogleEmailMissing = errors.New(http.StatusBadRequest, CodeGoogleAuthFailed,
		"Google account has no email address")

	ErrGoogleEmailUnverified = errors.New(http.StatusUnauthorized, CodeGoogleUnverified,
		"Google has not verified this email address")

	ErrGoogleAccountConflict = errors.New(http.StatusConflict, CodeGoogleAccountLinked,
		"This account is already linked to a different Google identity")

	ErrUserNotFound = errors.New(http.StatusNotFound, CodeUserNotFound,
		"User not found")

	// unexpected faults; the cause is logged and hidden in production
	ErrAuthenticationFailed = errors.Fault(http.StatusInternalServerError, CodeAuthFailed,
		"Authentication failed")
)
