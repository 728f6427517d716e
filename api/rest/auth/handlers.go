package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/errors"
	"codeberg.org/turningpoint/server/internal/logger"
	"codeberg.org/turningpoint/server/turningpoint/accounts"
)

// RegisterHandler godoc
// @Summary Register
// @Description Create an account with email and password. Returns a token pair and the new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/auth/register [post]
func RegisterHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := svc.CreateUserWithTokens(c.Request.Context(), accounts.RegisterInput{
			Name:     strings.TrimSpace(req.Name),
			Email:    req.Email,
			Password: req.Password,
		})

		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusCreated, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgRegisterSuccess,
			Data:    session,
		})
	}
}

// LoginHandler godoc
// @Summary Login
// @Description Email/password login. Returns a token pair and sets the refresh token cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/auth/login [post]
func LoginHandler(svc *accounts.Service, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := svc.ValidateUserCredentials(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		setRefreshCookie(c, cookie, session.RefreshToken)

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgLoginSuccess,
			Data:    session,
		})
	}
}

// RefreshHandler godoc
// @Summary Refresh tokens
// @Description Trade a refresh token (x-refresh-token header or refresh_token cookie) for a new pair
// @Tags auth
// @Produce json
// @Param x-refresh-token header string false "Refresh token"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func RefreshHandler(svc *accounts.Service, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		token := refreshTokenFrom(c)
		if token == "" {
			errors.Respond(c, accounts.ErrRefreshTokenMissing)
			return
		}

		session, err := svc.ReIssueTokens(c.Request.Context(), token)
		if err != nil {
			clearRefreshCookie(c, cookie)
			errors.Respond(c, err)
			return
		}

		setRefreshCookie(c, cookie, session.RefreshToken)

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgRefreshSuccess,
			Data:    session.TokenPair,
		})
	}
}

// GoogleLoginHandler godoc
// @Summary Google login
// @Description Sign in with a Google ID token, linking or creating the local account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/google [post]
func GoogleLoginHandler(svc *accounts.Service, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		session, err := svc.LoginWithGoogle(c.Request.Context(), req.IDToken)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		setRefreshCookie(c, cookie, session.RefreshToken)

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgGoogleLoginSuccess,
			Data:    session,
		})
	}
}

// BeginOAuthHandler godoc
// @Summary Start Google OAuth
// @Description Begin the redirect-based Google OAuth flow
// @Tags auth
// @Success 302 {string} string "Redirect to Google"
// @Router /api/v1/auth/oauth/google [get]
func BeginOAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setProvider(c)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// OAuthCallbackHandler godoc
// @Summary Google OAuth callback
// @Description Completes the redirect flow. Returns a token pair and sets the refresh token cookie
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/oauth/google/callback [get]
func OAuthCallbackHandler(svc *accounts.Service, cookie CookieSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		setProvider(c)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.Respond(c, accounts.ErrGoogleAuthFailed.WithCause(err))
			return
		}

		session, err := svc.LoginWithIdentity(c.Request.Context(), auth.IdentityFromGothUser(gothUser))
		if err != nil {
			errors.Respond(c, err)
			return
		}

		setRefreshCookie(c, cookie, session.RefreshToken)

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgGoogleLoginSuccess,
			Data:    session,
		})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		profile, err := svc.GetProfile(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgProfileFetched,
			Data:    UserResponse{User: profile},
		})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the refresh token cookie. Issued tokens stay valid until they expire
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/auth/logout [post]
func LogoutHandler(cookie CookieSettings, redirectFlow bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearRefreshCookie(c, cookie)

		if redirectFlow {
			if err := gothic.Logout(c.Writer, c.Request); err != nil {
				logger.FromContext(c.Request.Context()).Debug("failed to clear oauth session", "error", err)
			}
		}

		c.JSON(http.StatusOK, SuccessResponse{
			Status:  statusSuccess,
			Message: accounts.MsgLogoutSuccess,
		})
	}
}

// set provider in query for gothic
func setProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", auth.ProviderGoogle)
	c.Request.URL.RawQuery = q.Encode()
}
