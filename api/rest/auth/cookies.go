package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	RefreshCookieName  = "refresh_token"
	RefreshTokenHeader = "x-refresh-token"
)

// stores the refresh token in an HttpOnly, SameSite=Strict cookie
func setRefreshCookie(c *gin.Context, settings CookieSettings, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   int(settings.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(c *gin.Context, settings CookieSettings) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		Domain:   settings.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// header first, cookie as fallback
func refreshTokenFrom(c *gin.Context) string {
	if token := c.GetHeader(RefreshTokenHeader); token != "" {
		return token
	}

	if token, err := c.Cookie(RefreshCookieName); err == nil {
		return token
	}

	return ""
}
