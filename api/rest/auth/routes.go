package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/turningpoint/accounts"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, svc *accounts.Service, codec *auth.Codec, opts Options) {
	limited := []gin.HandlerFunc{}
	if opts.Limiter != nil {
		limited = append(limited, opts.Limiter)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", append(limited, RegisterHandler(svc))...)
		authGroup.POST("/login", append(limited, LoginHandler(svc, opts.Cookie))...)
		authGroup.POST("/refresh", RefreshHandler(svc, opts.Cookie))
		authGroup.POST("/logout", LogoutHandler(opts.Cookie, opts.RedirectFlowEnabled))
		authGroup.GET("/me", auth.AuthMiddleware(codec), GetCurrentUserHandler(svc))

		if opts.GoogleEnabled {
			authGroup.POST("/google", append(limited, GoogleLoginHandler(svc, opts.Cookie))...)
		}

		if opts.RedirectFlowEnabled {
			authGroup.GET("/oauth/google", BeginOAuthHandler())
			authGroup.GET("/oauth/google/callback", OAuthCallbackHandler(svc, opts.Cookie))
		}
	}
}
