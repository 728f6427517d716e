package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/api/rest/auth"
	"codeberg.org/turningpoint/server/api/rest/health"
	"codeberg.org/turningpoint/server/internal/errors"
)

// sets up all API routes
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.accounts))

	v1 := router.Group("/api/v1")
	if server.limiters.General != nil {
		v1.Use(server.limiters.General)
	}

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.accounts, server.codec, auth.Options{
			Cookie: auth.CookieSettings{
				Domain: server.config.Cookie.Domain,
				Secure: server.config.Cookie.Secure,
				MaxAge: server.codec.RefreshTTL(),
			},
			GoogleEnabled:       server.googleEnabled,
			RedirectFlowEnabled: server.config.Google.RedirectFlowEnabled(),
			Limiter:             server.limiters.Auth,
		})
	}

	router.NoRoute(func(c *gin.Context) {
		errors.NotFound(c, "route")
	})
}
