package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/internal/logger"
)

const (
	serviceName    = "turning-point"
	serviceVersion = "1.0.0"
	readyTimeout   = 2 * time.Second
)

// Handler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// ReadyHandler godoc
// @Summary Readiness check
// @Description Reports 503 while the user store is unreachable
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /ready [get]
func ReadyHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("readiness check failed", "error", err)

			c.JSON(http.StatusServiceUnavailable, ReadyResponse{
				Status: "unavailable",
				Store:  "down",
				Error:  "user store unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Store: "up"})
	}
}
