package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/turningpoint/server/internal/config"
	apperrors "codeberg.org/turningpoint/server/internal/errors"
	"codeberg.org/turningpoint/server/internal/logger"
)

// @title Turning Point API
// @version 1.0
// @description Authentication service for Turning Point
// @description
// @description Features:
// @description - Email/password registration and login
// @description - Access/refresh token pairs with cookie-based refresh
// @description - Google sign-in with account linking

// @contact.name API Support
// @contact.url https://codeberg.org/turningpoint/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token. Format: Bearer {token}

func main() {
	flags, err := config.ParseServerFlags(os.Args[1:])
	if err != nil {
		logger.Fatal("invalid flags", "error", err)
	}

	cfg, err := config.LoadEnvironmentVariables(flags.EnvFile)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Configure(cfg.Environment)
	apperrors.Configure(cfg.Environment)
	logger.Info("starting turning point server", "environment", cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := NewServer(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "server forced to shutdown")
	}

	srv.Close()

	logger.Info("server stopped")
}
