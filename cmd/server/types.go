package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/config"
	"codeberg.org/turningpoint/server/turningpoint/accounts"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	db       *pgxpool.Pool // nil when running on the in-memory store
	redis    *redis.Client // nil when limiter counters stay in-process
	codec    *auth.Codec
	accounts *accounts.Service
	limiters Limiters
	router   *gin.Engine

	googleEnabled bool
}

// rate limit middlewares mounted by RegisterRoutes
type Limiters struct {
	General gin.HandlerFunc
	Auth    gin.HandlerFunc
}
