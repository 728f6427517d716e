package ratelimit

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/turningpoint/server/internal/errors"
	"codeberg.org/turningpoint/server/internal/logger"
)

const keyPrefix = "turningpoint:ratelimit"

// a fixed-window limit applied per client IP
type Rule struct {
	// distinguishes counters of different rules sharing one store
	Name    string
	Window  time.Duration
	Max     int64
	Message string
}

// Redis-backed store when client is set, in-process otherwise
func NewStore(client *redis.Client, rule Rule) (limiter.Store, error) {
	prefix := keyPrefix + ":" + rule.Name

	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return store, nil
}

// returns a Gin middleware enforcing rule against store
func Middleware(store limiter.Store, rule Rule) gin.HandlerFunc {
	instance := limiter.New(store, limiter.Rate{
		Period: rule.Window,
		Limit:  rule.Max,
	})

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.FromContext(c.Request.Context()).Warn("rate limit reached",
				"rule", rule.Name,
				"ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			errors.TooManyRequests(c, rule.Message)
		}),
		// fail open when the store is unreachable
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.FromContext(c.Request.Context()).Error("rate limiter store failed",
				"error", err,
				"rule", rule.Name,
			)
			c.Next()
		}),
	)
}

// builds store and middleware in one step
func New(client *redis.Client, rule Rule) (gin.HandlerFunc, error) {
	store, err := NewStore(client, rule)
	if err != nil {
		return nil, err
	}

	return Middleware(store, rule), nil
}
