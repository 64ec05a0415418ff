package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

var limiterStorage fiber.Storage

// sharedLimiterStorage keeps rate limit counters in Redis so several
// instances share them. Nil means the limiter's in-memory store.
func sharedLimiterStorage() fiber.Storage {
	if !env.GetEnvBool("RATE_LIMIT_REDIS", false) {
		return nil
	}
	if limiterStorage == nil {
		limiterStorage = redis.New(redis.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnvInt("CACHE_PORT", 6379),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: env.GetEnvInt("RATE_LIMIT_REDIS_DB", env.GetEnvInt("CACHE_DB", 0)),
		})
	}
	return limiterStorage
}

func newLimiter(limit int, expiration time.Duration, reached fiber.Handler) fiber.Handler {
	cfg := limiter.Config{
		Max:        limit,
		Expiration: expiration,
		Storage:    sharedLimiterStorage(),
	}
	if reached != nil {
		cfg.LimitReached = reached
	}
	return limiter.New(cfg)
}
