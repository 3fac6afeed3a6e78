package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-api/internal/container"
	"github.com/oksasatya/todo-api/internal/interface/middleware"
)

// publicLimiter throttles unauthenticated endpoints per client IP and route.
func publicLimiter() gin.HandlerFunc {
	cfg := container.GetConfig()
	return middleware.RateLimit(container.GetRedis(), cfg.RateLimitPublic, time.Minute, middleware.KeyByIPAndPath(), devBypass())
}

// userLimiter throttles authenticated endpoints per user; mount it after Auth.
func userLimiter() gin.HandlerFunc {
	cfg := container.GetConfig()
	return middleware.RateLimit(container.GetRedis(), cfg.RateLimitProtected, time.Minute, middleware.KeyByUserID(), devBypass())
}

func devBypass() middleware.AllowFunc {
	if container.GetConfig().Env == "development" {
		return middleware.AllowPrivateIP()
	}
	return nil
}
