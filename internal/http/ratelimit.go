package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Limiter reports whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window limiter backed by INCR/EXPIRE.
// Keys look like rl:<window_seconds>:<identifier>.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, maxRequests: maxRequests, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, ident string) (bool, error) {
	key := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if val == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return val <= int64(l.maxRequests), nil
}

// rateLimit fails open: a limiter error lets the request through.
func rateLimit(l Limiter, m *Metrics, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		allowed, err := l.Allow(ctx, c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("rate limiter unavailable")
			c.Header("X-RateLimit-Error", "limiter-error")
			c.Next()
			return
		}

		endpoint := c.FullPath()
		if !allowed {
			m.rateLimited(endpoint, true)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		m.rateLimited(endpoint, false)
		c.Next()
	}
}
