package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей в кеше
	KeyPrefix string
}

// SubmitRateLimitConfig собирает конфигурацию для отправки ответов на викторину
func SubmitRateLimitConfig(maxRequests, windowSec int) RateLimitConfig {
	if maxRequests <= 0 {
		maxRequests = 30
	}
	if windowSec <= 0 {
		windowSec = 60
	}
	return RateLimitConfig{
		MaxRequests: maxRequests,
		Window:      time.Duration(windowSec) * time.Second,
		KeyPrefix:   "rl:quiz:submit",
	}
}

// RateLimiter создаёт middleware для rate limiting поверх счетчиков кеша (Redis)
type RateLimiter struct {
	counter repository.CacheRepository
	log     logrus.FieldLogger
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(counter repository.CacheRepository, log logrus.FieldLogger) *RateLimiter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RateLimiter{counter: counter, log: log.WithField("component", "rate_limiter")}
}

// Limit возвращает Gin middleware с заданной конфигурацией
// Ключ формируется из IP + endpoint path
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		path := c.FullPath() // Gin route pattern, e.g. "/api/quiz/:topic_id/submit"
		if path == "" {
			path = c.Request.URL.Path
		}

		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, clientIP, path)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Инкрементируем счётчик
		count, err := rl.counter.Increment(ctx, key)
		if err != nil {
			// При ошибке Redis пропускаем запрос (fail-open), но логируем
			rl.log.WithError(err).WithField("key", key).Warn("Counter error, allowing request (fail-open)")
			c.Next()
			return
		}

		// Если это первый запрос в окне - устанавливаем TTL
		if count == 1 {
			if err := rl.counter.Expire(ctx, key, cfg.Window); err != nil {
				rl.log.WithError(err).WithField("key", key).Warn("Failed to set TTL")
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		retryAfter := int(cfg.Window.Seconds())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		// Проверяем лимит
		if int(count) > cfg.MaxRequests {
			// Ключ без TTL не сбросится никогда: восстанавливаем окно
			if ttl, err := rl.counter.TTL(ctx, key); err != nil {
				rl.log.WithError(err).WithField("key", key).Warn("Failed to read TTL")
			} else if ttl < 0 {
				if err := rl.counter.Expire(ctx, key, cfg.Window); err != nil {
					rl.log.WithError(err).WithField("key", key).Warn("Failed to restore TTL")
				}
			} else if secs := int(math.Ceil(ttl.Seconds())); secs > 0 {
				retryAfter = secs
			}

			rl.log.WithFields(logrus.Fields{
				"ip":    clientIP,
				"path":  path,
				"count": count,
				"limit": cfg.MaxRequests,
			}).Info("Rate limit exceeded")

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
