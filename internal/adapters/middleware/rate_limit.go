package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
)

type ThrottledRateLimitingMiddleware struct {
	limiter   *throttled.GCRARateLimiterCtx
	skipPaths []string
	logger    infrastructure.Logger
}

func NewThrottledRateLimitingMiddleware(
	cfg config.ThrottledRateLimitingConfig,
	logger infrastructure.Logger,
) *ThrottledRateLimitingMiddleware {
	store, err := memstore.New(cfg.MaxKeys)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create rate limit store, rate limiting disabled")

		return &ThrottledRateLimitingMiddleware{logger: logger}
	}

	quota := throttled.RateQuota{
		MaxRate:  throttled.PerSec(cfg.RequestsPerSecond),
		MaxBurst: cfg.BurstSize,
	}

	limiter, err := throttled.NewGCRARateLimiter(store, quota)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create rate limiter, rate limiting disabled")

		return &ThrottledRateLimitingMiddleware{logger: logger}
	}

	return &ThrottledRateLimitingMiddleware{
		limiter:   limiter,
		skipPaths: cfg.SkipPaths,
		logger:    logger,
	}
}

func (m *ThrottledRateLimitingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil || m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)

			return
		}

		limited, result, err := m.limiter.RateLimit(clientKey(r), 1)
		if err != nil {
			m.logger.Error().Err(err).Msg("rate limiter failure, letting request through")
			next.ServeHTTP(w, r)

			return
		}

		if limited {
			w.Header().Set("Retry-After", result.RetryAfter.Round(time.Second).String())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "rate_limit_exceeded",
				"message": "too many requests",
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *ThrottledRateLimitingMiddleware) skipped(path string) bool {
	for _, skip := range m.skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}

	return false
}

// clientKey buckets requests by remote address, ignoring the ephemeral port.
func clientKey(r *http.Request) string {
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		addr = addr[:idx]
	}

	return addr
}
