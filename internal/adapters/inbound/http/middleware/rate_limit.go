package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/pkg/logger"
)

const (
	RateLimitLimitHeader     = "RateLimit-Limit"
	RateLimitRemainingHeader = "RateLimit-Remaining"
	RateLimitResetHeader     = "RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"
)

// RateLimit applies a GCRA quota per client address. Store failures either
// let the request through or answer 503, depending on cfg.GracefulDegraded.
func RateLimit(cfg config.ThrottledRateLimiting, store throttled.GCRAStoreCtx, log logger.Logger) (func(http.Handler) http.Handler, error) {
	quota := throttled.RateQuota{
		MaxRate:  throttled.PerSec(int(cfg.RequestsPerSecond)),
		MaxBurst: int(cfg.BurstSize),
	}

	limiter, err := throttled.NewGCRARateLimiterCtx(store, quota)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchesPrefix(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			limited, result, err := limiter.RateLimitCtx(r.Context(), "ip:"+clientIP(r.RemoteAddr), 1)
			if err != nil {
				reqLogger := log.WithContext(r.Context())
				reqLogger.Warn().Err(err).Msg("rate limiter store error")

				if cfg.GracefulDegraded {
					next.ServeHTTP(w, r)

					return
				}

				WriteError(w, http.StatusServiceUnavailable, "RATE_LIMITER_UNAVAILABLE", "rate limiting service temporarily unavailable")

				return
			}

			w.Header().Set(RateLimitLimitHeader, strconv.Itoa(result.Limit))
			w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
			w.Header().Set(RateLimitResetHeader, strconv.FormatInt(int64(result.ResetAfter.Round(time.Second)/time.Second), 10))

			if limited {
				w.Header().Set(RetryAfterHeader, strconv.Itoa(int(result.RetryAfter.Round(time.Second)/time.Second)))
				WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests, please try again later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// matchesPrefix reports whether path starts with one of the prefixes.
func matchesPrefix(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if skipPath != "" && strings.HasPrefix(path, skipPath) {
			return true
		}
	}

	return false
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
