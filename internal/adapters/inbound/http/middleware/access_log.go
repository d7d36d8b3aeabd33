package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/pkg/logger"
)

var healthEndpoints = []string{"/v1/health", "/health"}

// AccessLogger writes one line per request. Health probes are skipped unless
// cfg.LogHealthChecks is set.
func AccessLogger(log logger.Logger, cfg config.AccessLog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.LogHealthChecks && isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			reqLogger := log.WithContext(r.Context()).With().Str("component", "http").Logger()

			event := reqLogger.Info()
			if wrapped.statusCode >= http.StatusInternalServerError {
				event = reqLogger.Error()
			} else if wrapped.statusCode >= http.StatusBadRequest {
				event = reqLogger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Int("status", wrapped.statusCode).
				Int("bytes", wrapped.bytesWritten).
				Int64("duration_ms", time.Since(start).Milliseconds())

			if cfg.IncludeQueryParams && r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}

			event.Msg("request handled")
		})
	}
}

func isHealthEndpoint(path string) bool {
	path = strings.TrimSuffix(path, "/")

	for _, endpoint := range healthEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}
