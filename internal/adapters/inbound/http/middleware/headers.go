package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/architeacher/connectors/internal/config"
)

var (
	corsAllowedMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsExposedHeaders = strings.Join([]string{
		RequestIDHeader,
		RateLimitLimitHeader,
		RateLimitRemainingHeader,
		RateLimitResetHeader,
		RetryAfterHeader,
		"X-Cache",
	}, ", ")
)

// SecurityHeaders marks every response as a non-embeddable API payload.
func SecurityHeaders(apiVersion string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := w.Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			header.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			header.Set("Referrer-Policy", "no-referrer")
			header.Set("API-Version", apiVersion)

			next.ServeHTTP(w, r)
		})
	}
}

// CORS lets browser editors on the allowed origins call the API. Requests
// without an Origin header are untouched; preflights from allowed origins
// are answered with 204 without reaching the router.
func CORS(cfg config.CORS, idempotency config.Idempotency) func(http.Handler) http.Handler {
	allowAll := slices.Contains(cfg.AllowedOrigins, "*")
	allowedHeaders := strings.Join([]string{
		"Content-Type", RequestIDHeader, idempotency.HeaderName, "traceparent", "tracestate",
	}, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Origin")

			if !allowAll && !slices.Contains(cfg.AllowedOrigins, origin) {
				next.ServeHTTP(w, r)

				return
			}

			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
			header.Set("Access-Control-Allow-Headers", allowedHeaders)
			header.Set("Access-Control-Expose-Headers", corsExposedHeaders+", "+idempotency.ReplayedHeader)
			header.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
