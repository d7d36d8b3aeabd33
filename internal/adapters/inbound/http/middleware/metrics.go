package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/connectors/pkg/metrics"
)

const (
	httpRequestTotal    = "http.requests"
	httpRequestDuration = "http.request.duration"
)

// Metrics counts requests per route pattern, never per raw path, so node
// names and ids do not multiply the series.
func Metrics(client metrics.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil && routeCtx.RoutePattern() != "" {
				route = routeCtx.RoutePattern()
			}

			attrs := []attribute.KeyValue{
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.String("status", strconv.Itoa(wrapped.statusCode)),
			}

			client.Inc(r.Context(), httpRequestTotal, 1, attrs...)
			client.Observe(r.Context(), httpRequestDuration, time.Since(start), attrs...)
		})
	}
}
