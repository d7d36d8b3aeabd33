package metrics

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type (
	// Client records counters and durations. Keys use dotted names
	// ("commands.executenode.success"); backends normalise them.
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Observe(ctx context.Context, key string, duration time.Duration, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}
)
