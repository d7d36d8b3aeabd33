// Package decorator wraps use case handlers with logging, metrics, tracing
// and caching. Every chain runs logging -> metrics -> tracing -> handler.
package decorator

import (
	"context"
	"fmt"
	"strings"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	Command any
	Query   any
	Result  any

	CommandHandler[C Command, R Result] interface {
		Handle(context.Context, C) (R, error)
	}

	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}
)

func ApplyCommandDecorators[C Command, R Result](
	handler CommandHandler[C, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CommandHandler[C, R] {
	traced := commandTracingDecorator[C, R]{base: handler, tracerProvider: tracerProvider}
	measured := commandMetricsDecorator[C, R]{base: traced, client: metricsClient}

	return commandLoggingDecorator[C, R]{base: measured, logger: log}
}

func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	traced := queryTracingDecorator[Q, R]{base: handler, tracerProvider: tracerProvider}
	measured := queryMetricsDecorator[Q, R]{base: traced, client: metricsClient}

	return queryLoggingDecorator[Q, R]{base: measured, logger: log}
}

// generateActionName is the bare type name of a command or query,
// e.g. "ExecuteNodeCommand".
func generateActionName(action any) string {
	name := fmt.Sprintf("%T", action)
	if index := strings.LastIndex(name, "."); index >= 0 {
		name = name[index+1:]
	}

	return name
}
