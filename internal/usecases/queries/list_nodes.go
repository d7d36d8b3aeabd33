package queries

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	ListNodesQuery struct{}

	ListNodesQueryHandler = decorator.QueryHandler[ListNodesQuery, []*schema.NodeSchema]

	listNodesQueryHandler struct {
		catalog ports.NodeCatalog
	}
)

func NewListNodesQueryHandler(
	catalog ports.NodeCatalog,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListNodesQueryHandler {
	return decorator.ApplyQueryDecorators[ListNodesQuery, []*schema.NodeSchema](
		listNodesQueryHandler{catalog: catalog},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listNodesQueryHandler) Execute(_ context.Context, _ ListNodesQuery) ([]*schema.NodeSchema, error) {
	names := h.catalog.Names()
	schemas := make([]*schema.NodeSchema, 0, len(names))

	for _, name := range names {
		node, err := h.catalog.Get(name)
		if err != nil {
			return nil, err
		}

		schemas = append(schemas, node.Schema())
	}

	return schemas, nil
}
