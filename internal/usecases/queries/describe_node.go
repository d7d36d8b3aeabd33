package queries

import (
	"context"
	"fmt"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/schema"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	// DescribeNodeQuery asks for the form a user sees for one selection.
	// Values holds what was entered so far and drives show/hide conditions.
	DescribeNodeQuery struct {
		Node      string
		Resource  string
		Operation model.Operation
		Values    model.Params
	}

	DescribeNodeQueryHandler = decorator.QueryHandler[DescribeNodeQuery, []schema.FieldSpec]

	describeNodeQueryHandler struct {
		catalog ports.NodeCatalog
	}
)

func NewDescribeNodeQueryHandler(
	catalog ports.NodeCatalog,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DescribeNodeQueryHandler {
	return decorator.ApplyQueryDecorators[DescribeNodeQuery, []schema.FieldSpec](
		describeNodeQueryHandler{catalog: catalog},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h describeNodeQueryHandler) Execute(_ context.Context, query DescribeNodeQuery) ([]schema.FieldSpec, error) {
	node, err := h.catalog.Get(query.Node)
	if err != nil {
		return nil, err
	}

	nodeSchema := node.Schema()
	if !nodeSchema.SupportsOperation(query.Resource, query.Operation) {
		return nil, fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, query.Node, query.Resource, query.Operation)
	}

	return nodeSchema.VisibleFields(query.Resource, query.Operation, query.Values), nil
}
