package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	ExecuteNodeCommand struct {
		Node           string
		Resource       string
		Operation      model.Operation
		Credential     string
		Items          []model.Params
		ContinueOnFail bool
	}

	// ExecuteNodeCommandHandler returns the execution gathered so far
	// together with the error when a run stops early.
	ExecuteNodeCommandHandler = decorator.CommandHandler[ExecuteNodeCommand, *model.Execution]

	executeNodeCommandHandler struct {
		catalog     ports.NodeCatalog
		credentials ports.CredentialStore
		apis        ports.APIFactory
		cache       ports.OptionsCache
		logger      logger.Logger
	}
)

func NewExecuteNodeCommandHandler(
	catalog ports.NodeCatalog,
	credentials ports.CredentialStore,
	apis ports.APIFactory,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ExecuteNodeCommandHandler {
	return NewExecuteNodeCommandHandlerWithCache(catalog, credentials, apis, nil, log, metricsClient, tracerProvider)
}

// NewExecuteNodeCommandHandlerWithCache drops the cached dropdown listings of
// a node after every run that changed remote data.
func NewExecuteNodeCommandHandlerWithCache(
	catalog ports.NodeCatalog,
	credentials ports.CredentialStore,
	apis ports.APIFactory,
	cache ports.OptionsCache,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ExecuteNodeCommandHandler {
	return decorator.ApplyCommandDecorators[ExecuteNodeCommand, *model.Execution](
		executeNodeCommandHandler{
			catalog:     catalog,
			credentials: credentials,
			apis:        apis,
			cache:       cache,
			logger:      log,
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h executeNodeCommandHandler) Handle(ctx context.Context, cmd ExecuteNodeCommand) (*model.Execution, error) {
	node, err := h.catalog.Get(cmd.Node)
	if err != nil {
		return nil, err
	}

	credential, err := h.credentials.Get(ctx, cmd.Credential)
	if err != nil {
		return nil, err
	}

	if credential.Scheme == "" {
		credential.Scheme = node.Schema().AuthScheme
	}

	execution := &model.Execution{
		ID:        uuid.NewString(),
		Node:      cmd.Node,
		Resource:  cmd.Resource,
		Operation: cmd.Operation,
	}

	ctx = logger.WithExecution(ctx, execution.ID, cmd.Node)
	log := h.logger.WithContext(ctx)

	log.Debug().
		Str("resource", cmd.Resource).
		Str("operation", cmd.Operation.String()).
		Int("items", len(cmd.Items)).
		Msg("executing node")

	items, err := nodes.Run(ctx, node, h.apis.For(credential), nodes.RunRequest{
		Resource:       cmd.Resource,
		Operation:      cmd.Operation,
		Items:          cmd.Items,
		ContinueOnFail: cmd.ContinueOnFail,
	})
	execution.Items = items

	if mutates(cmd.Operation) && h.cache != nil && (len(items) > 0 || partial(err)) {
		go func() {
			if err := h.cache.InvalidateNode(context.WithoutCancel(ctx), cmd.Node); err != nil {
				log.Warn().Err(err).Msg("failed to invalidate cached options")
			}
		}()
	}

	if err != nil {
		return execution, fmt.Errorf("executing %s %s.%s: %w", cmd.Node, cmd.Resource, cmd.Operation, err)
	}

	return execution, nil
}

func mutates(operation model.Operation) bool {
	switch operation {
	case model.OperationCreate, model.OperationUpdate, model.OperationDelete:
		return true
	default:
		return false
	}
}

// partial reports whether err stopped a run after its first item.
func partial(err error) bool {
	var itemErr *model.ItemError

	return errors.As(err, &itemErr) && itemErr.Index > 0
}
