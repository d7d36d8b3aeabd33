package queries

import (
	"context"
	"slices"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	LoadOptionsQuery struct {
		Node       string
		Method     string
		Credential string
		Params     model.Params
		// Refresh skips the cached listing and stores the fresh one.
		Refresh bool
	}

	LoadOptionsQueryHandler = decorator.QueryHandler[LoadOptionsQuery, []model.Option]

	loadOptionsQueryHandler struct {
		catalog     ports.NodeCatalog
		credentials ports.CredentialStore
		apis        ports.APIFactory
	}
)

func (q LoadOptionsQuery) BypassCache() bool {
	return q.Refresh
}

func NewLoadOptionsQueryHandler(
	catalog ports.NodeCatalog,
	credentials ports.CredentialStore,
	apis ports.APIFactory,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) LoadOptionsQueryHandler {
	return NewLoadOptionsQueryHandlerWithCache(catalog, credentials, apis, nil, decorator.CacheConfig{}, log, metricsClient, tracerProvider)
}

// NewLoadOptionsQueryHandlerWithCache serves listings from cache when
// cfg.Enabled. Failed cache writes are logged and otherwise ignored.
func NewLoadOptionsQueryHandlerWithCache(
	catalog ports.NodeCatalog,
	credentials ports.CredentialStore,
	apis ports.APIFactory,
	cache decorator.Cache[LoadOptionsQuery, []model.Option],
	cfg decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) LoadOptionsQueryHandler {
	var handler LoadOptionsQueryHandler = loadOptionsQueryHandler{
		catalog:     catalog,
		credentials: credentials,
		apis:        apis,
	}

	if cache != nil {
		handler = decorator.NewQueryCachingDecorator(handler, cache, cfg,
			decorator.WithSetErrorHandler(func(err error) {
				if err != nil {
					log.Warn().Err(err).Msg("failed to cache options")
				}
			}),
		)
	}

	return decorator.ApplyQueryDecorators(handler, log, metricsClient, tracerProvider)
}

func (h loadOptionsQueryHandler) Execute(ctx context.Context, query LoadOptionsQuery) ([]model.Option, error) {
	node, err := h.catalog.Get(query.Node)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(node.LoadOptionsMethods(), query.Method) {
		return nil, nodes.UnknownMethod(query.Node, query.Method)
	}

	credential, err := h.credentials.Get(ctx, query.Credential)
	if err != nil {
		return nil, err
	}

	if credential.Scheme == "" {
		credential.Scheme = node.Schema().AuthScheme
	}

	params := query.Params
	if params == nil {
		params = model.Params{}
	}

	return node.LoadOptions(ctx, h.apis.For(credential), query.Method, params)
}
