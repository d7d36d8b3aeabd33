package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases/commands"
	"github.com/architeacher/connectors/internal/usecases/queries"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	Commands struct {
		ExecuteNode commands.ExecuteNodeCommandHandler
	}

	Queries struct {
		ListNodes         queries.ListNodesQueryHandler
		DescribeNode      queries.DescribeNodeQueryHandler
		LoadOptions       queries.LoadOptionsQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	WebApplication struct {
		Commands Commands
		Queries  Queries
	}

	// Dependencies groups what the handlers are built from. OptionsCache and
	// OptionsQueryCache are nil when caching is off.
	Dependencies struct {
		Catalog           ports.NodeCatalog
		Credentials       ports.CredentialStore
		APIs              ports.APIFactory
		OptionsCache      ports.OptionsCache
		OptionsQueryCache decorator.Cache[queries.LoadOptionsQuery, []model.Option]
		Probes            []ports.DependencyProbe
	}
)

func NewWebApplication(
	deps Dependencies,
	cacheConfig config.OptionsCache,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *WebApplication {
	return &WebApplication{
		Commands: Commands{
			ExecuteNode: commands.NewExecuteNodeCommandHandlerWithCache(
				deps.Catalog, deps.Credentials, deps.APIs, deps.OptionsCache,
				log, metricsClient, tracerProvider,
			),
		},
		Queries: Queries{
			ListNodes:    queries.NewListNodesQueryHandler(deps.Catalog, log, metricsClient, tracerProvider),
			DescribeNode: queries.NewDescribeNodeQueryHandler(deps.Catalog, log, metricsClient, tracerProvider),
			LoadOptions: queries.NewLoadOptionsQueryHandlerWithCache(
				deps.Catalog, deps.Credentials, deps.APIs, deps.OptionsQueryCache,
				decorator.CacheConfig{Enabled: cacheConfig.Enabled, TTL: cacheConfig.TTL},
				log, metricsClient, tracerProvider,
			),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(deps.Catalog, deps.Probes, log, metricsClient, tracerProvider),
		},
	}
}
