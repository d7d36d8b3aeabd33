package runtime

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/infrastructure"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases"
	"github.com/architeacher/connectors/internal/usecases/queries"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	infrastructureDep struct {
		publicHttpServer *http.Server
		adminHttpServer  *http.Server
		cacheClient      *infrastructure.KeydbClient
		logOutput        io.Writer
		logger           logger.Logger
		metricsClient    metrics.Client
		tracerProvider   otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo       ports.SecretsRepository
		credentials       ports.CredentialStore
		optionsCache      ports.OptionsCache
		optionsQueryCache decorator.Cache[queries.LoadOptionsQuery, []model.Option]
		idempotencyRepo   ports.IdempotencyCache
		rateLimitStore    throttled.GCRAStoreCtx
	}

	nodesDep struct {
		catalog *nodes.Registry
		apis    ports.APIFactory
		probes  []ports.DependencyProbe
	}

	applications struct {
		webApp *usecases.WebApplication
	}

	dependencies struct {
		config *config.ServiceConfig

		// secretsVersion is the Vault secret version applied at start, zero
		// when Vault is off.
		secretsVersion uint

		infra infrastructureDep

		repos repositories

		nodes nodesDep

		apps applications

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	for _, opt := range opts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// cleanup releases every resource registered by the applied options.
func (d *dependencies) cleanup(ctx context.Context) {
	for resource, cleanupFn := range d.cleanupFuncs {
		if err := cleanupFn(ctx); err != nil {
			d.infra.logger.Error().
				Err(err).
				Str("resource", resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}
}
