package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/throttled/throttled/v2/store/memstore"

	inboundhttp "github.com/architeacher/connectors/internal/adapters/inbound/http"
	"github.com/architeacher/connectors/internal/adapters/outbound/rest"
	"github.com/architeacher/connectors/internal/adapters/repos"
	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/infrastructure"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/internal/nodes/freshservice"
	"github.com/architeacher/connectors/internal/nodes/magento"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases"
	"github.com/architeacher/connectors/pkg/circuitbreaker"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics/noop"
	"github.com/architeacher/connectors/pkg/metrics/prometheus"
)

// applicationOptions build everything up to the web application.
func applicationOptions(ctx context.Context, overrides ...func(*config.ServiceConfig)) []DependencyOption {
	return []DependencyOption{
		WithConfig(overrides...),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithMetrics(),
		WithTracing(ctx),
		WithCache(ctx),
		WithCredentialStore(),
		WithNodes(),
		WithApplication(),
	}
}

func defaultOptions(ctx context.Context, overrides ...func(*config.ServiceConfig)) []DependencyOption {
	return append(applicationOptions(ctx, overrides...), WithHTTPServers())
}

// WithConfig reads the environment configuration and applies overrides on
// top of it.
func WithConfig(overrides ...func(*config.ServiceConfig)) DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		for _, override := range overrides {
			override(cfg)
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

// WithLogOutput redirects the logger; it must precede WithLogger.
func WithLogOutput(w io.Writer) DependencyOption {
	return func(d *dependencies) error {
		d.infra.logOutput = w

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		output := d.infra.logOutput
		if output == nil {
			output = os.Stdout
		}

		d.infra.logger = logger.NewWithWriter(d.config.Logging.Level, d.config.Logging.Format, output)

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled || d.repos.secretsRepo == nil {
			return nil
		}

		version, err := config.NewLoader(d.config, d.repos.secretsRepo).Load(ctx)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.secretsVersion = version
		d.infra.logger.Info().Uint("version", version).Msg("secrets loaded from Vault")

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := prometheus.NewMetricsClient(d.config.App.ServiceName)
		d.infra.metricsClient = client
		d.cleanupFuncs["metrics"] = client.Shutdown

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.App, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

// WithCache connects KeyDB and builds the repositories living on it. With
// the cache off, options are fetched every time, idempotency keys are
// ignored and rate limits are kept in process memory.
func WithCache(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Cache.Enabled {
			store, err := memstore.NewCtx(int(d.config.ThrottledRateLimiting.MaxKeys))
			if err != nil {
				return fmt.Errorf("creating in-memory rate limit store: %w", err)
			}

			d.repos.rateLimitStore = store

			return nil
		}

		client := infrastructure.NewKeyDBClient(d.config.Cache, d.infra.logger)
		if err := client.WaitReady(ctx); err != nil {
			// The service starts degraded; the health report shows the outage.
			d.infra.logger.Warn().Err(err).Str("address", d.config.Cache.Address).Msg("cache is unreachable")
		}

		optionsCache := repos.NewOptionsCacheRepository(client, d.infra.logger)

		d.infra.cacheClient = client
		d.repos.optionsCache = optionsCache
		d.repos.optionsQueryCache = repos.NewLoadOptionsCacheAdapter(optionsCache)
		d.repos.idempotencyRepo = repos.NewIdempotencyRepository(client)
		d.repos.rateLimitStore = repos.NewRateLimitStore(client)
		d.nodes.probes = append(d.nodes.probes, client)
		d.cleanupFuncs["cache"] = func(context.Context) error {
			return client.Close()
		}

		return nil
	}
}

func WithCredentialStore() DependencyOption {
	return func(d *dependencies) error {
		switch strings.ToLower(d.config.Credentials.Source) {
		case config.CredentialSourceVault:
			if d.repos.secretsRepo == nil {
				return fmt.Errorf("vault credential store requires the secrets repository")
			}

			prefix := strings.Trim(d.config.SecretsStorage.MountPath+"/"+d.config.Credentials.VaultPath, "/")
			d.repos.credentials = repos.NewVaultCredentialStore(d.repos.secretsRepo, "apps", prefix)
		default:
			d.repos.credentials = repos.NewFileCredentialStore(d.config.Credentials.File)
		}

		return nil
	}
}

// WithNodes registers the built-in nodes and the REST client factory they
// talk through.
func WithNodes() DependencyOption {
	return func(d *dependencies) error {
		registry, err := nodes.NewRegistry(magento.New(), freshservice.New())
		if err != nil {
			return fmt.Errorf("registering nodes: %w", err)
		}

		cb := d.config.Upstream.CircuitBreaker
		factory := rest.NewFactory(rest.FactoryConfig{
			Timeout:   d.config.Upstream.Timeout,
			UserAgent: d.config.Upstream.UserAgent,
			CircuitBreaker: circuitbreaker.Config{
				Enabled:          cb.Enabled,
				MaxRequests:      cb.MaxRequests,
				Interval:         cb.Interval,
				Timeout:          cb.Timeout,
				FailureThreshold: cb.FailureThreshold,
			},
		}, d.infra.logger.Component("upstream"), d.infra.metricsClient)

		d.nodes.catalog = registry
		d.nodes.apis = ports.APIFactoryFunc(func(credential model.Credential) nodes.API {
			return factory.For(credential)
		})

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.apps.webApp = usecases.NewWebApplication(
			usecases.Dependencies{
				Catalog:           d.nodes.catalog,
				Credentials:       d.repos.credentials,
				APIs:              d.nodes.apis,
				OptionsCache:      d.repos.optionsCache,
				OptionsQueryCache: d.repos.optionsQueryCache,
				Probes:            d.nodes.probes,
			},
			d.config.OptionsCache,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServers() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:              d.apps.webApp,
			Logger:           d.infra.logger,
			MetricsClient:    d.infra.metricsClient,
			TracerProvider:   d.infra.tracerProvider,
			Config:           d.config,
			RateLimitStore:   d.repos.rateLimitStore,
			IdempotencyCache: d.repos.idempotencyRepo,
		})
		if err != nil {
			return fmt.Errorf("creating router: %w", err)
		}

		public := d.config.PublicHTTPServer
		d.infra.publicHttpServer = &http.Server{
			Addr:         net.JoinHostPort(public.Host, strconv.FormatUint(uint64(public.Port), 10)),
			Handler:      router,
			ReadTimeout:  public.ReadTimeout,
			WriteTimeout: public.WriteTimeout,
			IdleTimeout:  public.IdleTimeout,
		}
		d.cleanupFuncs["public_http_server"] = d.infra.publicHttpServer.Shutdown

		admin := d.config.AdminHTTPServer
		if !admin.Enabled {
			return nil
		}

		d.infra.adminHttpServer = &http.Server{
			Addr: net.JoinHostPort(admin.Host, strconv.FormatUint(uint64(admin.Port), 10)),
			Handler: inboundhttp.NewAdminRouter(inboundhttp.AdminRouterConfig{
				App:           d.apps.webApp,
				MetricsClient: d.infra.metricsClient,
			}),
			ReadTimeout:  admin.ReadTimeout,
			WriteTimeout: admin.WriteTimeout,
			IdleTimeout:  admin.IdleTimeout,
		}
		d.cleanupFuncs["admin_http_server"] = d.infra.adminHttpServer.Shutdown

		return nil
	}
}
