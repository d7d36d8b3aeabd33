package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/connectors/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/connectors/internal/adapters/inbound/http/openapi"
	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

const baseURL = "/v1"

// RouterConfig holds what the public router is built from. RateLimitStore
// and IdempotencyCache are optional.
type RouterConfig struct {
	App              *usecases.WebApplication
	Logger           logger.Logger
	MetricsClient    metrics.Client
	TracerProvider   otelTrace.TracerProvider
	Config           *config.ServiceConfig
	RateLimitStore   throttled.GCRAStoreCtx
	IdempotencyCache ports.IdempotencyCache
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion))

	if cfg.Config.CORS.Enabled {
		router.Use(middleware.CORS(cfg.Config.CORS, cfg.Config.Idempotency))
	}

	if cfg.Config.Compression.Enabled {
		router.Use(middleware.Compression(cfg.Config.Compression))
	}

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Use(middleware.Metrics(cfg.MetricsClient))
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		router.Use(middleware.AccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog))
	}

	if cfg.Config.ThrottledRateLimiting.Enabled && cfg.RateLimitStore != nil {
		rateLimit, err := middleware.RateLimit(cfg.Config.ThrottledRateLimiting, cfg.RateLimitStore, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating rate limiter: %w", err)
		}

		router.Use(rateLimit)
	}

	if cfg.Config.RequestValidation.Enabled {
		doc, err := openapi.Load()
		if err != nil {
			return nil, err
		}

		validator, err := middleware.RequestValidator(doc, baseURL, cfg.Config.PublicHTTPServer.MaxBodyBytes, cfg.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating request validator: %w", err)
		}

		router.Use(validator)
	}

	handler := handlers.NewNodesHandler(cfg.App, cfg.Config.PublicHTTPServer.MaxBodyBytes)

	router.Route(baseURL, func(r chi.Router) {
		r.Get("/health", handler.Health)
		r.Get("/openapi.yaml", serveDocument)
		r.Get("/nodes", handler.ListNodes)

		r.Route("/nodes/{node}", func(r chi.Router) {
			r.Get("/fields", handler.DescribeNode)
			r.Get("/options/{method}", handler.LoadOptions)

			r.Group(func(r chi.Router) {
				if cfg.IdempotencyCache != nil {
					r.Use(middleware.Idempotency(
						cfg.IdempotencyCache,
						cfg.Config.Idempotency,
						cfg.Config.PublicHTTPServer.MaxBodyBytes,
						cfg.Logger,
					))
				}

				r.Post("/execute", handler.ExecuteNode)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	if !cfg.Config.Telemetry.Traces.Enabled || cfg.TracerProvider == nil {
		return router, nil
	}

	cfg.Logger.Info().Msg("distributed tracing enabled")

	return otelhttp.NewHandler(router, cfg.Config.App.ServiceName,
		otelhttp.WithTracerProvider(cfg.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	), nil
}

func serveDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.Document())
}
