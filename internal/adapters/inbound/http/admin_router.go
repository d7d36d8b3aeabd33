package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/connectors/internal/usecases"
	"github.com/architeacher/connectors/pkg/metrics"
)

type AdminRouterConfig struct {
	App           *usecases.WebApplication
	MetricsClient metrics.Client
}

// NewAdminRouter serves internal endpoints meant for a private port.
func NewAdminRouter(cfg AdminRouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	handler := handlers.NewNodesHandler(cfg.App, 0)

	router.Get("/health", handler.Health)
	router.Handle("/metrics", cfg.MetricsClient.Handler())
	router.Mount("/debug", chimiddleware.Profiler())

	return router
}
