package rest

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/pkg/circuitbreaker"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type FactoryConfig struct {
	Timeout        time.Duration
	UserAgent      string
	CircuitBreaker circuitbreaker.Config
}

// Factory hands out clients that share one instrumented transport and one
// circuit breaker per upstream host.
type Factory struct {
	config     FactoryConfig
	httpClient *http.Client
	logger     logger.Logger
	metrics    metrics.Client

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker[any]
}

func NewFactory(cfg FactoryConfig, log logger.Logger, metricsClient metrics.Client) *Factory {
	return &Factory{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:   log,
		metrics:  metricsClient,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker[any]),
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. with one built by
// httptest.
func (f *Factory) WithHTTPClient(httpClient *http.Client) *Factory {
	f.httpClient = httpClient

	return f
}

// For returns a client bound to credential.
func (f *Factory) For(credential model.Credential) *Client {
	return NewClient(credential,
		WithHTTPClient(f.httpClient),
		WithCircuitBreaker(f.breaker(credential.Host)),
		WithLogger(f.logger),
		WithMetrics(f.metrics),
		WithUserAgent(f.config.UserAgent),
	)
}

// BreakerState reports the breaker state of host.
func (f *Factory) BreakerState(host string) circuitbreaker.State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.breakers[hostLabel(host)].State()
}

func (f *Factory) breaker(host string) *circuitbreaker.CircuitBreaker[any] {
	key := hostLabel(host)

	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[key]; ok {
		return cb
	}

	cfg := f.config.CircuitBreaker
	cfg.Name = key
	cfg.IsFailure = IsBreakerFailure
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		f.logger.Warn().
			Str("breaker", name).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("circuit breaker state changed")
	}

	cb := circuitbreaker.New[any](cfg)
	f.breakers[key] = cb

	return cb
}
