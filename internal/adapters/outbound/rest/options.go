package rest

import (
	"net/http"

	"github.com/architeacher/connectors/pkg/circuitbreaker"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

// Option configures the Client.
type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCircuitBreaker allows injecting a shared or custom circuit breaker.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker[any]) Option {
	return func(c *Client) {
		c.cb = cb
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

func WithMetrics(client metrics.Client) Option {
	return func(c *Client) {
		c.metrics = client
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}
