package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/pkg/circuitbreaker"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

const (
	contentTypeJSON = "application/json"
	basicPassword   = "X"
)

// Client calls one remote REST API on behalf of a single credential.
type Client struct {
	httpClient *http.Client
	credential model.Credential
	cb         *circuitbreaker.CircuitBreaker[any]
	metrics    metrics.Client
	logger     logger.Logger
	userAgent  string
}

func NewClient(credential model.Credential, opts ...Option) *Client {
	client := &Client{
		httpClient: http.DefaultClient,
		credential: credential,
		logger:     logger.Logger{Logger: zerolog.Nop()},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends req and returns the decoded JSON response, nil for an empty one.
// Failures are *model.UpstreamAPIError; an open breaker yields
// circuitbreaker.ErrCircuitOpen.
func (c *Client) Do(ctx context.Context, req nodes.Request) (any, error) {
	return circuitbreaker.Execute(c.cb, func() (any, error) {
		return c.do(ctx, req)
	})
}

func (c *Client) do(ctx context.Context, req nodes.Request) (any, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.record(ctx, req, 0, time.Since(start))

		return nil, &model.UpstreamAPIError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	c.record(ctx, req, resp.StatusCode, time.Since(start))

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.UpstreamAPIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("reading response body: %s", err),
			Err:        err,
		}
	}

	body, decodeErr := decode(payload)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &model.UpstreamAPIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body, payload),
			Body:       body,
		}
	}

	if decodeErr != nil {
		return nil, &model.UpstreamAPIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decoding response body: %s", decodeErr),
			Err:        decodeErr,
		}
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req nodes.Request) (*http.Request, error) {
	target := strings.TrimRight(c.credential.Host, "/") + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	payload, err := encode(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	switch c.credential.Scheme {
	case model.AuthSchemeBasic:
		httpReq.SetBasicAuth(c.credential.AccessToken, basicPassword)
	default:
		httpReq.Header.Set("Authorization", "Bearer "+c.credential.AccessToken)
	}

	return httpReq, nil
}

func (c *Client) record(ctx context.Context, req nodes.Request, status int, elapsed time.Duration) {
	log := c.logger.WithContext(ctx)
	log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("upstream request")

	if c.metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("host", hostLabel(c.credential.Host)),
		attribute.String("status", strconv.Itoa(status)),
	}

	c.metrics.Inc(ctx, "upstream.requests", 1, attrs...)
	c.metrics.Observe(ctx, "upstream.request.duration", elapsed, attrs[:1]...)
}

func hostLabel(host string) string {
	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		return host
	}

	return parsed.Host
}

func encode(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(payload); bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	return payload, nil
}

func decode(payload []byte) (any, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var body any
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}

	return body, nil
}

// IsBreakerFailure counts transport failures and 5xx responses. Client
// errors and caller cancellations leave the breaker alone.
func IsBreakerFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var upstream *model.UpstreamAPIError
	if !errors.As(err, &upstream) {
		return false
	}

	return upstream.StatusCode == 0 || upstream.StatusCode >= http.StatusInternalServerError
}
