package rest_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/adapters/outbound/rest"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/nodes"
	"github.com/architeacher/connectors/pkg/circuitbreaker"
	"github.com/architeacher/connectors/pkg/logger"
)

type captured struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()

	seen := &captured{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		seen.method = r.Method
		seen.path = r.URL.Path
		seen.query = r.URL.RawQuery
		seen.header = r.Header.Clone()
		seen.body = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	return server, seen
}

func TestClient_Do(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		credential   func(host string) model.Credential
		request      nodes.Request
		status       int
		response     string
		expected     any
		expectedBody string
		authHeader   string
	}{
		{
			name: "bearer auth with json body",
			credential: func(host string) model.Credential {
				return model.Credential{Host: host + "/", AccessToken: "token-1"}
			},
			request: nodes.Request{
				Method: http.MethodPost,
				Path:   "/rest/V1/customers",
				Body:   map[string]any{"customer": map[string]any{"email": "a@b.com"}},
			},
			status:       http.StatusOK,
			response:     `{"id": 12, "email": "a@b.com"}`,
			expected:     map[string]any{"id": json.Number("12"), "email": "a@b.com"},
			expectedBody: `{"customer":{"email":"a@b.com"}}`,
			authHeader:   "Bearer token-1",
		},
		{
			name: "basic auth without body",
			credential: func(host string) model.Credential {
				return model.Credential{Host: host, AccessToken: "api-key", Scheme: model.AuthSchemeBasic}
			},
			request: nodes.Request{
				Method: http.MethodGet,
				Path:   "api/v2/departments",
				Body:   map[string]any{},
			},
			status:     http.StatusOK,
			response:   `{"departments": []}`,
			expected:   map[string]any{"departments": []any{}},
			authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte("api-key:X")),
		},
		{
			name: "empty response",
			credential: func(host string) model.Credential {
				return model.Credential{Host: host, AccessToken: "t"}
			},
			request:    nodes.Request{Method: http.MethodDelete, Path: "/api/v2/departments/1"},
			status:     http.StatusNoContent,
			expected:   nil,
			authHeader: "Bearer t",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server, seen := newServer(t, tc.status, tc.response)
			client := rest.NewClient(tc.credential(server.URL), rest.WithHTTPClient(server.Client()))

			result, err := client.Do(t.Context(), tc.request)
			require.NoError(t, err)
			require.Equal(t, tc.expected, result)

			require.Equal(t, tc.request.Method, seen.method)
			require.Equal(t, "/"+trimSlash(tc.request.Path), seen.path)
			require.Equal(t, tc.authHeader, seen.header.Get("Authorization"))
			require.Equal(t, "application/json", seen.header.Get("Content-Type"))

			if tc.expectedBody == "" {
				require.Empty(t, seen.body)
			} else {
				require.JSONEq(t, tc.expectedBody, string(seen.body))
			}
		})
	}
}

func trimSlash(path string) string {
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}

	return path
}

func TestClient_DoEncodesQuery(t *testing.T) {
	t.Parallel()

	server, seen := newServer(t, http.StatusOK, `{"items": [], "total_count": 0}`)
	client := rest.NewClient(model.Credential{Host: server.URL}, rest.WithHTTPClient(server.Client()))

	_, err := client.Do(t.Context(), nodes.Request{
		Method: http.MethodGet,
		Path:   "/rest/default/V1/products",
		Query:  map[string][]string{"search_criteria[page_size]": {"10"}},
	})
	require.NoError(t, err)
	require.Equal(t, "search_criteria%5Bpage_size%5D=10", seen.query)
}

func TestClient_DoErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		status          int
		response        string
		expectedMessage string
	}{
		{
			name:            "magento message with positional parameters",
			status:          http.StatusNotFound,
			response:        `{"message": "No such entity with %1 = %2", "parameters": ["customerId", "7"]}`,
			expectedMessage: "No such entity with customerId = 7",
		},
		{
			name:            "magento message with named parameters",
			status:          http.StatusBadRequest,
			response:        `{"message": "\"%fieldName\" is required.", "parameters": {"fieldName": "email"}}`,
			expectedMessage: `"email" is required.`,
		},
		{
			name:            "freshservice validation errors",
			status:          http.StatusBadRequest,
			response:        `{"description": "Validation failed", "errors": [{"field": "name", "message": "It should be unique", "code": "duplicate_value"}]}`,
			expectedMessage: "Validation failed: name It should be unique",
		},
		{
			name:            "plain text body",
			status:          http.StatusBadGateway,
			response:        `upstream exploded`,
			expectedMessage: "upstream exploded",
		},
		{
			name:            "empty body",
			status:          http.StatusUnauthorized,
			expectedMessage: "Unauthorized",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newServer(t, tc.status, tc.response)
			client := rest.NewClient(model.Credential{Host: server.URL}, rest.WithHTTPClient(server.Client()))

			_, err := client.Do(t.Context(), nodes.Request{Method: http.MethodGet, Path: "/x"})

			var upstream *model.UpstreamAPIError
			require.ErrorAs(t, err, &upstream)
			require.Equal(t, tc.status, upstream.StatusCode)
			require.Equal(t, tc.expectedMessage, upstream.Message)
		})
	}
}

func TestClient_DoTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	host := server.URL
	server.Close()

	client := rest.NewClient(model.Credential{Host: host})

	_, err := client.Do(t.Context(), nodes.Request{Method: http.MethodGet, Path: "/x"})

	var upstream *model.UpstreamAPIError
	require.ErrorAs(t, err, &upstream)
	require.Zero(t, upstream.StatusCode)
	require.True(t, rest.IsBreakerFailure(err))
}

func TestIsBreakerFailure(t *testing.T) {
	t.Parallel()

	require.True(t, rest.IsBreakerFailure(&model.UpstreamAPIError{StatusCode: 503}))
	require.False(t, rest.IsBreakerFailure(&model.UpstreamAPIError{StatusCode: 404}))
	require.False(t, rest.IsBreakerFailure(model.ErrNoFilterSupplied))
}

func TestFactory_BreakerOpensOnServerErrorsOnly(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	var status atomic.Int32
	status.Store(http.StatusNotFound)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(server.Close)

	factory := rest.NewFactory(rest.FactoryConfig{
		Timeout: time.Second,
		CircuitBreaker: circuitbreaker.Config{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		},
	}, logger.NewTestLogger(), nil).WithHTTPClient(server.Client())

	client := factory.For(model.Credential{Host: server.URL, AccessToken: "t"})

	for range 3 {
		_, err := client.Do(t.Context(), nodes.Request{Method: http.MethodGet, Path: "/missing"})
		require.Error(t, err)
	}

	require.Equal(t, circuitbreaker.StateClosed, factory.BreakerState(server.URL))

	status.Store(http.StatusInternalServerError)

	for range 2 {
		_, err := client.Do(t.Context(), nodes.Request{Method: http.MethodGet, Path: "/broken"})
		require.Error(t, err)
	}

	require.Equal(t, circuitbreaker.StateOpen, factory.BreakerState(server.URL))

	before := calls.Load()

	_, err := factory.For(model.Credential{Host: server.URL}).Do(t.Context(), nodes.Request{Path: "/x"})
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	require.Equal(t, before, calls.Load())
}

func TestClient_LogsUpstreamRequests(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, http.StatusOK, `{"id":1}`)

	var buf bytes.Buffer
	client := rest.NewClient(
		model.Credential{Host: server.URL, AccessToken: "token"},
		rest.WithLogger(logger.NewBufferedTestLogger(&buf)),
	)

	_, err := client.Do(t.Context(), nodes.Request{Method: http.MethodGet, Path: "/api/v2/departments"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	require.Equal(t, "upstream request", entry["message"])
	require.Equal(t, "/api/v2/departments", entry["path"])
	require.EqualValues(t, http.StatusOK, entry["status"])
}
