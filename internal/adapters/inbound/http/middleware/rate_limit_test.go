package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"

	"github.com/architeacher/connectors/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/pkg/logger"
)

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) GetWithTime(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, errStoreDown
}

func (brokenStore) SetIfNotExistsWithTTL(context.Context, string, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func (brokenStore) CompareAndSwapWithTTL(context.Context, string, int64, int64, time.Duration) (bool, error) {
	return false, errStoreDown
}

func discardLogger() logger.Logger {
	return logger.NewWithWriter("error", "json", io.Discard)
}

func rateLimited(t *testing.T, cfg config.ThrottledRateLimiting, store throttled.GCRAStoreCtx) http.Handler {
	t.Helper()

	mw, err := middleware.RateLimit(cfg, store, discardLogger())
	require.NoError(t, err)

	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func hit(handler http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	store, err := memstore.NewCtx(100)
	require.NoError(t, err)

	handler := rateLimited(t, config.ThrottledRateLimiting{
		RequestsPerSecond: 1,
		BurstSize:         1,
		SkipPaths:         []string{"/v1/health"},
	}, store)

	for range 2 {
		rec := hit(handler, "/v1/nodes", "10.0.0.1:5000")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "2", rec.Header().Get(middleware.RateLimitLimitHeader))
	}

	rec := hit(handler, "/v1/nodes", "10.0.0.1:5001")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get(middleware.RateLimitRemainingHeader))
	require.NotEmpty(t, rec.Header().Get(middleware.RetryAfterHeader))
	require.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")

	// Quotas are per client address.
	require.Equal(t, http.StatusNoContent, hit(handler, "/v1/nodes", "10.0.0.2:5000").Code)

	// Skipped paths are never counted.
	require.Equal(t, http.StatusNoContent, hit(handler, "/v1/health", "10.0.0.1:5000").Code)
}

func TestRateLimit_StoreFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		degraded bool
		status   int
	}{
		{name: "graceful", degraded: true, status: http.StatusNoContent},
		{name: "strict", degraded: false, status: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := rateLimited(t, config.ThrottledRateLimiting{
				RequestsPerSecond: 10,
				BurstSize:         10,
				GracefulDegraded:  tc.degraded,
			}, brokenStore{})

			require.Equal(t, tc.status, hit(handler, "/v1/nodes", "10.0.0.1:5000").Code)
		})
	}
}
