package decorator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/pkg/decorator"
)

type optionsQuery struct {
	Method  string
	Refresh bool
}

func (q optionsQuery) BypassCache() bool { return q.Refresh }

type optionsResult struct {
	Names []string
}

type fakeCache struct {
	mu     sync.Mutex
	data   map[string]optionsResult
	gets   int
	sets   int
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]optionsResult)}
}

func (c *fakeCache) Get(_ context.Context, query optionsQuery) (optionsResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++

	if c.getErr != nil {
		return optionsResult{}, false, c.getErr
	}

	result, ok := c.data[query.Method]

	return result, ok, nil
}

func (c *fakeCache) Set(_ context.Context, query optionsQuery, result optionsResult, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	c.data[query.Method] = result

	return nil
}

func (c *fakeCache) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gets, c.sets
}

type fakeQueryHandler struct {
	mu     sync.Mutex
	calls  int
	result optionsResult
	err    error
}

func (h *fakeQueryHandler) Execute(_ context.Context, _ optionsQuery) (optionsResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++

	return h.result, h.err
}

func (h *fakeQueryHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls
}

func TestQueryCachingDecorator(t *testing.T) {
	t.Parallel()

	fresh := optionsResult{Names: []string{"fresh"}}
	cached := optionsResult{Names: []string{"cached"}}

	cases := []struct {
		name        string
		config      decorator.CacheConfig
		nilCache    bool
		seed        bool
		getErr      error
		handlerErr  error
		query       optionsQuery
		expected    optionsResult
		wantErr     bool
		wantStatus  decorator.CacheStatus
		wantCalls   int
		wantWritten bool
	}{
		{
			name:       "hit skips handler",
			config:     decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			seed:       true,
			query:      optionsQuery{Method: "getCountries"},
			expected:   cached,
			wantStatus: decorator.CacheStatusHit,
		},
		{
			name:        "miss calls handler and stores result",
			config:      decorator.CacheConfig{Enabled: true, TTL: time.Minute},
			query:       optionsQuery{Method: "getCountries"},
			expected:    fresh,
			wantStatus:  decorator.CacheStatusMiss,
			wantCalls:   1,
			wantWritten: true,
		},
		{
			name:       "disabled bypasses cache",
			config:     decorator.CacheConfig{Enabled: false},
			seed:       true,
			query:      optionsQuery{Method: "getCountries"},
			expected:   fresh,
			wantStatus: decorator.CacheStatusBypass,
			wantCalls:  1,
		},
		{
			name:       "nil cache bypasses",
			config:     decorator.CacheConfig{Enabled: true},
			nilCache:   true,
			query:      optionsQuery{Method: "getCountries"},
			expected:   fresh,
			wantStatus: decorator.CacheStatusBypass,
			wantCalls:  1,
		},
		{
			name:       "refresh request bypasses",
			config:     decorator.CacheConfig{Enabled: true},
			seed:       true,
			query:      optionsQuery{Method: "getCountries", Refresh: true},
			expected:   fresh,
			wantStatus: decorator.CacheStatusBypass,
			wantCalls:  1,
		},
		{
			name:        "cache read error falls back to handler",
			config:      decorator.CacheConfig{Enabled: true},
			getErr:      errors.New("connection refused"),
			query:       optionsQuery{Method: "getCountries"},
			expected:    fresh,
			wantStatus:  decorator.CacheStatusError,
			wantCalls:   1,
			wantWritten: true,
		},
		{
			name:       "handler error is not cached",
			config:     decorator.CacheConfig{Enabled: true},
			handlerErr: errors.New("upstream down"),
			query:      optionsQuery{Method: "getCountries"},
			wantErr:    true,
			wantStatus: decorator.CacheStatusMiss,
			wantCalls:  1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cache := newFakeCache()
			cache.getErr = tc.getErr

			if tc.seed {
				cache.data[tc.query.Method] = cached
			}

			handler := &fakeQueryHandler{result: fresh, err: tc.handlerErr}

			written := make(chan error, 1)

			var backing decorator.Cache[optionsQuery, optionsResult] = cache
			if tc.nilCache {
				backing = nil
			}

			decorated := decorator.NewQueryCachingDecorator[optionsQuery, optionsResult](
				handler,
				backing,
				tc.config,
				decorator.WithSetErrorHandler(func(err error) { written <- err }),
			)

			ctx, status := decorator.WithCacheStatusRecorder(context.Background())
			result, err := decorated.Execute(ctx, tc.query)

			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.expected, result)
			}

			require.Equal(t, tc.wantStatus, status())
			require.Equal(t, tc.wantCalls, handler.callCount())

			if tc.wantWritten {
				select {
				case setErr := <-written:
					require.NoError(t, setErr)
				case <-time.After(time.Second):
					t.Fatal("cache write did not happen")
				}

				_, sets := cache.counts()
				require.Equal(t, 1, sets)

				return
			}

			require.Never(t, func() bool {
				_, sets := cache.counts()

				return sets > 0
			}, 50*time.Millisecond, 10*time.Millisecond)
		})
	}
}

func TestWithCacheStatusRecorder_DefaultsToBypass(t *testing.T) {
	t.Parallel()

	_, status := decorator.WithCacheStatusRecorder(context.Background())

	require.Equal(t, decorator.CacheStatusBypass, status())
}
