package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func testConfig(name string) Config {
	return Config{
		Name:             name,
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 1,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		wantNil bool
	}{
		{name: "enabled breaker is created", cfg: testConfig("magento2")},
		{name: "disabled breaker is nil", cfg: Config{Name: "off"}, wantNil: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := New[any](tc.cfg)
			if tc.wantNil {
				require.Nil(t, cb)
				require.Equal(t, StateClosed, cb.State())

				return
			}

			require.NotNil(t, cb)
			require.Equal(t, tc.cfg.Name, cb.Name())
			require.Equal(t, StateClosed, cb.State())
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cb      *CircuitBreaker[string]
		fn      func() (string, error)
		wantVal string
		wantErr error
	}{
		{
			name:    "returns value through breaker",
			cb:      New[string](testConfig("ok")),
			fn:      func() (string, error) { return "done", nil },
			wantVal: "done",
		},
		{
			name:    "nil breaker calls through",
			fn:      func() (string, error) { return "direct", nil },
			wantVal: "direct",
		},
		{
			name:    "propagates call error",
			cb:      New[string](testConfig("err")),
			fn:      func() (string, error) { return "", errUpstream },
			wantErr: errUpstream,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result, err := Execute(tc.cb, tc.fn)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantVal, result)
		})
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := New[string](testConfig("open"))

	_, err := Execute(cb, func() (string, error) { return "", errUpstream })
	require.ErrorIs(t, err, errUpstream)
	require.Equal(t, StateOpen, cb.State())

	called := false
	_, err = Execute(cb, func() (string, error) {
		called = true

		return "", nil
	})

	require.ErrorIs(t, err, ErrCircuitOpen)
	require.False(t, called)
}

func TestCircuitBreaker_IgnoresClassifiedErrors(t *testing.T) {
	t.Parallel()

	errClient := errors.New("bad request")

	cfg := testConfig("classified")
	cfg.IsFailure = func(err error) bool {
		return !errors.Is(err, errClient)
	}

	cb := New[string](cfg)

	for range 3 {
		_, err := Execute(cb, func() (string, error) { return "", errClient })
		require.ErrorIs(t, err, errClient)
	}

	require.Equal(t, StateClosed, cb.State())

	_, err := Execute(cb, func() (string, error) { return "", errUpstream })
	require.ErrorIs(t, err, errUpstream)
	require.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		transitions []State
	)

	cfg := testConfig("recover")
	cfg.OnStateChange = func(_ string, _, to State) {
		mu.Lock()
		defer mu.Unlock()

		transitions = append(transitions, to)
	}

	cb := New[string](cfg)

	_, _ = Execute(cb, func() (string, error) { return "", errUpstream })

	time.Sleep(150 * time.Millisecond)

	result, err := Execute(cb, func() (string, error) { return "recovered", nil })
	require.NoError(t, err)
	require.Equal(t, "recovered", result)

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_TooManyRequests(t *testing.T) {
	t.Parallel()

	cb := New[string](testConfig("probe"))

	_, _ = Execute(cb, func() (string, error) { return "", errUpstream })

	time.Sleep(150 * time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_, _ = Execute(cb, func() (string, error) {
			close(started)
			time.Sleep(50 * time.Millisecond)

			return "slow", nil
		})
		close(done)
	}()

	<-started

	_, err := Execute(cb, func() (string, error) { return "rejected", nil })
	require.ErrorIs(t, err, ErrTooManyRequests)

	<-done
}
