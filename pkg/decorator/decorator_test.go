package decorator_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
)

type SyncItemsCommand struct {
	Items int
}

type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
	observed []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counters: make(map[string]float64)}
}

func (m *recordingMetrics) Inc(_ context.Context, key string, value any, _ ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := value.(int); ok {
		m.counters[key] += float64(v)
	}
}

func (m *recordingMetrics) Observe(_ context.Context, key string, _ time.Duration, _ ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observed = append(m.observed, key)
}

func (m *recordingMetrics) Handler() http.Handler { return http.NotFoundHandler() }

func (m *recordingMetrics) Shutdown(_ context.Context) error { return nil }

type commandFunc func(ctx context.Context, cmd SyncItemsCommand) (int, error)

func (f commandFunc) Handle(ctx context.Context, cmd SyncItemsCommand) (int, error) {
	return f(ctx, cmd)
}

func TestApplyCommandDecorators(t *testing.T) {
	t.Parallel()

	errSync := errors.New("sync failed")

	cases := []struct {
		name       string
		handlerErr error
		wantKey    string
		wantLog    string
		wantStatus codes.Code
	}{
		{
			name:       "success path",
			wantKey:    "commands.syncitemscommand.success",
			wantLog:    "command executed successfully",
			wantStatus: codes.Unset,
		},
		{
			name:       "failure path",
			handlerErr: errSync,
			wantKey:    "commands.syncitemscommand.failure",
			wantLog:    "failed to execute command",
			wantStatus: codes.Error,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var logs bytes.Buffer

			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			metricsClient := newRecordingMetrics()

			handler := decorator.ApplyCommandDecorators[SyncItemsCommand, int](
				commandFunc(func(_ context.Context, cmd SyncItemsCommand) (int, error) {
					return cmd.Items, tc.handlerErr
				}),
				logger.NewBufferedTestLogger(&logs),
				metricsClient,
				provider,
			)

			result, err := handler.Handle(context.Background(), SyncItemsCommand{Items: 3})
			if tc.handlerErr != nil {
				require.ErrorIs(t, err, tc.handlerErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, 3, result)
			}

			require.Contains(t, logs.String(), tc.wantLog)
			require.Contains(t, logs.String(), "SyncItemsCommand")

			require.Equal(t, float64(1), metricsClient.counters[tc.wantKey])
			require.Equal(t, []string{"commands.syncitemscommand.duration"}, metricsClient.observed)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			require.Equal(t, "command.SyncItemsCommand", spans[0].Name())
			require.Equal(t, tc.wantStatus, spans[0].Status().Code)
		})
	}
}

type ListThingsQuery struct{}

type queryFunc func(ctx context.Context, q ListThingsQuery) ([]string, error)

func (f queryFunc) Execute(ctx context.Context, q ListThingsQuery) ([]string, error) {
	return f(ctx, q)
}

func TestApplyQueryDecorators_NilCollaborators(t *testing.T) {
	t.Parallel()

	handler := decorator.ApplyQueryDecorators[ListThingsQuery, []string](
		queryFunc(func(context.Context, ListThingsQuery) ([]string, error) {
			return []string{"a"}, nil
		}),
		logger.NewTestLogger(),
		nil,
		nil,
	)

	result, err := handler.Execute(context.Background(), ListThingsQuery{})

	require.NoError(t, err)
	require.Equal(t, []string{"a"}, result)
}
