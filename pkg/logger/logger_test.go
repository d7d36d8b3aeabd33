package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/architeacher/connectors/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "debug", level: logger.LogLevelDebug, expected: zerolog.DebugLevel},
		{name: "upper case error", level: "ERROR", expected: zerolog.ErrorLevel},
		{name: "warning alias", level: logger.LogLevelWarning, expected: zerolog.WarnLevel},
		{name: "empty falls back to info", level: "", expected: zerolog.InfoLevel},
		{name: "unknown falls back to info", level: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, logger.ParseLevel(tc.level))
		})
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.LogLevelWarn, logger.JSONLoggingFormat, &buf)

	log.Info().Msg("dropped")
	require.Empty(t, buf.String())

	log.Warn().Msg("kept")
	require.Contains(t, buf.String(), "kept")
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		ctx      func() context.Context
		expected map[string]string
		absent   []string
	}{
		{
			name: "adds request id",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), logger.ContextKeyRequestID, "req-1")
			},
			expected: map[string]string{"request_id": "req-1"},
			absent:   []string{"execution_id", "node"},
		},
		{
			name: "adds execution and node",
			ctx: func() context.Context {
				return logger.WithExecution(context.Background(), "exec-9", "magento2")
			},
			expected: map[string]string{"execution_id": "exec-9", "node": "magento2"},
			absent:   []string{"request_id"},
		},
		{
			name: "skips empty values",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), logger.ContextKeyRequestID, "")
			},
			absent: []string{"request_id", "trace_id"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := logger.NewWithWriter(logger.LogLevelInfo, logger.JSONLoggingFormat, &buf)

			ctxLogger := log.WithContext(tc.ctx())
			ctxLogger.Info().Msg("test message")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for key, value := range tc.expected {
				require.Equal(t, value, entry[key])
			}

			for _, key := range tc.absent {
				require.NotContains(t, entry, key)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewBufferedTestLogger(&buf).Component("rest")

	log.Debug().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "rest", entry["component"])
}
