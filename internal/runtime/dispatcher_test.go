package runtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/usecases/queries"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates service context with default values", func(t *testing.T) {
		t.Parallel()

		serviceCtx := New()

		require.NotNil(t, serviceCtx)
		require.NotNil(t, serviceCtx.shutdownChannel)
		require.Nil(t, serviceCtx.deps)
		require.Nil(t, serviceCtx.serverReady)
		require.Empty(t, serviceCtx.overrides)
	})

	t.Run("creates service context with options", func(t *testing.T) {
		t.Parallel()

		ch := make(chan os.Signal, 1)
		serviceCtx := New(
			WithServiceTermination(ch),
			WithWaitingForServer(),
			WithConfigOverrides(func(cfg *config.ServiceConfig) {}),
		)

		require.NotNil(t, serviceCtx)
		require.Equal(t, ch, serviceCtx.shutdownChannel)
		require.NotNil(t, serviceCtx.serverReady)
		require.Len(t, serviceCtx.overrides, 1)
	})
}

func setupEnv(t *testing.T) {
	t.Helper()

	credentials := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(credentials, []byte(`credentials:
  - name: desk
    host: https://acme.freshservice.com
    accessToken: key
`), 0o600))

	t.Setenv("CREDENTIALS_SOURCE", "file")
	t.Setenv("CREDENTIALS_FILE", credentials)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("VAULT_ENABLED", "false")
	t.Setenv("TRACES_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func TestServiceCtx_Run(t *testing.T) {
	setupEnv(t)

	ch := make(chan os.Signal, 1)
	srv := New(
		WithServiceTermination(ch),
		WithWaitingForServer(),
		WithConfigOverrides(func(cfg *config.ServiceConfig) {
			cfg.PublicHTTPServer.Host = "127.0.0.1"
			cfg.PublicHTTPServer.Port = 0
			cfg.PublicHTTPServer.ShutdownTimeout = 5 * time.Second
			cfg.AdminHTTPServer.Port = 0
		}),
	)

	done := make(chan error, 1)
	go func() {
		done <- srv.Run()
	}()

	srv.WaitForServer()

	resp, err := http.Get("http://" + srv.PublicAddr() + "/v1/health")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var report struct {
		Status string   `json:"status"`
		Nodes  []string `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	require.Equal(t, "ok", report.Status)
	require.Equal(t, []string{"freshservice", "magento2"}, report.Nodes)

	ch <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not shut down")
	}
}

func TestServiceCtx_RunFailsOnInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("CREDENTIALS_SOURCE", "ldap")

	err := New().Run()
	require.ErrorContains(t, err, "unsupported credentials source")
}

func TestNewApplication(t *testing.T) {
	setupEnv(t)

	app, err := NewApplication(t.Context(), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		app.Close(context.Background())
	})

	schemas, err := app.Queries.ListNodes.Execute(t.Context(), queries.ListNodesQuery{})
	require.NoError(t, err)
	require.Len(t, schemas, 2)

	require.NotNil(t, app.deps.repos.rateLimitStore)
	require.Nil(t, app.deps.repos.idempotencyRepo)
	require.Nil(t, app.deps.infra.cacheClient)
}
