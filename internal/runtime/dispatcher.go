package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/architeacher/connectors/internal/config"
)

type ServiceCtx struct {
	deps            *dependencies
	overrides       []func(*config.ServiceConfig)
	shutdownChannel chan os.Signal
	serverErrors    chan error
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
	publicAddr      string
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
		serverErrors:    make(chan error, 2),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run builds the service, serves until a termination signal or a server
// failure, and shuts down gracefully.
func (c *ServiceCtx) Run() error {
	if err := c.build(); err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	if err := c.startService(); err != nil {
		c.shutdown()

		return err
	}

	c.shutdownHook()

	var serveErr error

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case <-c.shutdownChannel:
	case serveErr = <-c.serverErrors:
		c.deps.infra.logger.Error().Err(serveErr).Msg("http server failed")
	}

	c.shutdown()

	return serveErr
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(defaultOptions(c.serverCtx, c.overrides...)...)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	listener, err := net.Listen("tcp", c.deps.infra.publicHttpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.deps.infra.publicHttpServer.Addr, err)
	}

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Strs("nodes", c.deps.nodes.catalog.Names()).
		Msg("starting the http server")

	c.publicAddr = listener.Addr().String()

	go c.serve("public", c.deps.infra.publicHttpServer, listener)

	if err := c.startAdminServer(); err != nil {
		return err
	}

	if c.serverReady != nil {
		close(c.serverReady)
	}

	return nil
}

func (c *ServiceCtx) startAdminServer() error {
	server := c.deps.infra.adminHttpServer
	if server == nil {
		return nil
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on admin server %s: %w", server.Addr, err)
	}

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Msg("starting the admin http server")

	go c.serve("admin", server, listener)

	return nil
}

func (c *ServiceCtx) serve(name string, server *http.Server, listener net.Listener) {
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		c.serverErrors <- fmt.Errorf("%s http server: %w", name, err)
	}
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

// Stop asks a running service to shut down.
func (c *ServiceCtx) Stop() {
	if c.serverStopFunc != nil {
		c.serverStopFunc()
	}
}

func (c *ServiceCtx) shutdown() {
	signal.Stop(c.shutdownChannel)

	c.deps.infra.logger.Info().Msg("shutting down service...")

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.PublicHTTPServer.ShutdownTimeout)
	defer cancel()

	c.cleanup(shutdownCtx)

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		c.deps.infra.logger.Error().Msg("graceful shutdown timed out")
	}

	c.deps.infra.logger.Info().Msg("service shutdown complete")
}

// WaitForServer blocks until the http servers are listening.
// If you want to be notified when the server is running,
// make sure you instantiate your server with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

// PublicAddr is the address the public server listens on, known once
// WaitForServer returns.
func (c *ServiceCtx) PublicAddr() string {
	return c.publicAddr
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.infra.logger.Info().Msg("cleaning up resources...")

	c.deps.cleanup(shutdownCtx)

	c.deps.infra.logger.Info().Msg("cleanup completed")
}
