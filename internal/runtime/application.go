package runtime

import (
	"context"
	"io"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/usecases"
)

// Application is the service core without its HTTP servers, for one-shot
// commands.
type Application struct {
	*usecases.WebApplication

	deps *dependencies
}

// NewApplication builds the application from the environment configuration
// and the given overrides. Logs go to logOutput.
func NewApplication(ctx context.Context, logOutput io.Writer, overrides ...func(*config.ServiceConfig)) (*Application, error) {
	opts := append([]DependencyOption{WithLogOutput(logOutput)}, applicationOptions(ctx, overrides...)...)

	deps, err := initializeDependencies(opts...)
	if err != nil {
		return nil, err
	}

	return &Application{WebApplication: deps.apps.webApp, deps: deps}, nil
}

// Close releases the cache connection and flushes telemetry.
func (a *Application) Close(ctx context.Context) {
	a.deps.cleanup(ctx)
}
