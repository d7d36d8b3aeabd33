package runtime

import (
	"os"

	"github.com/architeacher/connectors/internal/config"
)

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithConfigOverrides adjusts the environment configuration before the
// dependencies are built.
func WithConfigOverrides(overrides ...func(*config.ServiceConfig)) ServiceOption {
	return func(s *ServiceCtx) {
		s.overrides = append(s.overrides, overrides...)
	}
}
