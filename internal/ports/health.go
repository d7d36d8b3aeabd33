package ports

import "context"

// DependencyProbe reports whether an external dependency is reachable.
type DependencyProbe interface {
	Name() string
	IsHealthy(ctx context.Context) bool
}
