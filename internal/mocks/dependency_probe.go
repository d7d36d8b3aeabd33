package mocks

import (
	"context"
	"sync/atomic"

	"github.com/architeacher/connectors/internal/ports"
)

type FakeDependencyProbe struct {
	name    string
	healthy atomic.Bool
}

var _ ports.DependencyProbe = (*FakeDependencyProbe)(nil)

func NewFakeDependencyProbe(name string, healthy bool) *FakeDependencyProbe {
	probe := &FakeDependencyProbe{name: name}
	probe.healthy.Store(healthy)

	return probe
}

func (f *FakeDependencyProbe) Name() string {
	return f.name
}

func (f *FakeDependencyProbe) IsHealthy(context.Context) bool {
	return f.healthy.Load()
}

func (f *FakeDependencyProbe) SetHealthy(healthy bool) {
	f.healthy.Store(healthy)
}
