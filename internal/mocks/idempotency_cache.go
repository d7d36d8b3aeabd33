package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/architeacher/connectors/internal/ports"
)

// FakeIdempotencyCache is an in-memory ports.IdempotencyCache. GetErr and
// LockErr simulate an unreachable store.
type FakeIdempotencyCache struct {
	mu        sync.Mutex
	responses map[string]*ports.CachedResponse
	locks     map[string]struct{}
	getCalls  int
	GetErr    error
	LockErr   error
}

var _ ports.IdempotencyCache = (*FakeIdempotencyCache)(nil)

func NewFakeIdempotencyCache() *FakeIdempotencyCache {
	return &FakeIdempotencyCache{
		responses: make(map[string]*ports.CachedResponse),
		locks:     make(map[string]struct{}),
	}
}

func (f *FakeIdempotencyCache) Get(_ context.Context, key string) (*ports.CachedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++

	if f.GetErr != nil {
		return nil, f.GetErr
	}

	return f.responses[key], nil
}

func (f *FakeIdempotencyCache) Set(_ context.Context, key string, response *ports.CachedResponse, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[key] = response

	return nil
}

func (f *FakeIdempotencyCache) SetLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.LockErr != nil {
		return false, f.LockErr
	}

	if _, held := f.locks[key]; held {
		return false, nil
	}

	f.locks[key] = struct{}{}

	return true, nil
}

func (f *FakeIdempotencyCache) ReleaseLock(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.locks, key)

	return nil
}

func (f *FakeIdempotencyCache) IsHealthy(context.Context) bool {
	return f.GetErr == nil
}

func (f *FakeIdempotencyCache) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.getCalls
}

// Stored returns the responses recorded so far.
func (f *FakeIdempotencyCache) Stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.responses)
}
