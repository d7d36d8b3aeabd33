package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
)

// FakeOptionsCache keeps listings in memory and records invalidations.
type FakeOptionsCache struct {
	mu          sync.Mutex
	entries     map[string][]model.Option
	invalidated []string
	GetErr      error
	// Invalidations receives the node of every InvalidateNode call when set.
	Invalidations chan string
}

var _ ports.OptionsCache = (*FakeOptionsCache)(nil)

func NewFakeOptionsCache() *FakeOptionsCache {
	return &FakeOptionsCache{entries: make(map[string][]model.Option)}
}

func (f *FakeOptionsCache) GetOptions(_ context.Context, key ports.OptionsKey) (*ports.CacheResult[[]model.Option], error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := fakeKey(key)
	options, ok := f.entries[id]

	return &ports.CacheResult[[]model.Option]{Data: options, Hit: ok, Key: id}, nil
}

func (f *FakeOptionsCache) SetOptions(_ context.Context, key ports.OptionsKey, options []model.Option, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[fakeKey(key)] = options

	return nil
}

func (f *FakeOptionsCache) InvalidateNode(_ context.Context, node string) error {
	f.mu.Lock()
	f.invalidated = append(f.invalidated, node)
	f.mu.Unlock()

	if f.Invalidations != nil {
		f.Invalidations <- node
	}

	return nil
}

func (f *FakeOptionsCache) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.entries)
}

func fakeKey(key ports.OptionsKey) string {
	params, _ := json.Marshal(key.Params)

	return fmt.Sprintf("%s/%s/%s/%s", key.Node, key.Method, key.Credential, params)
}
