// Package mocks holds fakes of the ports interfaces for handler and adapter
// tests.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
)

// FakeCredentialStore serves a fixed set of credentials.
type FakeCredentialStore struct {
	mu          sync.Mutex
	credentials map[string]model.Credential
	calls       []string
}

var _ ports.CredentialStore = (*FakeCredentialStore)(nil)

func NewFakeCredentialStore(credentials ...model.Credential) *FakeCredentialStore {
	store := &FakeCredentialStore{credentials: make(map[string]model.Credential, len(credentials))}
	for _, credential := range credentials {
		store.credentials[credential.Name] = credential
	}

	return store
}

func (f *FakeCredentialStore) Get(_ context.Context, name string) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name)

	credential, ok := f.credentials[name]
	if !ok {
		return model.Credential{}, fmt.Errorf("%w: %s", model.ErrCredentialNotFound, name)
	}

	return credential, nil
}

func (f *FakeCredentialStore) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}
