// Package nodestest provides a scripted stand-in for a node's remote API.
package nodestest

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/nodes"
)

// Responder answers one request. The n argument counts calls from zero.
type Responder func(n int, req nodes.Request) (any, error)

// API records every request and answers with its Responder.
type API struct {
	mu        sync.Mutex
	requests  []nodes.Request
	responder Responder
}

func NewAPI(responder Responder) *API {
	return &API{responder: responder}
}

// Returning answers every request with body.
func Returning(body any) *API {
	return NewAPI(func(int, nodes.Request) (any, error) {
		return body, nil
	})
}

func (a *API) Do(_ context.Context, req nodes.Request) (any, error) {
	a.mu.Lock()
	n := len(a.requests)
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	if a.responder == nil {
		return nil, nil
	}

	return a.responder(n, req)
}

func (a *API) Requests() []nodes.Request {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]nodes.Request(nil), a.requests...)
}

// Body returns the JSON encoding of the i-th request body.
func (a *API) Body(t *testing.T, i int) string {
	t.Helper()

	requests := a.Requests()
	require.Greater(t, len(requests), i, "request %d was not sent", i)

	encoded, err := json.Marshal(requests[i].Body)
	require.NoError(t, err)

	return string(encoded)
}

// Decode parses text the way the REST client decodes responses.
func Decode(t *testing.T, text string) any {
	t.Helper()

	decoder := json.NewDecoder(bytes.NewBufferString(text))
	decoder.UseNumber()

	var value any
	require.NoError(t, decoder.Decode(&value))

	return value
}

// Params parses a JSON object into raw node parameters.
func Params(t *testing.T, text string) map[string]any {
	t.Helper()

	object, ok := Decode(t, text).(map[string]any)
	require.True(t, ok, "not a JSON object: %s", text)

	return object
}
