package ports

import (
	"context"
	"time"

	"github.com/architeacher/connectors/internal/domain/model"
)

type (
	// CacheResult holds the result of a cache lookup along with metadata.
	CacheResult[T any] struct {
		Data T
		Hit  bool
		Key  string
		TTL  time.Duration
	}

	// OptionsKey identifies one dropdown listing: the same method may return
	// different entries per credential and per form values.
	OptionsKey struct {
		Node       string
		Method     string
		Credential string
		Params     model.Params
	}

	OptionsCache interface {
		// GetOptions returns a result with Hit=false when nothing is cached.
		GetOptions(ctx context.Context, key OptionsKey) (*CacheResult[[]model.Option], error)
		SetOptions(ctx context.Context, key OptionsKey, options []model.Option, ttl time.Duration) error
		// InvalidateNode drops every cached listing of a node.
		InvalidateNode(ctx context.Context, node string) error
	}

	// CachedResponse is a stored execute response. Fingerprint identifies
	// the request body it answered.
	CachedResponse struct {
		StatusCode  int               `json:"status_code"`
		Headers     map[string]string `json:"headers"`
		Body        []byte            `json:"body"`
		Fingerprint string            `json:"fingerprint"`
		CreatedAt   time.Time         `json:"created_at"`
	}

	// IdempotencyCache stores node execution responses by idempotency key.
	IdempotencyCache interface {
		// Get returns nil, nil if the key does not exist.
		Get(ctx context.Context, key string) (*CachedResponse, error)
		Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error
		// SetLock returns false when another request holds the key.
		SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
		ReleaseLock(ctx context.Context, key string) error
		IsHealthy(ctx context.Context) bool
	}
)
