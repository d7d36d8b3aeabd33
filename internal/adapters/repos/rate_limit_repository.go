package repos

import (
	"context"
	"time"

	"github.com/throttled/throttled/v2"

	"github.com/architeacher/connectors/internal/infrastructure"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimitStore implements throttled.GCRAStoreCtx on KeyDB so that limits
// hold across replicas.
type RateLimitStore struct {
	client *infrastructure.KeydbClient
	prefix string
}

var _ throttled.GCRAStoreCtx = (*RateLimitStore)(nil)

func NewRateLimitStore(client *infrastructure.KeydbClient) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: rateLimitKeyPrefix,
	}
}

// GetWithTime returns -1 for unknown keys, as throttled expects.
func (s *RateLimitStore) GetWithTime(ctx context.Context, key string) (int64, time.Time, error) {
	now := time.Now()

	value, found, err := s.client.GetInt64(ctx, s.prefix+key)
	if err != nil {
		return 0, now, err
	}

	if !found {
		return -1, now, nil
	}

	return value, now, nil
}

func (s *RateLimitStore) SetIfNotExistsWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return s.client.SetInt64NX(ctx, s.prefix+key, value, ttl)
}

func (s *RateLimitStore) CompareAndSwapWithTTL(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	return s.client.CompareAndSwapInt64(ctx, s.prefix+key, old, new, ttl)
}
