package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/pkg/logger"
)

const healthCheckTimeout = 3 * time.Second

// ErrCacheMiss is returned by Get for absent keys.
var ErrCacheMiss = redis.Nil

// KeydbClient is the KeyDB (Redis protocol) client shared by the options
// cache, the idempotency store and the rate limiter.
type KeydbClient struct {
	client *redis.Client
	logger logger.Logger
	config config.Cache
}

func NewKeyDBClient(cfg config.Cache, log logger.Logger) *KeydbClient {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           int(cfg.DB),
		PoolSize:     int(cfg.PoolSize),
		MinIdleConns: int(cfg.MinIdleConns),
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		MaxRetries:   int(cfg.MaxRetries),
	})

	return &KeydbClient{
		client: client,
		logger: log.Component("keydb"),
		config: cfg,
	}
}

func (c *KeydbClient) Name() string {
	return "keydb"
}

func (c *KeydbClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// WaitReady pings until the server answers, backing off exponentially from
// the configured ConnectBackoff for at most ConnectAttempts pings.
func (c *KeydbClient) WaitReady(ctx context.Context) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.ConnectBackoff
	expBackoff.MaxInterval = 8 * c.config.ConnectBackoff

	operation := func() (struct{}, error) {
		err := c.Ping(ctx)
		if err != nil {
			c.logger.Debug().Err(err).Str("address", c.config.Address).Msg("keydb not ready")
		}

		return struct{}{}, err
	}

	_, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithMaxTries(max(c.config.ConnectAttempts, 1)),
		backoff.WithBackOff(expBackoff),
	)
	if err != nil {
		return fmt.Errorf("keydb at %s not ready: %w", c.config.Address, err)
	}

	return nil
}

func (c *KeydbClient) Close() error {
	return c.client.Close()
}

// Get returns ErrCacheMiss when key does not exist.
func (c *KeydbClient) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()

	result, err := c.client.Get(ctx, key).Bytes()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Bool("hit", err == nil).
		Msg("keydb get operation")

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}

		c.logger.Error().Err(err).Str("key", key).Msg("keydb get operation failed")

		return nil, err
	}

	return result, nil
}

// Set stores value under key. A zero ttl uses the configured default expiry.
func (c *KeydbClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultExpiry
	}

	start := time.Now()
	err := c.client.Set(ctx, key, value, ttl).Err()

	c.logger.Debug().
		Str("key", key).
		Str("expiry", ttl.String()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Bool("success", err == nil).
		Msg("keydb set operation")

	return err
}

// Lock sets key only if it is absent and reports whether it did.
func (c *KeydbClient) Lock(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	acquired, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring lock: %w", err)
	}

	c.logger.Debug().Str("key", key).Bool("acquired", acquired).Msg("keydb setnx operation")

	return acquired, nil
}

func (c *KeydbClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

// DeleteMatching removes every key matching pattern and returns how many
// were removed.
func (c *KeydbClient) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scanning keys: %w", err)
		}

		if err := c.Delete(ctx, keys...); err != nil {
			return removed, fmt.Errorf("deleting keys: %w", err)
		}

		removed += len(keys)

		if next == 0 {
			return removed, nil
		}

		cursor = next
	}
}

func (c *KeydbClient) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return c.Ping(ctx) == nil
}

// TTL returns the remaining time-to-live of a key, zero when unknown.
func (c *KeydbClient) TTL(ctx context.Context, key string) time.Duration {
	result, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to get TTL")

		return 0
	}

	return result
}

// GetInt64 reports whether key exists and its integer value.
func (c *KeydbClient) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return val, true, nil
}

func (c *KeydbClient) SetInt64NX(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

var compareAndSwap = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false or tonumber(current) ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// CompareAndSwapInt64 replaces the value of key with new if it currently
// holds old.
func (c *KeydbClient) CompareAndSwapInt64(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	result, err := compareAndSwap.Run(ctx, c.client, []string{key}, old, new, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}
