package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/infrastructure"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/logger"
)

const (
	optionsCacheVersion = "v1"
	optionsKeyPrefix    = "options:" + optionsCacheVersion + ":"
)

// OptionsCacheRepository implements ports.OptionsCache on KeyDB.
type OptionsCacheRepository struct {
	client *infrastructure.KeydbClient
	logger logger.Logger
}

func NewOptionsCacheRepository(client *infrastructure.KeydbClient, log logger.Logger) *OptionsCacheRepository {
	return &OptionsCacheRepository{
		client: client,
		logger: log,
	}
}

func (r *OptionsCacheRepository) GetOptions(ctx context.Context, key ports.OptionsKey) (*ports.CacheResult[[]model.Option], error) {
	cacheKey, err := r.optionsKey(key)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, cacheKey)
	if err != nil {
		if errors.Is(err, infrastructure.ErrCacheMiss) {
			return &ports.CacheResult[[]model.Option]{Key: cacheKey}, nil
		}

		return nil, fmt.Errorf("getting cached options: %w", err)
	}

	var options []model.Option
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("unmarshalling cached options: %w", err)
	}

	return &ports.CacheResult[[]model.Option]{
		Data: options,
		Hit:  true,
		Key:  cacheKey,
		TTL:  r.client.TTL(ctx, cacheKey),
	}, nil
}

func (r *OptionsCacheRepository) SetOptions(ctx context.Context, key ports.OptionsKey, options []model.Option, ttl time.Duration) error {
	cacheKey, err := r.optionsKey(key)
	if err != nil {
		return err
	}

	if options == nil {
		options = []model.Option{}
	}

	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("marshalling options: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey, data, ttl); err != nil {
		return fmt.Errorf("setting cached options: %w", err)
	}

	return nil
}

func (r *OptionsCacheRepository) InvalidateNode(ctx context.Context, node string) error {
	removed, err := r.client.DeleteMatching(ctx, optionsKeyPrefix+node+":*")
	if err != nil {
		return fmt.Errorf("invalidating cached options of %s: %w", node, err)
	}

	r.logger.Debug().Str("node", node).Int("removed", removed).Msg("invalidated cached options")

	return nil
}

// optionsKey hashes the credential and the form values so that secrets
// never appear in key names. json.Marshal sorts map keys.
func (r *OptionsCacheRepository) optionsKey(key ports.OptionsKey) (string, error) {
	params, err := json.Marshal(key.Params)
	if err != nil {
		return "", fmt.Errorf("encoding options params: %w", err)
	}

	digest := xxhash.New()
	_, _ = digest.WriteString(key.Credential)
	_, _ = digest.WriteString("\x00")
	_, _ = digest.Write(params)

	return optionsKeyPrefix + key.Node + ":" + key.Method + ":" + strconv.FormatUint(digest.Sum64(), 16), nil
}
