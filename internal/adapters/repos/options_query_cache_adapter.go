package repos

import (
	"context"
	"time"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases/queries"
)

// LoadOptionsCacheAdapter adapts OptionsCache for LoadOptionsQuery.
type LoadOptionsCacheAdapter struct {
	cache ports.OptionsCache
}

func NewLoadOptionsCacheAdapter(cache ports.OptionsCache) *LoadOptionsCacheAdapter {
	return &LoadOptionsCacheAdapter{cache: cache}
}

func (a *LoadOptionsCacheAdapter) Get(ctx context.Context, query queries.LoadOptionsQuery) ([]model.Option, bool, error) {
	result, err := a.cache.GetOptions(ctx, optionsKey(query))
	if err != nil {
		return nil, false, err
	}

	return result.Data, result.Hit, nil
}

func (a *LoadOptionsCacheAdapter) Set(ctx context.Context, query queries.LoadOptionsQuery, result []model.Option, ttl time.Duration) error {
	return a.cache.SetOptions(ctx, optionsKey(query), result, ttl)
}

func optionsKey(query queries.LoadOptionsQuery) ports.OptionsKey {
	return ports.OptionsKey{
		Node:       query.Node,
		Method:     query.Method,
		Credential: query.Credential,
		Params:     query.Params,
	}
}
