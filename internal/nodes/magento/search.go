package magento

import (
	"context"
	"net/http"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/paging"
	"github.com/architeacher/connectors/internal/domain/search"
	"github.com/architeacher/connectors/internal/nodes"
)

const (
	// allItemsPageSize is the page size used when every match is requested.
	allItemsPageSize = 100

	defaultLimit = 50
)

// searchItems runs a search against path. With returnAll it walks the pages
// until total_count records are collected; otherwise one page of limit
// records is fetched.
func searchItems(ctx context.Context, api nodes.API, path string, params model.Params) ([]model.Item, error) {
	query, err := search.FromParams(params)
	if err != nil {
		return nil, err
	}

	if returnAll, _ := params.Bool("returnAll"); returnAll {
		query = query.WithPageSize(allItemsPageSize)

		result, err := paging.CollectByTotal(ctx, func(ctx context.Context, page int) (paging.Page, error) {
			return fetchPage(ctx, api, path, query.WithCurrentPage(page))
		})
		if err != nil {
			return nil, err
		}

		return result.Items, nil
	}

	limit := params.IntOr("limit", defaultLimit)

	page, err := fetchPage(ctx, api, path, query.WithPageSize(limit))
	if err != nil {
		return nil, err
	}

	return paging.Limit(page.Items, limit), nil
}

func fetchPage(ctx context.Context, api nodes.API, path string, query search.Query) (paging.Page, error) {
	body, err := api.Do(ctx, nodes.Request{Method: http.MethodGet, Path: path, Query: query.Values()})
	if err != nil {
		return paging.Page{}, err
	}

	response := nodes.Object(body)
	total, _ := response.Int("total_count")

	return paging.Page{
		Items: nodes.Flatten(response["items"]),
		Total: total,
	}, nil
}
