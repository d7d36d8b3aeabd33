package paging

import (
	"context"
	"fmt"

	"github.com/architeacher/connectors/internal/domain/model"
)

const FirstPage = 1

type (
	// Page is one response of a paginated endpoint. Total is the item count
	// the server reports across all pages, when it reports one.
	Page struct {
		Items []model.Item
		Total int
	}

	// FetchFunc requests the page with the given 1-based number.
	FetchFunc func(ctx context.Context, page int) (Page, error)

	// Result is the outcome of a retrieval. It is never modified after return.
	Result struct {
		Items    []model.Item
		Requests int
	}
)

// CollectByTotal requests pages 1, 2, ... until the accumulated items reach
// the reported total or a page comes back empty. A total of zero stops after
// the first request.
func CollectByTotal(ctx context.Context, fetch FetchFunc) (Result, error) {
	var items []model.Item

	for page := FirstPage; ; page++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		current, err := fetch(ctx, page)
		if err != nil {
			return Result{}, fmt.Errorf("fetching page %d: %w", page, err)
		}

		items = append(items, current.Items...)

		if len(current.Items) == 0 || len(items) >= current.Total {
			return Result{Items: items, Requests: page}, nil
		}
	}
}

// CollectUntilShort is for endpoints that report no total: it stops after
// the first page holding fewer than perPage items.
func CollectUntilShort(ctx context.Context, perPage int, fetch FetchFunc) (Result, error) {
	if perPage <= 0 {
		return Result{}, fmt.Errorf("page size must be positive, got %d", perPage)
	}

	var items []model.Item

	for page := FirstPage; ; page++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		current, err := fetch(ctx, page)
		if err != nil {
			return Result{}, fmt.Errorf("fetching page %d: %w", page, err)
		}

		items = append(items, current.Items...)

		if len(current.Items) < perPage {
			return Result{Items: items, Requests: page}, nil
		}
	}
}

// Limit keeps at most limit items; a non-positive limit keeps none.
func Limit(items []model.Item, limit int) []model.Item {
	if limit <= 0 {
		return []model.Item{}
	}

	if len(items) > limit {
		return items[:limit:limit]
	}

	return items
}
