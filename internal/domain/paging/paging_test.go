package paging_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/paging"
)

// server pages through total items, perPage at a time.
type server struct {
	total    int
	perPage  int
	requests []int
}

func (s *server) fetch(_ context.Context, page int) (paging.Page, error) {
	s.requests = append(s.requests, page)

	start := (page - 1) * s.perPage
	end := min(start+s.perPage, s.total)

	items := make([]model.Item, 0, s.perPage)
	for index := start; index < end; index++ {
		items = append(items, model.Item{"id": index})
	}

	return paging.Page{Items: items, Total: s.total}, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func TestCollectByTotal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total   int
		perPage int
	}{
		{total: 0, perPage: 10},
		{total: 1, perPage: 10},
		{total: 10, perPage: 10},
		{total: 11, perPage: 10},
		{total: 250, perPage: 100},
		{total: 7, perPage: 1},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("N=%d P=%d", tc.total, tc.perPage), func(t *testing.T) {
			t.Parallel()

			upstream := &server{total: tc.total, perPage: tc.perPage}

			result, err := paging.CollectByTotal(t.Context(), upstream.fetch)
			require.NoError(t, err)

			expectedRequests := max(1, ceilDiv(tc.total, tc.perPage))

			require.Len(t, result.Items, tc.total)
			require.Equal(t, expectedRequests, result.Requests)
			require.Len(t, upstream.requests, expectedRequests)

			for index, page := range upstream.requests {
				require.Equal(t, index+1, page)
			}

			if tc.total > 0 {
				require.Equal(t, tc.total-1, result.Items[len(result.Items)-1]["id"])
			}
		})
	}
}

func TestCollectByTotal_StopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(context.Context, int) (paging.Page, error) {
		calls++

		return paging.Page{Total: 50}, nil
	}

	result, err := paging.CollectByTotal(t.Context(), fetch)
	require.NoError(t, err)
	require.Empty(t, result.Items)
	require.Equal(t, 1, calls)
}

func TestCollectByTotal_PropagatesErrors(t *testing.T) {
	t.Parallel()

	errUpstream := errors.New("upstream failed")

	fetch := func(_ context.Context, page int) (paging.Page, error) {
		if page == 2 {
			return paging.Page{}, errUpstream
		}

		return paging.Page{Items: []model.Item{{"id": 1}}, Total: 3}, nil
	}

	_, err := paging.CollectByTotal(t.Context(), fetch)
	require.ErrorIs(t, err, errUpstream)
	require.ErrorContains(t, err, "page 2")
}

func TestCollectByTotal_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	fetch := func(context.Context, int) (paging.Page, error) {
		cancel()

		return paging.Page{Items: []model.Item{{"id": 1}}, Total: 100}, nil
	}

	_, err := paging.CollectByTotal(ctx, fetch)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCollectUntilShort(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total            int
		perPage          int
		expectedRequests int
	}{
		{total: 0, perPage: 100, expectedRequests: 1},
		{total: 99, perPage: 100, expectedRequests: 1},
		{total: 100, perPage: 100, expectedRequests: 2},
		{total: 230, perPage: 100, expectedRequests: 3},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("N=%d P=%d", tc.total, tc.perPage), func(t *testing.T) {
			t.Parallel()

			upstream := &server{total: tc.total, perPage: tc.perPage}

			result, err := paging.CollectUntilShort(t.Context(), tc.perPage, upstream.fetch)
			require.NoError(t, err)
			require.Len(t, result.Items, tc.total)
			require.Equal(t, tc.expectedRequests, result.Requests)
		})
	}

	_, err := paging.CollectUntilShort(t.Context(), 0, (&server{}).fetch)
	require.Error(t, err)
}

func TestLimit(t *testing.T) {
	t.Parallel()

	items := []model.Item{{"id": 1}, {"id": 2}, {"id": 3}}

	require.Len(t, paging.Limit(items, 2), 2)
	require.Len(t, paging.Limit(items, 5), 3)
	require.Empty(t, paging.Limit(items, 0))

	limited := paging.Limit(items, 2)
	limited = append(limited, model.Item{"id": 9})
	require.Equal(t, 3, items[2]["id"])
	require.Len(t, limited, 3)
}
