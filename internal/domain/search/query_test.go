package search_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/domain/search"
)

func filterGroups(t *testing.T, query search.Query) []any {
	t.Helper()

	criteria, ok := query.Document()["search_criteria"].(map[string]any)
	require.True(t, ok)

	groups, ok := criteria["filter_groups"].([]any)
	require.True(t, ok)

	return groups
}

func TestFromFilters(t *testing.T) {
	t.Parallel()

	email := model.Filter{Field: "email", ConditionType: model.ConditionEq, Value: "a@b.com"}
	name := model.Filter{Field: "firstname", ConditionType: model.ConditionLike, Value: "A%"}
	group := model.Filter{Field: "group_id", ConditionType: model.ConditionGt, Value: "1"}

	cases := []struct {
		name           string
		and            []model.Filter
		or             []model.Filter
		expectedGroups []int
		expectedErr    error
	}{
		{
			name:           "or filters share one group",
			or:             []model.Filter{email, name, group},
			expectedGroups: []int{3},
		},
		{
			name:           "and filters get one group each",
			and:            []model.Filter{email, name, group},
			expectedGroups: []int{1, 1, 1},
		},
		{
			name:           "or wins when both are supplied",
			and:            []model.Filter{email, name},
			or:             []model.Filter{group},
			expectedGroups: []int{1},
		},
		{
			name:        "no filters",
			expectedErr: model.ErrNoFilterSupplied,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			query, err := search.FromFilters(tc.and, tc.or, nil)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}

			require.NoError(t, err)

			groups := filterGroups(t, query)
			require.Len(t, groups, len(tc.expectedGroups))

			for index, size := range tc.expectedGroups {
				filters := groups[index].(map[string]any)["filters"].([]any)
				require.Len(t, filters, size)
			}
		})
	}
}

func TestFromJSON(t *testing.T) {
	t.Parallel()

	t.Run("round trips verbatim", func(t *testing.T) {
		t.Parallel()

		raw := `{"search_criteria":{"page_size":10}}`

		query, err := search.FromJSON(raw)
		require.NoError(t, err)

		var expected map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &expected))
		require.Equal(t, expected, query.Document())
	})

	invalid := []string{`{not json`, ``, `null`, `[1,2]`, `"text"`, `{"search_criteria": 5}`}

	for _, raw := range invalid {
		t.Run("rejects "+raw, func(t *testing.T) {
			t.Parallel()

			_, err := search.FromJSON(raw)
			require.ErrorIs(t, err, model.ErrInvalidFilterJSON)
		})
	}
}

func TestQuery_WithPageSizeReturnsCopy(t *testing.T) {
	t.Parallel()

	original, err := search.FromJSON(`{"search_criteria":{"page_size":10}}`)
	require.NoError(t, err)

	resized := original.WithPageSize(100).WithCurrentPage(3)

	size, ok := original.PageSize()
	require.True(t, ok)
	require.Equal(t, 10, size)

	size, ok = resized.PageSize()
	require.True(t, ok)
	require.Equal(t, 100, size)
	require.Equal(t, "3", resized.Values().Get("search_criteria[current_page]"))

	bare, err := search.FromJSON(`{}`)
	require.NoError(t, err)
	require.Equal(t, "5", bare.WithPageSize(5).Values().Get("search_criteria[page_size]"))
}

func TestQuery_Values(t *testing.T) {
	t.Parallel()

	query, err := search.FromFilters(
		[]model.Filter{
			{Field: "email", ConditionType: model.ConditionEq, Value: "a@b.com"},
			{Field: "dob", ConditionType: model.ConditionNotNull},
		},
		nil,
		[]model.SortOrder{{Field: "created_at", Direction: model.SortDesc}},
	)
	require.NoError(t, err)

	values := query.WithPageSize(20).Values()

	expected := map[string]string{
		"search_criteria[filter_groups][0][filters][0][field]":          "email",
		"search_criteria[filter_groups][0][filters][0][condition_type]": "eq",
		"search_criteria[filter_groups][0][filters][0][value]":          "a@b.com",
		"search_criteria[filter_groups][1][filters][0][field]":          "dob",
		"search_criteria[filter_groups][1][filters][0][condition_type]": "notnull",
		"search_criteria[sort_orders][0][field]":                        "created_at",
		"search_criteria[sort_orders][0][direction]":                    "DESC",
		"search_criteria[page_size]":                                    "20",
	}

	require.Len(t, values, len(expected))

	for key, value := range expected {
		require.Equal(t, value, values.Get(key), key)
	}
}

func TestFromParams(t *testing.T) {
	t.Parallel()

	t.Run("structured filters with sort", func(t *testing.T) {
		t.Parallel()

		query, err := search.FromParams(model.Params{
			"jsonParameters": false,
			"filters": map[string]any{
				"or": []any{
					map[string]any{"field": "email", "condition_type": "like", "value": "%@b.com"},
					map[string]any{"field": "lastname", "condition_type": "null", "value": "dropped"},
				},
			},
			"options": map[string]any{
				"sort": map[string]any{
					"sort": []any{map[string]any{"field": "email", "direction": "asc"}},
				},
			},
		})
		require.NoError(t, err)

		values := query.Values()
		require.Equal(t, "%@b.com", values.Get("search_criteria[filter_groups][0][filters][0][value]"))
		require.False(t, values.Has("search_criteria[filter_groups][0][filters][1][value]"))
		require.Equal(t, "ASC", values.Get("search_criteria[sort_orders][0][direction]"))
	})

	t.Run("missing filters", func(t *testing.T) {
		t.Parallel()

		_, err := search.FromParams(model.Params{"jsonParameters": false, "options": map[string]any{}})
		require.ErrorIs(t, err, model.ErrNoFilterSupplied)
	})

	t.Run("json override", func(t *testing.T) {
		t.Parallel()

		query, err := search.FromParams(model.Params{
			"jsonParameters": true,
			"filterJson":     `{"search_criteria":{"filter_groups":[{"filters":[{"field":"sku","value":"x"}]}]}}`,
		})
		require.NoError(t, err)
		require.Equal(t, "sku", query.Values().Get("search_criteria[filter_groups][0][filters][0][field]"))
	})

	t.Run("invalid json override", func(t *testing.T) {
		t.Parallel()

		_, err := search.FromParams(model.Params{"jsonParameters": true, "filterJson": "{not json"})
		require.ErrorIs(t, err, model.ErrInvalidFilterJSON)
	})
}
