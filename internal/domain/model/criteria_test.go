package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/connectors/internal/domain/model"
)

func TestCriteriaBuilder_OrFiltersShareOneGroup(t *testing.T) {
	t.Parallel()

	criteria, err := model.NewCriteria().
		Or(
			model.Filter{Field: "email", ConditionType: model.ConditionEq, Value: "a@b.com"},
			model.Filter{Field: "firstname", ConditionType: model.ConditionLike, Value: "A%"},
		).
		Build()

	require.NoError(t, err)
	require.Len(t, criteria.FilterGroups(), 1)
	require.Len(t, criteria.FilterGroups()[0].Filters, 2)
}

func TestCriteriaBuilder_AndFiltersGetOneGroupEach(t *testing.T) {
	t.Parallel()

	criteria, err := model.NewCriteria().
		Where("email", model.ConditionEq, "a@b.com").
		Where("group_id", model.ConditionGt, 1).
		Where("website_id", model.ConditionNotNull, nil).
		Build()

	require.NoError(t, err)
	require.Len(t, criteria.FilterGroups(), 3)

	for _, group := range criteria.FilterGroups() {
		require.Len(t, group.Filters, 1)
	}
}

func TestCriteriaBuilder_OrWinsOverAnd(t *testing.T) {
	t.Parallel()

	criteria, err := model.NewCriteria().
		Where("email", model.ConditionEq, "a@b.com").
		Or(model.Filter{Field: "sku", ConditionType: model.ConditionEq, Value: "x"}).
		Build()

	require.NoError(t, err)
	require.Len(t, criteria.FilterGroups(), 1)
	require.Equal(t, "sku", criteria.FilterGroups()[0].Filters[0].Field)
}

func TestCriteriaBuilder_NoFilters(t *testing.T) {
	t.Parallel()

	_, err := model.NewCriteria().Sort(model.SortOrder{Field: "email", Direction: model.SortDesc}).Build()

	require.ErrorIs(t, err, model.ErrNoFilterSupplied)
}

func TestCriteriaBuilder_SortKeepsOrder(t *testing.T) {
	t.Parallel()

	criteria, err := model.NewCriteria().
		Where("sku", model.ConditionLike, "%shirt%").
		Sort(model.SortOrder{Field: "created_at", Direction: model.SortDesc}).
		Sort(model.SortOrder{Field: "name", Direction: model.SortAsc}).
		Build()

	require.NoError(t, err)
	require.Equal(t, []model.SortOrder{
		{Field: "created_at", Direction: model.SortDesc},
		{Field: "name", Direction: model.SortAsc},
	}, criteria.SortOrders())
}

func TestSearchCriteria_Document(t *testing.T) {
	t.Parallel()

	criteria, err := model.NewCriteria().
		Where("email", model.ConditionEq, "a@b.com").
		Where("dob", model.ConditionNull, "ignored").
		Sort(model.SortOrder{Field: "email", Direction: model.SortDesc}).
		Build()
	require.NoError(t, err)

	expected := map[string]any{
		"search_criteria": map[string]any{
			"filter_groups": []any{
				map[string]any{"filters": []any{
					map[string]any{"field": "email", "condition_type": "eq", "value": "a@b.com"},
				}},
				map[string]any{"filters": []any{
					map[string]any{"field": "dob", "condition_type": "null"},
				}},
			},
			"sort_orders": []any{
				map[string]any{"field": "email", "direction": "DESC"},
			},
		},
	}

	require.Equal(t, expected, criteria.Document())
}

func TestConditionType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		condition  model.ConditionType
		valid      bool
		takesValue bool
	}{
		{condition: model.ConditionEq, valid: true, takesValue: true},
		{condition: model.ConditionNin, valid: true, takesValue: true},
		{condition: model.ConditionNull, valid: true, takesValue: false},
		{condition: model.ConditionNotNull, valid: true, takesValue: false},
		{condition: "between", valid: false, takesValue: true},
	}

	for _, tc := range cases {
		t.Run(string(tc.condition), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.valid, tc.condition.Valid())
			require.Equal(t, tc.takesValue, tc.condition.TakesValue())
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	t.Parallel()

	require.Equal(t, model.SortDesc, model.ParseSortDirection("DESC"))
	require.Equal(t, model.SortDesc, model.ParseSortDirection("desc"))
	require.Equal(t, model.SortAsc, model.ParseSortDirection("asc"))
	require.Equal(t, model.SortAsc, model.ParseSortDirection(""))
}
