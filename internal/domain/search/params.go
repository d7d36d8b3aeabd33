package search

import (
	"github.com/architeacher/connectors/internal/domain/model"
)

const (
	paramJSONParameters = "jsonParameters"
	paramFilterJSON     = "filterJson"
	paramFilters        = "filters"
	paramOptions        = "options"
	paramSort           = "sort"

	groupOr  = "or"
	groupAnd = "and"
)

// FromParams translates resolved search form values: the raw JSON override
// when jsonParameters is set, the structured filters and sort otherwise.
func FromParams(params model.Params) (Query, error) {
	if useJSON, _ := params.Bool(paramJSONParameters); useJSON {
		text, _ := params.String(paramFilterJSON)

		return FromJSON(text)
	}

	return FromFilters(
		filters(params.Group(paramFilters, groupAnd)),
		filters(params.Group(paramFilters, groupOr)),
		sortOrders(params.Collection(paramOptions).Group(paramSort, paramSort)),
	)
}

func filters(entries []model.Params) []model.Filter {
	result := make([]model.Filter, 0, len(entries))

	for _, entry := range entries {
		field, _ := entry.String("field")
		condition := model.ConditionType(entry.StringOr("condition_type", string(model.ConditionEq)))

		filter := model.Filter{Field: field, ConditionType: condition}
		if condition.TakesValue() {
			filter.Value = entry["value"]
		}

		result = append(result, filter)
	}

	return result
}

func sortOrders(entries []model.Params) []model.SortOrder {
	result := make([]model.SortOrder, 0, len(entries))

	for _, entry := range entries {
		field, _ := entry.String("field")
		if field == "" {
			continue
		}

		direction, _ := entry.String("direction")
		result = append(result, model.SortOrder{Field: field, Direction: model.ParseSortDirection(direction)})
	}

	return result
}
