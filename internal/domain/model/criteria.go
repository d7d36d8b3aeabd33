package model

import "strings"

type (
	ConditionType string
	SortDirection string
)

const (
	ConditionEq      ConditionType = "eq"
	ConditionGt      ConditionType = "gt"
	ConditionGteq    ConditionType = "gteq"
	ConditionIn      ConditionType = "in"
	ConditionLike    ConditionType = "like"
	ConditionLt      ConditionType = "lt"
	ConditionLte     ConditionType = "lte"
	ConditionMoreq   ConditionType = "moreq"
	ConditionNeq     ConditionType = "neq"
	ConditionNin     ConditionType = "nin"
	ConditionNotNull ConditionType = "notnull"
	ConditionNull    ConditionType = "null"

	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

var conditionTypes = map[ConditionType]struct{}{
	ConditionEq: {}, ConditionGt: {}, ConditionGteq: {}, ConditionIn: {},
	ConditionLike: {}, ConditionLt: {}, ConditionLte: {}, ConditionMoreq: {},
	ConditionNeq: {}, ConditionNin: {}, ConditionNotNull: {}, ConditionNull: {},
}

func (c ConditionType) Valid() bool {
	_, ok := conditionTypes[c]

	return ok
}

// TakesValue reports whether the condition compares against a value.
func (c ConditionType) TakesValue() bool {
	return c != ConditionNull && c != ConditionNotNull
}

// ParseSortDirection accepts any casing; anything but "desc" sorts ascending.
func ParseSortDirection(value string) SortDirection {
	if strings.EqualFold(value, string(SortDesc)) {
		return SortDesc
	}

	return SortAsc
}

type (
	Filter struct {
		Field         string        `json:"field"`
		ConditionType ConditionType `json:"condition_type"`
		Value         any           `json:"value,omitempty"`
	}

	// FilterGroup is OR-combined internally; groups are AND-combined.
	FilterGroup struct {
		Filters []Filter `json:"filters"`
	}

	SortOrder struct {
		Field     string        `json:"field"`
		Direction SortDirection `json:"direction"`
	}

	// SearchCriteria carries filters and sorting only. Paging is applied
	// per request by the search query.
	SearchCriteria struct {
		filterGroups []FilterGroup
		sortOrders   []SortOrder
	}
)

func (c SearchCriteria) FilterGroups() []FilterGroup { return c.filterGroups }
func (c SearchCriteria) SortOrders() []SortOrder     { return c.sortOrders }

// Document renders the criteria in the nested shape the search endpoints expect.
func (c SearchCriteria) Document() map[string]any {
	groups := make([]any, 0, len(c.filterGroups))
	for _, group := range c.filterGroups {
		filters := make([]any, 0, len(group.Filters))
		for _, filter := range group.Filters {
			entry := map[string]any{
				"field":          filter.Field,
				"condition_type": string(filter.ConditionType),
			}

			if filter.ConditionType.TakesValue() {
				entry["value"] = filter.Value
			}

			filters = append(filters, entry)
		}

		groups = append(groups, map[string]any{"filters": filters})
	}

	criteria := map[string]any{"filter_groups": groups}

	if len(c.sortOrders) > 0 {
		orders := make([]any, 0, len(c.sortOrders))
		for _, order := range c.sortOrders {
			orders = append(orders, map[string]any{
				"field":     order.Field,
				"direction": string(order.Direction),
			})
		}

		criteria["sort_orders"] = orders
	}

	return map[string]any{"search_criteria": criteria}
}
