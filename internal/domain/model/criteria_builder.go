package model

// CriteriaBuilder assembles SearchCriteria. Either the OR set or the AND set
// is used, never both: OR wins when both are non-empty.
type CriteriaBuilder struct {
	or         []Filter
	and        []Filter
	sortOrders []SortOrder
}

func NewCriteria() *CriteriaBuilder {
	return &CriteriaBuilder{}
}

func (b *CriteriaBuilder) Where(field string, condition ConditionType, value any) *CriteriaBuilder {
	return b.And(Filter{Field: field, ConditionType: condition, Value: value})
}

func (b *CriteriaBuilder) Or(filters ...Filter) *CriteriaBuilder {
	b.or = append(b.or, filters...)

	return b
}

func (b *CriteriaBuilder) And(filters ...Filter) *CriteriaBuilder {
	b.and = append(b.and, filters...)

	return b
}

func (b *CriteriaBuilder) Sort(orders ...SortOrder) *CriteriaBuilder {
	b.sortOrders = append(b.sortOrders, orders...)

	return b
}

// Build fails with ErrNoFilterSupplied when neither set holds a filter.
func (b *CriteriaBuilder) Build() (SearchCriteria, error) {
	var groups []FilterGroup

	switch {
	case len(b.or) > 0:
		groups = []FilterGroup{{Filters: append([]Filter(nil), b.or...)}}
	case len(b.and) > 0:
		groups = make([]FilterGroup, 0, len(b.and))
		for _, filter := range b.and {
			groups = append(groups, FilterGroup{Filters: []Filter{filter}})
		}
	default:
		return SearchCriteria{}, ErrNoFilterSupplied
	}

	return SearchCriteria{
		filterGroups: groups,
		sortOrders:   append([]SortOrder(nil), b.sortOrders...),
	}, nil
}
