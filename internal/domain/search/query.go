package search

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
)

const (
	keyCriteria    = "search_criteria"
	keyPageSize    = "page_size"
	keyCurrentPage = "current_page"
)

// Query is an immutable search-criteria document.
type Query struct {
	doc map[string]any
}

// FromFilters builds a query from structured filters. A non-empty or list
// yields one group holding all of them; otherwise each and filter gets its
// own group. Both empty fails with model.ErrNoFilterSupplied.
func FromFilters(and, or []model.Filter, sort []model.SortOrder) (Query, error) {
	criteria, err := model.NewCriteria().
		Or(or...).
		And(and...).
		Sort(sort...).
		Build()
	if err != nil {
		return Query{}, err
	}

	return FromCriteria(criteria), nil
}

func FromCriteria(criteria model.SearchCriteria) Query {
	return Query{doc: criteria.Document()}
}

// FromJSON uses a caller supplied document verbatim. Anything that is not a
// JSON object fails with model.ErrInvalidFilterJSON.
func FromJSON(text string) (Query, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil || doc == nil {
		return Query{}, model.ErrInvalidFilterJSON
	}

	if criteria, ok := doc[keyCriteria]; ok {
		if _, isObject := criteria.(map[string]any); !isObject {
			return Query{}, fmt.Errorf("%w: %s must be an object", model.ErrInvalidFilterJSON, keyCriteria)
		}
	}

	return Query{doc: doc}, nil
}

// Document returns a copy of the underlying document.
func (q Query) Document() map[string]any {
	return deepCopy(q.doc).(map[string]any)
}

func (q Query) WithPageSize(size int) Query {
	return q.withCriteria(keyPageSize, size)
}

func (q Query) WithCurrentPage(page int) Query {
	return q.withCriteria(keyCurrentPage, page)
}

func (q Query) PageSize() (int, bool) {
	criteria, _ := q.doc[keyCriteria].(map[string]any)

	return model.Params(criteria).Int(keyPageSize)
}

func (q Query) withCriteria(key string, value int) Query {
	doc := q.Document()

	criteria, ok := doc[keyCriteria].(map[string]any)
	if !ok {
		criteria = make(map[string]any)
		doc[keyCriteria] = criteria
	}

	criteria[key] = value

	return Query{doc: doc}
}

// Values flattens the document into bracket-notation query parameters,
// e.g. search_criteria[filter_groups][0][filters][0][field]=email.
func (q Query) Values() url.Values {
	values := url.Values{}

	for _, key := range sortedKeys(q.doc) {
		flatten(values, key, q.doc[key])
	}

	return values
}

func flatten(values url.Values, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			flatten(values, prefix+"["+key+"]", v[key])
		}
	case []any:
		for index, entry := range v {
			flatten(values, prefix+"["+strconv.Itoa(index)+"]", entry)
		}
	case nil:
		values.Add(prefix, "")
	default:
		values.Add(prefix, scalar(v))
	}
}

func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}

		return "0"
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, entry := range v {
			copied[key] = deepCopy(entry)
		}

		return copied
	case []any:
		copied := make([]any, len(v))
		for index, entry := range v {
			copied[index] = deepCopy(entry)
		}

		return copied
	default:
		return v
	}
}
