package nodes

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/architeacher/connectors/internal/domain/model"
)

const valueKey = "value"

// Flatten turns a response body into output records: one per element of an
// array, one for an object. Scalars are wrapped as {"value": x}; nil yields
// nothing.
func Flatten(body any) []model.Item {
	switch value := body.(type) {
	case nil:
		return nil
	case []any:
		items := make([]model.Item, 0, len(value))
		for _, entry := range value {
			items = append(items, toItem(entry))
		}

		return items
	default:
		return []model.Item{toItem(value)}
	}
}

func toItem(value any) model.Item {
	if object, ok := value.(map[string]any); ok {
		return object
	}

	return model.Item{valueKey: value}
}

// Object returns body as parameters, or an empty set when it is no object.
func Object(body any) model.Params {
	if object, ok := body.(map[string]any); ok {
		return object
	}

	return model.Params{}
}

// Field returns the value stored under key when body is an object.
func Field(body any, key string) any {
	return Object(body)[key]
}

// Options maps records onto dropdown entries sorted by name. Records for
// which keep returns false, or that lack a name, are skipped.
func Options(records []model.Item, nameKey, valueKey string, keep func(model.Params) bool) []model.Option {
	options := make([]model.Option, 0, len(records))

	for _, record := range records {
		params := model.Params(record)
		if keep != nil && !keep(params) {
			continue
		}

		name, ok := params.String(nameKey)
		if !ok || name == "" {
			continue
		}

		options = append(options, model.Option{Name: name, Value: params[valueKey]})
	}

	SortOptions(options)

	return options
}

func SortOptions(options []model.Option) {
	slices.SortStableFunc(options, func(a, b model.Option) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// UnknownMethod is the error for a load options method a node does not serve.
func UnknownMethod(node, method string) error {
	return fmt.Errorf("%w: %s.%s", model.ErrUnknownLoadOptionsMethod, node, method)
}

// MethodNames lists the keys of a method table in sorted order.
func MethodNames[T any](methods map[string]T) []string {
	return slices.Sorted(maps.Keys(methods))
}
