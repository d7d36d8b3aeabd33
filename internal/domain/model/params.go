package model

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Params holds resolved field values for one item, keyed by field name.
// Values are JSON-shaped: string, float64, bool, map[string]any or []any.
type Params map[string]any

func (p Params) Has(name string) bool {
	value, ok := p[name]

	return ok && value != nil
}

func (p Params) Clone() Params {
	return maps.Clone(p)
}

// Keys returns the present field names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for key, value := range p {
		if value != nil {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	return keys
}

func (p Params) String(name string) (string, bool) {
	switch value := p[name].(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case json.Number:
		return value.String(), true
	case bool:
		return strconv.FormatBool(value), true
	default:
		return "", false
	}
}

// StringOr returns the value of name or fallback when it is absent or empty.
func (p Params) StringOr(name, fallback string) string {
	if value, ok := p.String(name); ok && value != "" {
		return value
	}

	return fallback
}

func (p Params) Float(name string) (float64, bool) {
	switch value := p[name].(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func (p Params) Int(name string) (int, bool) {
	value, ok := p.Float(name)
	if !ok {
		return 0, false
	}

	return int(value), true
}

// IntOr returns the integer value of name or fallback.
func (p Params) IntOr(name string, fallback int) int {
	if value, ok := p.Int(name); ok {
		return value
	}

	return fallback
}

func (p Params) Bool(name string) (bool, bool) {
	switch value := p[name].(type) {
	case bool:
		return value, true
	case string:
		b, err := strconv.ParseBool(value)

		return b, err == nil
	default:
		return false, false
	}
}

// Collection returns the nested object stored under name, or an empty Params.
func (p Params) Collection(name string) Params {
	switch value := p[name].(type) {
	case map[string]any:
		return value
	case Params:
		return value
	default:
		return Params{}
	}
}

// List returns the objects stored under name as a list of Params.
func (p Params) List(name string) []Params {
	return toParamsList(p[name])
}

// Group returns the entries of a fixed collection: the list stored under
// name.option. A bare list under name is accepted too.
func (p Params) Group(name, option string) []Params {
	switch value := p[name].(type) {
	case map[string]any:
		return toParamsList(value[option])
	case Params:
		return toParamsList(value[option])
	default:
		return toParamsList(value)
	}
}

func toParamsList(value any) []Params {
	switch list := value.(type) {
	case []Params:
		return list
	case []map[string]any:
		result := make([]Params, 0, len(list))
		for _, entry := range list {
			result = append(result, entry)
		}

		return result
	case []any:
		result := make([]Params, 0, len(list))
		for _, entry := range list {
			if object, ok := entry.(map[string]any); ok {
				result = append(result, object)
			}
		}

		return result
	case map[string]any:
		return []Params{list}
	default:
		return nil
	}
}

// StringPtr returns the value of name when it is present and string-like,
// nil otherwise. Payload builders use the Ptr accessors so that absent
// fields are omitted from request bodies.
func (p Params) StringPtr(name string) *string {
	value, ok := p.String(name)
	if !ok {
		return nil
	}

	return &value
}

func (p Params) IntPtr(name string) *int {
	value, ok := p.Int(name)
	if !ok {
		return nil
	}

	return &value
}

func (p Params) FloatPtr(name string) *float64 {
	value, ok := p.Float(name)
	if !ok {
		return nil
	}

	return &value
}

func (p Params) BoolPtr(name string) *bool {
	value, ok := p.Bool(name)
	if !ok {
		return nil
	}

	return &value
}

// NonEmptyStringPtr is StringPtr that also treats "" as absent.
func (p Params) NonEmptyStringPtr(name string) *string {
	value, ok := p.String(name)
	if !ok || value == "" {
		return nil
	}

	return &value
}
