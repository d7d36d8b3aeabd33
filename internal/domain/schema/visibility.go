package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
)

const (
	keyResource  = "resource"
	keyOperation = "operation"
	rootPrefix   = "/"
)

// Selection is everything a visibility rule can look at.
type Selection struct {
	Resource  string
	Operation model.Operation
	// Root holds the top-level parameters, referenced by "/name" keys.
	Root model.Params
	// Siblings holds the values of the fields next to the one evaluated.
	Siblings model.Params
}

// Visible reports whether field is shown for sel. Every Show key must match;
// any matching Hide key hides the field.
func Visible(field FieldSpec, sel Selection) bool {
	for key, allowed := range field.Show {
		if !matches(lookup(key, sel), allowed) {
			return false
		}
	}

	for key, denied := range field.Hide {
		if matches(lookup(key, sel), denied) {
			return false
		}
	}

	return true
}

func lookup(key string, sel Selection) any {
	switch {
	case key == keyResource:
		return sel.Resource
	case key == keyOperation:
		return string(sel.Operation)
	case strings.HasPrefix(key, rootPrefix):
		name := strings.TrimPrefix(key, rootPrefix)
		switch name {
		case keyResource:
			return sel.Resource
		case keyOperation:
			return string(sel.Operation)
		}

		return sel.Root[name]
	default:
		return sel.Siblings[key]
	}
}

func matches(value any, allowed []any) bool {
	for _, candidate := range allowed {
		if equalValues(value, candidate) {
			return true
		}
	}

	return false
}

// equalValues compares JSON and YAML decoded scalars, treating all numeric
// kinds as one.
func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)

		return ok && fa == fb
	}

	return fmt.Sprint(a) == fmt.Sprint(b) && a != nil && b != nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

// withDefaults overlays values on the declared defaults of fields.
func withDefaults(fields []FieldSpec, values model.Params) model.Params {
	merged := make(model.Params, len(fields)+len(values))

	for _, field := range fields {
		if field.Default != nil {
			merged[field.Name] = field.Default
		}
	}

	for key, value := range values {
		if value != nil {
			merged[key] = value
		}
	}

	return merged
}

// VisibleFields lists the top-level fields shown for resource and operation
// given the values entered so far. Sibling rules see declared defaults for
// fields the caller left out.
func (n *NodeSchema) VisibleFields(resource string, operation model.Operation, values model.Params) []FieldSpec {
	sel := Selection{Resource: resource, Operation: operation, Root: values}

	inScope := make([]FieldSpec, 0, len(n.Fields))
	for _, field := range n.Fields {
		if selects(field, sel) {
			inScope = append(inScope, field)
		}
	}

	sel.Siblings = withDefaults(inScope, values)

	visible := make([]FieldSpec, 0, len(inScope))
	for _, field := range inScope {
		if Visible(field, sel) {
			visible = append(visible, field)
		}
	}

	return visible
}

// VisibleField returns the visible top-level field called name.
func (n *NodeSchema) VisibleField(resource string, operation model.Operation, values model.Params, name string) (FieldSpec, bool) {
	return findField(n.VisibleFields(resource, operation, values), name)
}

// selects evaluates only the rules that do not depend on sibling fields.
func selects(field FieldSpec, sel Selection) bool {
	for key, allowed := range field.Show {
		if isSiblingKey(key) {
			continue
		}

		if !matches(lookup(key, sel), allowed) {
			return false
		}
	}

	for key, denied := range field.Hide {
		if isSiblingKey(key) {
			continue
		}

		if matches(lookup(key, sel), denied) {
			return false
		}
	}

	return true
}

func isSiblingKey(key string) bool {
	return key != keyResource && key != keyOperation && !strings.HasPrefix(key, rootPrefix)
}
