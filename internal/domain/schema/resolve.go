package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/architeacher/connectors/internal/domain/model"
)

const (
	codeRequired     = "REQUIRED"
	codeInvalidValue = "INVALID_VALUE"
)

// Resolve returns the parameters an operation runs with: the visible
// top-level fields taken from params, declared defaults for visible fields
// left out, and collection entries pruned to the children visible for the
// selection. A visible required field that is absent or blank fails
// validation. params is not modified.
func (n *NodeSchema) Resolve(resource string, operation model.Operation, params model.Params) (model.Params, error) {
	if !n.SupportsOperation(resource, operation) {
		return nil, fmt.Errorf("%w: %s %s.%s", model.ErrUnsupportedOperation, n.Name, resource, operation)
	}

	visible := n.VisibleFields(resource, operation, params)
	resolved := make(model.Params, len(visible))
	validation := model.NewValidationErrors()

	for _, field := range visible {
		value, present := params[field.Name]
		present = present && !blank(value)

		switch {
		case present:
			resolved[field.Name] = value
		case field.Required:
			validation.Add(field.Name, fmt.Sprintf("%s is required", field.DisplayName), codeRequired)

			continue
		case field.Default != nil:
			resolved[field.Name] = cloneDefault(field.Default)
		default:
			continue
		}

		checkValue(field, field.Name, resolved[field.Name], validation)

		if field.Type == FieldTypeCollection {
			resolved[field.Name] = pruneCollection(field, resolved[field.Name], Selection{
				Resource:  resource,
				Operation: operation,
				Root:      params,
			}, validation)
		}
	}

	if validation.HasErrors() {
		return nil, validation
	}

	return resolved, nil
}

func blank(value any) bool {
	if value == nil {
		return true
	}

	s, ok := value.(string)

	return ok && strings.TrimSpace(s) == ""
}

// checkValue reports a value that does not fit the field's type under path.
func checkValue(field FieldSpec, path string, value any, validation *model.ValidationErrors) {
	switch field.Type {
	case FieldTypeNumber:
		number, ok := model.Params{field.Name: value}.Float(field.Name)
		if !ok {
			validation.Add(path, fmt.Sprintf("%s must be a number", field.DisplayName), codeInvalidValue)

			return
		}

		if field.MinValue != nil && number < *field.MinValue {
			validation.Add(path, fmt.Sprintf("%s must be at least %v", field.DisplayName, *field.MinValue), codeInvalidValue)
		}

		if field.MaxValue != nil && number > *field.MaxValue {
			validation.Add(path, fmt.Sprintf("%s must be at most %v", field.DisplayName, *field.MaxValue), codeInvalidValue)
		}
	case FieldTypeOptions:
		if len(field.Options) == 0 {
			return
		}

		if !matches(value, optionValues(field.Options)) {
			validation.Add(path, fmt.Sprintf("%s has an unsupported value %v", field.DisplayName, value), codeInvalidValue)
		}
	}
}

func optionValues(options []OptionSpec) []any {
	values := make([]any, 0, len(options))
	for _, option := range options {
		values = append(values, option.Value)
	}

	return values
}

// pruneCollection drops children of a collection that are unknown or hidden
// for the selection and checks the values of the children it keeps.
func pruneCollection(field FieldSpec, value any, sel Selection, validation *model.ValidationErrors) any {
	entries, ok := value.(map[string]any)
	if !ok {
		if params, isParams := value.(model.Params); isParams {
			entries, ok = params, true
		}
	}

	if !ok {
		return value
	}

	sel.Siblings = entries

	pruned := make(map[string]any, len(entries))
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		entry := entries[name]

		child, known := field.Field(name)
		if !known || !Visible(child, sel) {
			continue
		}

		pruned[name] = entry

		if !blank(entry) {
			checkValue(child, field.Name+"."+name, entry, validation)
		}
	}

	return pruned
}

func cloneDefault(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return maps.Clone(v)
	case []any:
		return append([]any(nil), v...)
	default:
		return v
	}
}
