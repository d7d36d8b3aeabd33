package schema

import (
	"slices"

	"github.com/architeacher/connectors/internal/domain/model"
)

type FieldType string

const (
	FieldTypeString          FieldType = "string"
	FieldTypeNumber          FieldType = "number"
	FieldTypeBoolean         FieldType = "boolean"
	FieldTypeOptions         FieldType = "options"
	FieldTypeMultiOptions    FieldType = "multiOptions"
	FieldTypeDateTime        FieldType = "dateTime"
	FieldTypeJSON            FieldType = "json"
	FieldTypeCollection      FieldType = "collection"
	FieldTypeFixedCollection FieldType = "fixedCollection"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeOptions,
		FieldTypeMultiOptions, FieldTypeDateTime, FieldTypeJSON,
		FieldTypeCollection, FieldTypeFixedCollection:
		return true
	default:
		return false
	}
}

type (
	// Condition maps a field name to the values that satisfy it. The keys
	// "resource" and "operation" match the selection; a key starting with
	// "/" names a top-level parameter; anything else names a sibling field.
	Condition map[string][]any

	OptionSpec struct {
		Name        string `yaml:"name" json:"name"`
		Value       any    `yaml:"value" json:"value"`
		Description string `yaml:"description,omitempty" json:"description,omitempty"`
	}

	// FieldSpec describes one input. For collections Fields holds the
	// optional children; for fixed collections Fields holds the named
	// groups and each group's Fields its values.
	FieldSpec struct {
		Name              string       `yaml:"name" json:"name"`
		DisplayName       string       `yaml:"displayName" json:"displayName"`
		Description       string       `yaml:"description,omitempty" json:"description,omitempty"`
		Type              FieldType    `yaml:"type" json:"type"`
		Default           any          `yaml:"default,omitempty" json:"default,omitempty"`
		Required          bool         `yaml:"required,omitempty" json:"required,omitempty"`
		Placeholder       string       `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
		Options           []OptionSpec `yaml:"options,omitempty" json:"options,omitempty"`
		LoadOptionsMethod string       `yaml:"loadOptionsMethod,omitempty" json:"loadOptionsMethod,omitempty"`
		Multiple          bool         `yaml:"multiple,omitempty" json:"multiple,omitempty"`
		MinValue          *float64     `yaml:"minValue,omitempty" json:"minValue,omitempty"`
		MaxValue          *float64     `yaml:"maxValue,omitempty" json:"maxValue,omitempty"`
		Fields            []FieldSpec  `yaml:"fields,omitempty" json:"fields,omitempty"`
		Show              Condition    `yaml:"show,omitempty" json:"show,omitempty"`
		Hide              Condition    `yaml:"hide,omitempty" json:"hide,omitempty"`
	}

	OperationSpec struct {
		Name        model.Operation `yaml:"name" json:"name"`
		DisplayName string          `yaml:"displayName" json:"displayName"`
		Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	}

	ResourceSpec struct {
		Name        string          `yaml:"name" json:"name"`
		DisplayName string          `yaml:"displayName" json:"displayName"`
		Operations  []OperationSpec `yaml:"operations" json:"operations"`
	}

	NodeSchema struct {
		Name        string `yaml:"name" json:"name"`
		DisplayName string `yaml:"displayName" json:"displayName"`
		Description string `yaml:"description,omitempty" json:"description,omitempty"`
		Credential  string `yaml:"credential" json:"credential"`
		// AuthScheme applies to credentials that do not name their own.
		AuthScheme model.AuthScheme `yaml:"authScheme,omitempty" json:"authScheme,omitempty"`
		Resources  []ResourceSpec   `yaml:"resources" json:"resources"`
		Fields     []FieldSpec      `yaml:"fields" json:"fields"`
	}
)

// Field returns the child field called name.
func (f FieldSpec) Field(name string) (FieldSpec, bool) {
	return findField(f.Fields, name)
}

func (n *NodeSchema) Resource(name string) (ResourceSpec, bool) {
	index := slices.IndexFunc(n.Resources, func(r ResourceSpec) bool { return r.Name == name })
	if index < 0 {
		return ResourceSpec{}, false
	}

	return n.Resources[index], true
}

func (n *NodeSchema) SupportsOperation(resource string, operation model.Operation) bool {
	res, ok := n.Resource(resource)
	if !ok {
		return false
	}

	return slices.ContainsFunc(res.Operations, func(o OperationSpec) bool { return o.Name == operation })
}

func findField(fields []FieldSpec, name string) (FieldSpec, bool) {
	index := slices.IndexFunc(fields, func(f FieldSpec) bool { return f.Name == name })
	if index < 0 {
		return FieldSpec{}, false
	}

	return fields[index], true
}
