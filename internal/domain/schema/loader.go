package schema

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/architeacher/connectors/internal/domain/model"
)

//go:embed definitions/*.yaml
var definitions embed.FS

const definitionsDir = "definitions"

var loadAll = sync.OnceValues(func() (map[string]*NodeSchema, error) {
	entries, err := definitions.ReadDir(definitionsDir)
	if err != nil {
		return nil, fmt.Errorf("reading schema definitions: %w", err)
	}

	schemas := make(map[string]*NodeSchema, len(entries))

	for _, entry := range entries {
		data, err := definitions.ReadFile(path.Join(definitionsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		node, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}

		schemas[node.Name] = node
	}

	return schemas, nil
})

// Parse decodes and validates one node schema document.
func Parse(data []byte) (*NodeSchema, error) {
	var node NodeSchema
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	if err := node.validate(); err != nil {
		return nil, err
	}

	return &node, nil
}

// Load returns the embedded schema of the named node. The returned schema is
// shared and must not be modified.
func Load(name string) (*NodeSchema, error) {
	schemas, err := loadAll()
	if err != nil {
		return nil, err
	}

	node, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownNode, name)
	}

	return node, nil
}

func MustLoad(name string) *NodeSchema {
	node, err := Load(name)
	if err != nil {
		panic(err)
	}

	return node
}

// Names lists the embedded schemas in sorted order.
func Names() ([]string, error) {
	schemas, err := loadAll()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}

	slices.Sort(names)

	return names, nil
}

func (n *NodeSchema) validate() error {
	var errs []error

	if n.Name == "" {
		errs = append(errs, errors.New("node name is required"))
	}

	if len(n.Resources) == 0 {
		errs = append(errs, errors.New("at least one resource is required"))
	}

	for _, resource := range n.Resources {
		if len(resource.Operations) == 0 {
			errs = append(errs, fmt.Errorf("resource %s has no operations", resource.Name))
		}
	}

	for _, field := range n.Fields {
		errs = append(errs, validateField(field, "")...)
	}

	return errors.Join(errs...)
}

func validateField(field FieldSpec, parent string) []error {
	location := strings.TrimPrefix(parent+"."+field.Name, ".")

	var errs []error

	if field.Name == "" {
		errs = append(errs, fmt.Errorf("%s: field name is required", parent))
	}

	// Fixed collection groups carry no type of their own.
	if field.Type != "" && !field.Type.Valid() {
		errs = append(errs, fmt.Errorf("%s: unknown field type %q", location, field.Type))
	}

	if field.Type == FieldTypeOptions && len(field.Options) == 0 && field.LoadOptionsMethod == "" {
		errs = append(errs, fmt.Errorf("%s: options field needs options or a load options method", location))
	}

	for _, child := range field.Fields {
		errs = append(errs, validateField(child, location)...)
	}

	return errs
}
