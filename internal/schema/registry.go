package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jigardalal/databridge/internal/model"
)

// Registry holds the per-category target field definitions. Categories are
// loaded once at construction; reads are lock-free afterwards.
type Registry struct {
	categories map[string][]model.TargetField
}

// yamlCategory mirrors one category entry in a schema override file.
type yamlCategory struct {
	Fields []struct {
		Name        string `yaml:"name"`
		Type        string `yaml:"type"`
		Required    bool   `yaml:"required"`
		Description string `yaml:"description"`
	} `yaml:"fields"`
}

// NewRegistry builds a registry from the built-in categories.
func NewRegistry() *Registry {
	return &Registry{categories: builtinCategories()}
}

// NewRegistryFromFile builds a registry from the built-ins, then replaces
// any category present in the YAML file wholesale.
func NewRegistryFromFile(path string) (*Registry, error) {
	r := NewRegistry()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var parsed map[string]yamlCategory
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	for category, def := range parsed {
		fields := make([]model.TargetField, 0, len(def.Fields))
		seen := make(map[string]bool, len(def.Fields))
		for _, f := range def.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("schema category %q has a field with no name", category)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("schema category %q defines field %q twice", category, f.Name)
			}
			seen[f.Name] = true
			ft := model.FieldType(f.Type)
			switch ft {
			case model.FieldTypeString, model.FieldTypeNumber, model.FieldTypeBoolean, model.FieldTypeDate:
			case "":
				ft = model.FieldTypeString
			default:
				return nil, fmt.Errorf("schema category %q field %q has unknown type %q", category, f.Name, f.Type)
			}
			fields = append(fields, model.TargetField{
				Name:        f.Name,
				Type:        ft,
				Required:    f.Required,
				Description: f.Description,
			})
		}
		r.categories[category] = fields
	}
	return r, nil
}

// TargetFields returns the target field definitions for a category.
func (r *Registry) TargetFields(category string) ([]model.TargetField, error) {
	fields, ok := r.categories[category]
	if !ok {
		return nil, model.NewError(model.CodeUnknownSchemaType, "unknown schema type: %s", category)
	}
	out := make([]model.TargetField, len(fields))
	copy(out, fields)
	return out, nil
}

// Categories lists the registered category names, sorted.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a category is registered.
func (r *Registry) Has(category string) bool {
	_, ok := r.categories[category]
	return ok
}
