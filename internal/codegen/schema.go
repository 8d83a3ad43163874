// Package codegen turns component schemas and kernel sources into Go and
// device-side source files.
package codegen

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/plus3/computecs/compute/driver"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSchema = errors.New("codegen: invalid component schema")

// Field is one scalar field of a component, in schema order.
type Field struct {
	Name string
	Kind driver.Kind
}

// GoName is the exported Go field name.
func (f Field) GoName() string {
	return exportedName(f.Name)
}

// GoType is the Go type with the same width as the field's C type.
func (f Field) GoType() string {
	return goTypes[f.Kind]
}

// Schema describes one component: a name and an ordered list of fields.
type Schema struct {
	Name   string
	Fields []Field
}

// GoName is the exported Go type name.
func (s *Schema) GoName() string {
	return exportedName(s.Name)
}

var goTypes = map[driver.Kind]string{
	driver.Bool:    "bool",
	driver.Int8:    "int8",
	driver.Uint8:   "uint8",
	driver.Int16:   "int16",
	driver.Uint16:  "uint16",
	driver.Int32:   "int32",
	driver.Uint32:  "uint32",
	driver.Int64:   "int64",
	driver.Uint64:  "uint64",
	driver.Float32: "float32",
	driver.Float64: "float64",
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSchema reads a schema file. JSON and YAML are both accepted.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// ParseSchema parses a schema document of the form
//
//	{"name": "position", "fields": {"x": "float", "y": "float"}}
//
// Field order is taken from the document.
func ParseSchema(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalidSchema)
	}

	var (
		s      Schema
		fields *yaml.Node
	)
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "name":
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: name must be a string (line %d)", ErrInvalidSchema, value.Line)
			}
			s.Name = value.Value
		case "fields":
			fields = value
		}
	}

	if !identifier.MatchString(s.Name) {
		return nil, fmt.Errorf("%w: name %q is not an identifier", ErrInvalidSchema, s.Name)
	}
	if fields == nil || fields.Kind != yaml.MappingNode || len(fields.Content) == 0 {
		return nil, fmt.Errorf("%w: %s needs a non-empty fields mapping", ErrInvalidSchema, s.Name)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(fields.Content); i += 2 {
		key, value := fields.Content[i], fields.Content[i+1]
		name := key.Value
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("%w: %s field %q is not an identifier (line %d)", ErrInvalidSchema, s.Name, name, key.Line)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %s field %q declared twice (line %d)", ErrInvalidSchema, s.Name, name, key.Line)
		}
		seen[name] = true

		kind, ok := driver.ParseKind(value.Value)
		if value.Kind != yaml.ScalarNode || !ok {
			return nil, fmt.Errorf("%w: %s.%s has unsupported type %q (line %d)", ErrInvalidSchema, s.Name, name, value.Value, value.Line)
		}
		s.Fields = append(s.Fields, Field{Name: name, Kind: kind})
	}

	return &s, nil
}

// exportedName converts snake_case to an exported CamelCase identifier.
func exportedName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
