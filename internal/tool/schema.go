package tool

import (
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// Field types understood by the validator. These mirror the JSON Schema
// primitive types the upstream APIs expect.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Schema is the tagged argument table for one tool: field name → constraints.
// It is declared once per tool and validated mechanically before dispatch,
// so handlers never re-check types or bounds.
type Schema map[string]Field

// Field declares the type and constraints of a single argument.
type Field struct {
	Type        string
	Description string
	Required    bool
	// Default is filled into the argument map when the caller omits the
	// field. It must itself satisfy the field's constraints.
	Default any
	// Enum restricts a string field to a closed set of literal values.
	Enum []string
	// Min/Max bound numeric fields (inclusive).
	Min *float64
	Max *float64
	// MinLen/MaxLen bound string length in characters; MaxLen 0 means
	// unbounded.
	MinLen int
	MaxLen int
	// MinItems/MaxItems bound array length; MaxItems 0 means unbounded.
	MinItems int
	MaxItems int
	// Items describes array elements.
	Items *Field
}

// Num is a convenience for declaring numeric bounds inline.
func Num(v float64) *float64 { return &v }

// JSONSchema renders the host-facing input schema advertised over MCP.
func (s Schema) JSONSchema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(s))
	var required []string
	for name, f := range s {
		props[name] = f.jsonSchema()
		if f.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func (f Field) jsonSchema() *jsonschema.Schema {
	js := &jsonschema.Schema{
		Type:        f.Type,
		Description: f.Description,
	}
	if len(f.Enum) > 0 {
		js.Enum = make([]any, len(f.Enum))
		for i, v := range f.Enum {
			js.Enum[i] = v
		}
	}
	if f.Items != nil {
		js.Items = f.Items.jsonSchema()
	}
	return js
}

// ApplyDefaults fills declared default values into args for any field the
// caller omitted. The returned map is a copy; the caller's map is not
// mutated.
func (s Schema) ApplyDefaults(args Args) Args {
	out := make(Args, len(args)+len(s))
	for k, v := range args {
		out[k] = v
	}
	for name, f := range s {
		if f.Default == nil {
			continue
		}
		if v, ok := out[name]; !ok || v == nil {
			out[name] = f.Default
		}
	}
	return out
}
