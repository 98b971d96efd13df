package testdata

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// maxDepth bounds recursion through self-referencing schemas
const maxDepth = 8

// Generator produces sample values from OpenAPI schemas
type Generator struct {
	maxDepth int
}

// NewGenerator creates a new instance of Generator
func NewGenerator() *Generator {
	return &Generator{maxDepth: maxDepth}
}

// Value returns a sample value for the schema, or nil when nothing sensible
// can be produced
func (g *Generator) Value(ref *openapi3.SchemaRef) interface{} {
	return g.value(ref, 0)
}

// JSON renders a sample body for the schema, falling back to an empty object
func (g *Generator) JSON(ref *openapi3.SchemaRef) (string, error) {
	v := g.Value(ref)
	if v == nil {
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sample body: %w", err)
	}
	return string(data), nil
}

// ParamValue returns a sample for a path, query or header parameter as text
func (g *Generator) ParamValue(param *openapi3.Parameter) string {
	if param == nil {
		return ""
	}
	if param.Example != nil {
		return scalarText(param.Example)
	}
	if param.Schema != nil {
		if v := g.Value(param.Schema); v != nil {
			return scalarText(v)
		}
	}
	if param.In == openapi3.ParameterInPath {
		return "1"
	}
	return "sample"
}

func (g *Generator) value(ref *openapi3.SchemaRef, depth int) interface{} {
	if ref == nil || ref.Value == nil || depth > g.maxDepth {
		return nil
	}
	schema := ref.Value

	switch {
	case schema.Example != nil:
		return schema.Example
	case schema.Default != nil:
		return schema.Default
	case len(schema.Enum) > 0:
		return schema.Enum[0]
	case len(schema.AllOf) > 0:
		return g.merge(schema.AllOf, depth)
	case len(schema.OneOf) > 0:
		return g.value(schema.OneOf[0], depth+1)
	case len(schema.AnyOf) > 0:
		return g.value(schema.AnyOf[0], depth+1)
	}

	switch schemaType(schema) {
	case openapi3.TypeString:
		return sampleString(schema.Format)
	case openapi3.TypeNumber:
		if schema.Min != nil {
			return *schema.Min
		}
		return 123.45
	case openapi3.TypeInteger:
		if schema.Min != nil {
			return int64(*schema.Min)
		}
		return 123
	case openapi3.TypeBoolean:
		return true
	case openapi3.TypeArray:
		if schema.Items != nil {
			if item := g.value(schema.Items, depth+1); item != nil {
				return []interface{}{item}
			}
		}
		return []interface{}{"sample_item"}
	case openapi3.TypeObject:
		if len(schema.Properties) == 0 {
			return map[string]interface{}{"key": "value"}
		}
		result := make(map[string]interface{}, len(schema.Properties))
		for key, prop := range schema.Properties {
			if v := g.value(prop, depth+1); v != nil {
				result[key] = v
			}
		}
		return result
	}
	return nil
}

// merge combines the object samples of allOf members; the first non-object
// member wins when there is no object to merge into
func (g *Generator) merge(refs openapi3.SchemaRefs, depth int) interface{} {
	merged := map[string]interface{}{}
	var fallback interface{}
	for _, ref := range refs {
		v := g.value(ref, depth+1)
		if obj, ok := v.(map[string]interface{}); ok {
			for k, val := range obj {
				merged[k] = val
			}
		} else if fallback == nil {
			fallback = v
		}
	}
	if len(merged) == 0 && fallback != nil {
		return fallback
	}
	return merged
}

// schemaType picks the first non-null declared type, inferring object or
// array from the schema's shape when the type is omitted
func schemaType(schema *openapi3.Schema) string {
	if schema.Type != nil {
		for _, t := range schema.Type.Slice() {
			if t != openapi3.TypeNull {
				return t
			}
		}
	}
	switch {
	case len(schema.Properties) > 0:
		return openapi3.TypeObject
	case schema.Items != nil:
		return openapi3.TypeArray
	}
	return ""
}

func sampleString(format string) string {
	switch format {
	case "email":
		return "test@example.com"
	case "date":
		return "2024-01-01"
	case "date-time":
		return "2024-01-01T12:00:00Z"
	case "uuid":
		return "123e4567-e89b-12d3-a456-426614174000"
	case "uri", "url":
		return "https://example.com"
	case "ipv4":
		return "192.168.1.1"
	case "ipv6":
		return "2001:db8::1"
	case "password":
		return "P@ssw0rd"
	}
	return "sample_string"
}

func scalarText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, int, int32, int64:
		return fmt.Sprint(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
