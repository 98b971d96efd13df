package testdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-test-generator/internal/types"
)

func schemaFrom(t *testing.T, doc string) *openapi3.SchemaRef {
	t.Helper()
	ref := &openapi3.SchemaRef{}
	require.NoError(t, json.Unmarshal([]byte(doc), ref))
	return ref
}

func TestGeneratorValue(t *testing.T) {
	g := NewGenerator()
	tests := []struct {
		name   string
		schema string
		want   interface{}
	}{
		{"example wins", `{"type":"string","example":"jane"}`, "jane"},
		{"default", `{"type":"integer","default":5}`, float64(5)},
		{"enum", `{"type":"string","enum":["active","disabled"]}`, "active"},
		{"email", `{"type":"string","format":"email"}`, "test@example.com"},
		{"uuid", `{"type":"string","format":"uuid"}`, "123e4567-e89b-12d3-a456-426614174000"},
		{"plain string", `{"type":"string"}`, "sample_string"},
		{"integer", `{"type":"integer"}`, 123},
		{"integer minimum", `{"type":"integer","minimum":500}`, int64(500)},
		{"number", `{"type":"number"}`, 123.45},
		{"boolean", `{"type":"boolean"}`, true},
		{"array", `{"type":"array","items":{"type":"integer"}}`, []interface{}{123}},
		{"untyped array", `{"type":"array"}`, []interface{}{"sample_item"}},
		{"empty object", `{"type":"object"}`, map[string]interface{}{"key": "value"}},
		{"nullable type list", `{"type":["null","boolean"]}`, true},
		{"no type", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Value(schemaFrom(t, tt.schema)))
		})
	}
}

func TestGeneratorObject(t *testing.T) {
	g := NewGenerator()
	ref := schemaFrom(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"address": {"properties": {"city": {"type": "string", "example": "Pune"}}}
		}
	}`)

	body, err := g.JSON(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "sample_string",
		"age": 123,
		"tags": ["sample_string"],
		"address": {"city": "Pune"}
	}`, body)
}

func TestGeneratorComposition(t *testing.T) {
	g := NewGenerator()

	allOf := schemaFrom(t, `{"allOf": [
		{"type": "object", "properties": {"id": {"type": "integer"}}},
		{"type": "object", "properties": {"name": {"type": "string"}}}
	]}`)
	assert.Equal(t, map[string]interface{}{"id": 123, "name": "sample_string"}, g.Value(allOf))

	oneOf := schemaFrom(t, `{"oneOf": [{"type": "boolean"}, {"type": "string"}]}`)
	assert.Equal(t, true, g.Value(oneOf))
}

func TestGeneratorSelfReference(t *testing.T) {
	node := &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeObject}, Properties: openapi3.Schemas{}}
	node.Properties["child"] = &openapi3.SchemaRef{Value: node}
	node.Properties["name"] = &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeString}}}

	v := NewGenerator().Value(&openapi3.SchemaRef{Value: node})
	obj, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sample_string", obj["name"])
	assert.Contains(t, obj, "child")
}

func TestGeneratorJSONFallback(t *testing.T) {
	body, err := NewGenerator().JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", body)
}

func TestParamValue(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, "42", g.ParamValue(&openapi3.Parameter{Name: "id", In: "path", Example: float64(42)}))
	assert.Equal(t, "123", g.ParamValue(&openapi3.Parameter{Name: "id", In: "path", Schema: schemaFrom(t, `{"type":"integer"}`)}))
	assert.Equal(t, "1", g.ParamValue(&openapi3.Parameter{Name: "id", In: "path"}))
	assert.Equal(t, "sample", g.ParamValue(&openapi3.Parameter{Name: "q", In: "query"}))
	assert.Equal(t, "1.5", g.ParamValue(&openapi3.Parameter{Name: "ratio", In: "query", Example: 1.5}))
	assert.Equal(t, `["a"]`, g.ParamValue(&openapi3.Parameter{Name: "ids", In: "query", Example: []interface{}{"a"}}))
	assert.Empty(t, g.ParamValue(nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoaderJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "single.json", `{
		"method": "GET",
		"endpoint": "https://api.example.com/users",
		"headers": {"X-Trace": "1", "Accept": "application/json"},
		"expectedStatus": 200,
		"responseTimeThreshold": 0,
		"authorization": {"type": "none"}
	}`)
	writeFile(t, dir, "many.json", `[
		{"method": "GET", "endpoint": "https://api.example.com/a", "expectedStatus": 200},
		{"method": "DELETE", "endpoint": "https://api.example.com/b", "expectedStatus": 204}
	]`)

	l := NewLoader(dir)

	single, err := l.Load("single.json")
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, types.Pairs{{Name: "X-Trace", Value: "1"}, {Name: "Accept", Value: "application/json"}}, single[0].Headers)
	assert.Nil(t, single[0].ResponseTimeThreshold)
	assert.Nil(t, single[0].Authorization)

	many, err := l.Load(filepath.Join(dir, "many.json"))
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, "https://api.example.com/a", many[0].Endpoint)
	assert.Equal(t, 204, many[1].ExpectedStatus)
}

func TestLoaderYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requests.yaml", `
- method: POST
  endpoint: https://api.example.com/users
  expectedStatus: 201
  requestBody: '{"name":"Jane"}'
  queryParams:
    page: 1
    size: 20
  authorization:
    type: bearer
    token: abc
- method: GET
  endpoint: https://api.example.com/users/1
  expectedStatus: 200
`)
	writeFile(t, dir, "one.yml", "method: GET\nendpoint: https://api.example.com/health\nexpectedStatus: 200\n")

	l := NewLoader(dir)

	requests, err := l.Load("requests.yaml")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, `{"name":"Jane"}`, requests[0].RequestBody)
	assert.Equal(t, types.Pairs{{Name: "page", Value: "1"}, {Name: "size", Value: "20"}}, requests[0].QueryParams)
	assert.Equal(t, types.AuthBearer, requests[0].Authorization.Kind())
	assert.Equal(t, "https://api.example.com/users/1", requests[1].Endpoint)

	one, err := l.Load("one.yml")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "https://api.example.com/health", one[0].Endpoint)
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.json", `{"method": `)
	writeFile(t, dir, "empty.yaml", "")
	writeFile(t, dir, "scalar.yaml", "just text")
	writeFile(t, dir, "requests.txt", "{}")

	l := NewLoader(dir)

	_, err := l.Load("missing.json")
	assert.True(t, types.IsKind(err, types.KindIO))

	for _, name := range []string{"bad.json", "empty.yaml", "scalar.yaml", "requests.txt"} {
		_, err := l.Load(name)
		assert.True(t, types.IsKind(err, types.KindInvalidRequest), name)
	}
}
