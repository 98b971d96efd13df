package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"api-test-generator/internal/types"
)

const petstore = `
openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
servers:
  - url: https://{env}.example.com/v1
    variables:
      env:
        default: api
security:
  - bearerAuth: []
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: integer
          example: 7
    delete:
      responses:
        "204":
          description: deleted
    get:
      operationId: getPet
      parameters:
        - name: X-Trace-Id
          in: header
          required: true
          schema:
            type: string
            format: uuid
        - name: verbose
          in: query
          schema:
            type: boolean
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
        "404":
          description: missing
  /pets:
    post:
      summary: Create a pet
      security:
        - apiKey: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
      responses:
        "201":
          description: created
        "202":
          description: accepted
    put:
      security: []
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/NewPet"
            example:
              name: Rex
      responses:
        default:
          description: whatever
    get:
      parameters:
        - name: limit
          in: query
          required: true
          schema:
            type: integer
        - name: tag
          in: query
          example: dog
          schema:
            type: string
      responses:
        "200":
          description: ok
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
    apiKey:
      type: apiKey
      in: header
      name: X-API-Key
  schemas:
    NewPet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        tag:
          type: string
          enum: [dog, cat]
    Pet:
      allOf:
        - $ref: "#/components/schemas/NewPet"
        - type: object
          properties:
            id:
              type: integer
`

func loadPetstore(t *testing.T, opts Options) (*SwaggerParser, []Operation) {
	t.Helper()
	p := NewSwaggerParser(opts, zaptest.NewLogger(t))
	doc, err := p.LoadData(context.Background(), []byte(petstore))
	require.NoError(t, err)
	return p, p.Operations(doc)
}

func TestOperationsOrder(t *testing.T) {
	_, ops := loadPetstore(t, Options{})

	var got []string
	for _, op := range ops {
		got = append(got, op.Method+" "+op.Path)
	}
	want := []string{
		"GET /pets",
		"POST /pets",
		"PUT /pets",
		"GET /pets/{petId}",
		"DELETE /pets/{petId}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("operation order mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationsRequests(t *testing.T) {
	_, ops := loadPetstore(t, Options{})
	require.Len(t, ops, 5)

	list := ops[0].Request
	assert.Equal(t, "https://api.example.com/v1/pets", list.Endpoint)
	assert.Equal(t, types.Pairs{{Name: "limit", Value: "123"}, {Name: "tag", Value: "dog"}}, list.QueryParams)
	assert.Equal(t, 200, list.ExpectedStatus)
	assert.False(t, list.ValidateSchema)
	assert.Empty(t, list.RequestBody)
	require.NotNil(t, list.Authorization)
	assert.Equal(t, types.AuthBearer, list.Authorization.Type)

	create := ops[1]
	assert.Equal(t, BodySchema, create.BodySource)
	assert.NotNil(t, create.BodySchema)
	assert.Equal(t, "Create a pet", create.Summary)
	assert.JSONEq(t, `{"name":"sample_string","tag":"dog"}`, create.Request.RequestBody)
	assert.Equal(t, 201, create.Request.ExpectedStatus)
	assert.Equal(t, &types.Authorization{Type: types.AuthAPIKey, KeyName: "X-API-Key", KeyValue: "<api-key>"}, create.Request.Authorization)

	replace := ops[2]
	assert.Equal(t, BodyExample, replace.BodySource)
	assert.JSONEq(t, `{"name":"Rex"}`, replace.Request.RequestBody)
	assert.Equal(t, 200, replace.Request.ExpectedStatus)
	assert.Nil(t, replace.Request.Authorization, "empty operation security disables auth")

	get := ops[3]
	assert.Equal(t, "getPet", get.OperationID)
	assert.Equal(t, "https://api.example.com/v1/pets/7", get.Request.Endpoint)
	assert.Equal(t, types.Pairs{{Name: "X-Trace-Id", Value: "123e4567-e89b-12d3-a456-426614174000"}}, get.Request.Headers)
	assert.Empty(t, get.Request.QueryParams, "optional query params without examples are left out")
	assert.True(t, get.Request.ValidateSchema)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(get.Request.SchemaFile), &schema))
	assert.NotContains(t, get.Request.SchemaFile, "$ref")
	assert.Contains(t, schema, "allOf")

	del := ops[4]
	assert.Equal(t, 204, del.Request.ExpectedStatus)
	assert.Equal(t, BodyNone, del.BodySource)
}

func TestOperationsGenerateValidRequests(t *testing.T) {
	p, _ := loadPetstore(t, Options{})
	doc, err := p.LoadData(context.Background(), []byte(petstore))
	require.NoError(t, err)

	for _, req := range p.Requests(doc) {
		assert.NoError(t, req.Validate(), req.Method+" "+req.Endpoint)
	}
}

func TestBaseURLOverride(t *testing.T) {
	_, ops := loadPetstore(t, Options{BaseURL: "http://localhost:9000/"})
	assert.Equal(t, "http://localhost:9000/pets", ops[0].Request.Endpoint)
}

func TestRelativeServerFallsBack(t *testing.T) {
	p := NewSwaggerParser(Options{}, nil)
	doc, err := p.LoadData(context.Background(), []byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
servers:
  - url: /api
paths:
  /ping:
    get:
      responses:
        "200": {description: ok}
`))
	require.NoError(t, err)
	reqs := p.Requests(doc)
	require.Len(t, reqs, 1)
	assert.Equal(t, "http://localhost/api/ping", reqs[0].Endpoint)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0644))

	p := NewSwaggerParser(Options{Validate: true}, nil)
	doc, err := p.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, p.Operations(doc), 5)

	_, err = p.Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, types.IsKind(err, types.KindIO))
}

func TestLoadDataRejectsInvalid(t *testing.T) {
	p := NewSwaggerParser(Options{Validate: true}, nil)
	_, err := p.LoadData(context.Background(), []byte(`openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /ping:
    get: {}
`))
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestDiscover(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/yaml")

	mux := http.NewServeMux()
	mux.Handle("/api/swagger.json", httphelpers.HandlerWithResponse(200, headers, []byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /ping:
    get:
      responses:
        "200": {description: ok}
`)))
	mux.Handle("/", httphelpers.HandlerWithStatus(404))
	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewSwaggerParser(Options{}, zaptest.NewLogger(t))
	doc, err := p.Discover(context.Background(), server.URL)
	require.NoError(t, err)

	reqs := p.Requests(doc)
	require.Len(t, reqs, 1)
	assert.Equal(t, server.URL+"/ping", reqs[0].Endpoint)
}

func TestDiscoverNotFound(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(404))
	defer server.Close()

	p := NewSwaggerParser(Options{}, nil)
	_, err := p.Discover(context.Background(), server.URL)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = p.Discover(context.Background(), "not a url")
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}
