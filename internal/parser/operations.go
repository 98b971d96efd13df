package parser

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"api-test-generator/internal/types"
)

const fallbackBaseURL = "http://localhost"

// BodySource records where an operation's request body came from
type BodySource string

const (
	BodyNone    BodySource = ""
	BodyExample BodySource = "example"
	BodySchema  BodySource = "schema"
	BodyEmpty   BodySource = "empty"
)

// Operation is one documented call together with the request description
// derived from it
type Operation struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	// BodySchema is the JSON request body schema, if documented
	BodySchema *openapi3.SchemaRef
	BodySource BodySource
	Request    types.RequestDescription
}

var methodOrder = map[string]int{
	http.MethodGet:    0,
	http.MethodPost:   1,
	http.MethodPut:    2,
	http.MethodPatch:  3,
	http.MethodDelete: 4,
}

// Operations extracts every operation from the document, ordered by path and
// then by method (GET, POST, PUT, PATCH, DELETE, others alphabetically)
func (p *SwaggerParser) Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	base := p.baseURL(doc)

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	var ops []Operation
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		byMethod := item.Operations()
		for _, method := range sortedMethods(byMethod) {
			ops = append(ops, p.operation(doc, base, path, method, item, byMethod[method]))
		}
	}
	return ops
}

// Requests is Operations reduced to the request descriptions
func (p *SwaggerParser) Requests(doc *openapi3.T) []types.RequestDescription {
	ops := p.Operations(doc)
	requests := make([]types.RequestDescription, 0, len(ops))
	for _, op := range ops {
		requests = append(requests, op.Request)
	}
	return requests
}

func sortedMethods(ops map[string]*openapi3.Operation) []string {
	methods := make([]string, 0, len(ops))
	for m := range ops {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool {
		oi, iKnown := methodOrder[methods[i]]
		oj, jKnown := methodOrder[methods[j]]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		}
		return methods[i] < methods[j]
	})
	return methods
}

func (p *SwaggerParser) operation(doc *openapi3.T, base, path, method string, item *openapi3.PathItem, op *openapi3.Operation) Operation {
	result := Operation{
		Method:      method,
		Path:        path,
		OperationID: op.OperationID,
		Summary:     op.Summary,
	}

	req := types.RequestDescription{Method: method}
	resolved := path
	for _, param := range mergedParameters(item.Parameters, op.Parameters) {
		switch param.In {
		case openapi3.ParameterInPath:
			value := url.PathEscape(p.samples.ParamValue(param))
			resolved = strings.ReplaceAll(resolved, "{"+param.Name+"}", value)
		case openapi3.ParameterInQuery:
			if param.Required || hasExample(param) {
				req.QueryParams.Add(param.Name, p.samples.ParamValue(param))
			}
		case openapi3.ParameterInHeader:
			if strings.EqualFold(param.Name, "Content-Type") {
				continue
			}
			if param.Required || hasExample(param) {
				req.Headers.Add(param.Name, p.samples.ParamValue(param))
			}
		}
	}
	req.Endpoint = base + resolved

	if types.BodyRequired(method) {
		result.BodySchema, req.RequestBody, result.BodySource = p.requestBody(op)
	}

	var responseSchema *openapi3.SchemaRef
	req.ExpectedStatus, responseSchema = expectedResponse(op)
	if responseSchema != nil {
		schema, err := inlineSchema(doc, responseSchema)
		if err != nil {
			p.log.Warn("Skipping response schema", zap.String("method", method), zap.String("path", path), zap.Error(err))
		} else {
			req.ValidateSchema = true
			req.SchemaFile = schema
		}
	}

	req.Authorization = authorization(doc, op)
	result.Request = req
	return result
}

// mergedParameters applies operation-level parameters over path-level ones
// with the same name and location, keeping declaration order
func mergedParameters(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	var params []*openapi3.Parameter
	index := map[string]int{}
	for _, list := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				params[i] = ref.Value
				continue
			}
			index[key] = len(params)
			params = append(params, ref.Value)
		}
	}
	return params
}

func hasExample(param *openapi3.Parameter) bool {
	if param.Example != nil {
		return true
	}
	return param.Schema != nil && param.Schema.Value != nil && param.Schema.Value.Example != nil
}

func (p *SwaggerParser) requestBody(op *openapi3.Operation) (*openapi3.SchemaRef, string, BodySource) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, "{}", BodyEmpty
	}
	media := jsonMedia(op.RequestBody.Value.Content)
	if media == nil {
		return nil, "{}", BodyEmpty
	}

	if example, ok := mediaExample(media); ok {
		if data, err := json.Marshal(example); err == nil {
			return media.Schema, string(data), BodyExample
		}
	}
	if media.Schema != nil {
		if body, err := p.samples.JSON(media.Schema); err == nil {
			return media.Schema, body, BodySchema
		}
	}
	return media.Schema, "{}", BodyEmpty
}

// jsonMedia prefers application/json and otherwise takes the first JSON
// flavoured media type in name order
func jsonMedia(content openapi3.Content) *openapi3.MediaType {
	if media := content.Get("application/json"); media != nil {
		return media
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, "json") {
			return content[name]
		}
	}
	return nil
}

func mediaExample(media *openapi3.MediaType) (interface{}, bool) {
	if media.Example != nil {
		return media.Example, true
	}
	names := make([]string, 0, len(media.Examples))
	for name := range media.Examples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ex := media.Examples[name]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
			return ex.Value.Value, true
		}
	}
	return nil, false
}

// expectedResponse picks the lowest documented 2xx status and its JSON
// schema; 200 when no success response is documented
func expectedResponse(op *openapi3.Operation) (int, *openapi3.SchemaRef) {
	if op.Responses == nil {
		return http.StatusOK, nil
	}
	best := 0
	var schema *openapi3.SchemaRef
	for code, ref := range op.Responses.Map() {
		status, err := strconv.Atoi(code)
		if err != nil || status < 200 || status > 299 {
			continue
		}
		if best != 0 && status > best {
			continue
		}
		best = status
		schema = nil
		if ref != nil && ref.Value != nil {
			if media := jsonMedia(ref.Value.Content); media != nil {
				schema = media.Schema
			}
		}
	}
	if best == 0 {
		return http.StatusOK, nil
	}
	return best, schema
}

// authorization maps the first supported security scheme to placeholder
// credentials. Operation-level security replaces the document's.
func authorization(doc *openapi3.T, op *openapi3.Operation) *types.Authorization {
	requirements := doc.Security
	if op.Security != nil {
		requirements = *op.Security
	}
	if doc.Components == nil {
		return nil
	}

	for _, requirement := range requirements {
		names := make([]string, 0, len(requirement))
		for name := range requirement {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ref := doc.Components.SecuritySchemes[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			if auth := placeholderAuth(ref.Value); auth != nil {
				return auth
			}
		}
	}
	return nil
}

func placeholderAuth(scheme *openapi3.SecurityScheme) *types.Authorization {
	switch strings.ToLower(scheme.Type) {
	case "http":
		switch strings.ToLower(scheme.Scheme) {
		case "bearer":
			return &types.Authorization{Type: types.AuthBearer, Token: "<token>"}
		case "basic":
			return &types.Authorization{Type: types.AuthBasic, Username: "<username>", Password: "<password>"}
		}
	case "apikey":
		if strings.EqualFold(scheme.In, "header") && scheme.Name != "" {
			return &types.Authorization{Type: types.AuthAPIKey, KeyName: scheme.Name, KeyValue: "<api-key>"}
		}
	case "oauth2", "openidconnect":
		return &types.Authorization{Type: types.AuthBearer, Token: "<token>"}
	}
	return nil
}

// baseURL prefers the configured override, then the first server URL with
// its variables set to their defaults
func (p *SwaggerParser) baseURL(doc *openapi3.T) string {
	if p.opts.BaseURL != "" {
		return strings.TrimRight(p.opts.BaseURL, "/")
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		server := doc.Servers[0]
		base := server.URL
		for name, v := range server.Variables {
			if v != nil {
				base = strings.ReplaceAll(base, "{"+name+"}", v.Default)
			}
		}
		if u, err := url.Parse(base); err == nil && u.Scheme != "" && u.Host != "" {
			return strings.TrimRight(base, "/")
		}
		p.log.Warn("Server URL is not absolute", zap.String("url", server.URL))
		return strings.TrimRight(fallbackBaseURL+"/"+strings.TrimLeft(base, "/"), "/")
	}
	p.log.Warn("Document declares no servers", zap.String("fallback", fallbackBaseURL))
	return fallbackBaseURL
}

// inlineSchema renders the schema as standalone JSON, replacing local
// component references with their definitions
func inlineSchema(doc *openapi3.T, ref *openapi3.SchemaRef) (string, error) {
	if ref.Value == nil {
		return "", fmt.Errorf("unresolved schema reference %q", ref.Ref)
	}
	var root interface{}
	if ref.Ref != "" {
		root = map[string]interface{}{"$ref": ref.Ref}
	} else {
		data, err := json.Marshal(ref.Value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema: %w", err)
		}
		if err := json.Unmarshal(data, &root); err != nil {
			return "", err
		}
	}

	inlined, err := resolveRefs(doc, root, 0)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(inlined)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(data), nil
}

// maxInlineDepth stops expansion of recursive schemas; deeper levels accept
// any value
const maxInlineDepth = 10

const componentPrefix = "#/components/schemas/"

func resolveRefs(doc *openapi3.T, node interface{}, depth int) (interface{}, error) {
	switch n := node.(type) {
	case map[string]interface{}:
		if ref, ok := n["$ref"].(string); ok {
			if depth >= maxInlineDepth || !strings.HasPrefix(ref, componentPrefix) {
				return map[string]interface{}{}, nil
			}
			name := strings.TrimPrefix(ref, componentPrefix)
			if doc.Components == nil || doc.Components.Schemas[name] == nil || doc.Components.Schemas[name].Value == nil {
				return nil, fmt.Errorf("unknown schema reference %q", ref)
			}
			data, err := json.Marshal(doc.Components.Schemas[name].Value)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal schema %s: %w", name, err)
			}
			var target interface{}
			if err := json.Unmarshal(data, &target); err != nil {
				return nil, err
			}
			return resolveRefs(doc, target, depth+1)
		}
		out := make(map[string]interface{}, len(n))
		for k, v := range n {
			resolved, err := resolveRefs(doc, v, depth)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, v := range n {
			resolved, err := resolveRefs(doc, v, depth)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return node, nil
}
