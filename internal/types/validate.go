package types

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// BodyRequired reports whether method must carry a request body
func BodyRequired(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}

// Preconditions checks that every facet the template needs is present.
// It does not look at the contents of the facets.
func (d *RequestDescription) Preconditions() error {
	if strings.TrimSpace(d.Method) == "" {
		return invalid("method", "HTTP method is required")
	}
	if strings.TrimSpace(d.Endpoint) == "" {
		return invalid("endpoint", "Endpoint URL is required")
	}
	if d.ExpectedStatus == 0 {
		return invalid("expectedStatus", "Expected status code is required")
	}
	if BodyRequired(d.Method) && d.RequestBody == "" {
		return invalid("requestBody", "Request body is required for %s method", d.Method)
	}
	return nil
}

// Validate runs Preconditions and then checks the format of each facet
func (d *RequestDescription) Validate() error {
	if err := d.Preconditions(); err != nil {
		return err
	}

	if !isMethodToken(d.Method) {
		return invalid("method", "HTTP method must be an uppercase token, got %q", d.Method)
	}

	u, err := url.Parse(d.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("endpoint", "Endpoint URL must be an absolute URL")
	}

	if d.ExpectedStatus < 100 || d.ExpectedStatus > 599 {
		return invalid("expectedStatus", "Expected status code must be between 100 and 599")
	}

	if BodyRequired(d.Method) && !json.Valid([]byte(d.RequestBody)) {
		return invalid("requestBody", "Request body must be valid JSON")
	}

	if d.ResponseTimeThreshold != nil && *d.ResponseTimeThreshold < 0 {
		return invalid("responseTimeThreshold", "Response time threshold must not be negative")
	}

	if d.Authorization != nil {
		switch d.Authorization.Kind() {
		case AuthNone, AuthBasic, AuthBearer:
		case AuthAPIKey:
			if d.Authorization.KeyName == "" {
				return invalid("authorization", "API key name is required")
			}
		default:
			return invalid("authorization", "Unsupported authorization type %q", d.Authorization.Type)
		}
	}

	if d.ValidateSchema && d.SchemaFile != "" {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(d.SchemaFile)); err != nil {
			return invalid("schemaFile", "Schema file must be a valid JSON schema")
		}
	}

	return nil
}

func isMethodToken(method string) bool {
	if method == "" {
		return false
	}
	for _, r := range method {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
