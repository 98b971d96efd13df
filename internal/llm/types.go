package llm

import (
	"context"
)

// OperationContext describes the API operation a request body is wanted for
type OperationContext struct {
	Method  string
	Path    string
	Summary string
	// Schema is the request body JSON schema, if documented
	Schema string
	// Sample is the body produced from the schema alone
	Sample string
}

// Client suggests realistic request bodies for API operations
type Client interface {
	// SuggestRequestBody returns a compact JSON object
	SuggestRequestBody(ctx context.Context, op OperationContext) (string, error)
}
