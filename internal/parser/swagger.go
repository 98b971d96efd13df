package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"api-test-generator/internal/logger"
	"api-test-generator/internal/testdata"
	"api-test-generator/internal/types"
)

// discoveryPaths are the locations probed, in order, when only a service
// base URL is known
var discoveryPaths = []string{
	"/swagger/v1/swagger.json",
	"/swagger.json",
	"/v1/swagger.json",
	"/api/swagger.json",
	"/api/v1/swagger.json",
	"/openapi.json",
	"/v3/api-docs",
	"/swagger/v1/swagger",
	"/swagger",
}

// Options controls how documents are loaded and turned into requests
type Options struct {
	// BaseURL overrides the document's first server URL
	BaseURL string
	// Validate rejects documents that do not pass OpenAPI validation
	Validate bool
}

// SwaggerParser loads Swagger/OpenAPI documents and turns their operations
// into request descriptions
type SwaggerParser struct {
	opts    Options
	client  *http.Client
	samples *testdata.Generator
	log     *zap.Logger
}

// NewSwaggerParser creates a new instance of SwaggerParser
func NewSwaggerParser(opts Options, log *zap.Logger) *SwaggerParser {
	return &SwaggerParser{
		opts:    opts,
		client:  &http.Client{},
		samples: testdata.NewGenerator(),
		log:     logger.OrNop(log),
	}
}

// Load reads a document from a file path or an http(s) URL
func (p *SwaggerParser) Load(ctx context.Context, source string) (*openapi3.T, error) {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return p.fetch(ctx, u)
	}

	loader := p.newLoader(ctx)
	doc, err := loader.LoadFromFile(source)
	if err != nil {
		return nil, &types.OpError{Op: "parser.load", Kind: types.KindIO, Err: fmt.Errorf("failed to parse OpenAPI doc: %w", err)}
	}
	return doc, p.validate(ctx, doc)
}

// LoadData parses a document held in memory
func (p *SwaggerParser) LoadData(ctx context.Context, data []byte) (*openapi3.T, error) {
	doc, err := p.newLoader(ctx).LoadFromData(data)
	if err != nil {
		return nil, &types.OpError{Op: "parser.load", Kind: types.KindInvalidRequest, Err: fmt.Errorf("failed to parse OpenAPI doc: %w", err)}
	}
	return doc, p.validate(ctx, doc)
}

// Discover probes the well-known documentation paths below baseURL and
// returns the first document that loads
func (p *SwaggerParser) Discover(ctx context.Context, baseURL string) (*openapi3.T, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, &types.OpError{Op: "parser.discover", Kind: types.KindInvalidRequest, Err: fmt.Errorf("%w: invalid base URL %q", types.ErrInvalidRequest, baseURL)}
	}

	var lastErr error
	for _, path := range discoveryPaths {
		candidate := *base
		candidate.Path = base.Path + path
		p.log.Debug("Trying to fetch OpenAPI documentation", zap.String("url", candidate.String()))

		doc, err := p.fetch(ctx, &candidate)
		if err == nil {
			p.log.Info("Fetched OpenAPI documentation", zap.String("url", candidate.String()))
			return doc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err
	}
	return nil, &types.OpError{
		Op:   "parser.discover",
		Kind: types.KindNotFound,
		Err:  fmt.Errorf("%w: no OpenAPI documentation below %s: %v", types.ErrNotFound, baseURL, lastErr),
	}
}

func (p *SwaggerParser) fetch(ctx context.Context, u *url.URL) (*openapi3.T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &types.OpError{Op: "parser.fetch", Kind: types.KindIO, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.OpError{Op: "parser.fetch", Kind: types.KindNotFound, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.OpError{Op: "parser.fetch", Kind: types.KindIO, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	doc, err := p.newLoader(ctx).LoadFromDataWithPath(body, u)
	if err != nil {
		return nil, &types.OpError{Op: "parser.fetch", Kind: types.KindInvalidRequest, Err: fmt.Errorf("failed to parse OpenAPI doc: %w", err)}
	}
	if len(doc.Servers) == 0 && p.opts.BaseURL == "" {
		// relative server URLs resolve against where the document was served
		doc.Servers = openapi3.Servers{{URL: (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()}}
	}
	return doc, p.validate(ctx, doc)
}

func (p *SwaggerParser) newLoader(ctx context.Context) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true
	return loader
}

func (p *SwaggerParser) validate(ctx context.Context, doc *openapi3.T) error {
	if !p.opts.Validate {
		return nil
	}
	if err := doc.Validate(ctx); err != nil {
		return &types.OpError{Op: "parser.validate", Kind: types.KindInvalidRequest, Err: errors.Join(types.ErrInvalidRequest, err)}
	}
	return nil
}
