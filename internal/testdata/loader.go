package testdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"api-test-generator/internal/types"
)

// Loader reads request descriptions from JSON or YAML files. A file holds
// either a single description or a list of them.
type Loader struct {
	dir string
}

// NewLoader creates a new loader resolving relative paths against dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every request description in the file, in file order
func (l *Loader) Load(name string) ([]types.RequestDescription, error) {
	path := name
	if !filepath.IsAbs(path) && l.dir != "" {
		path = filepath.Join(l.dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.OpError{Op: "testdata.load", Kind: types.KindIO, Err: err}
	}

	var requests []types.RequestDescription
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		requests, err = ParseJSON(data)
	case ".yaml", ".yml":
		requests, err = ParseYAML(data)
	default:
		err = fmt.Errorf("%w: unsupported request file extension %q", types.ErrInvalidRequest, filepath.Ext(path))
	}
	if err != nil {
		return nil, &types.OpError{Op: "testdata.load", Kind: types.KindInvalidRequest, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return requests, nil
}

// ParseJSON decodes a single request description or an array of them
func ParseJSON(data []byte) ([]types.RequestDescription, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty request file", types.ErrInvalidRequest)
	}

	var requests []types.RequestDescription
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("failed to parse requests: %w", err)
		}
	} else {
		var single types.RequestDescription
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
		requests = append(requests, single)
	}
	return normalize(requests), nil
}

// ParseYAML decodes a single request description or a sequence of them
func ParseYAML(data []byte) ([]types.RequestDescription, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse requests: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty request file", types.ErrInvalidRequest)
	}

	root := doc.Content[0]
	var requests []types.RequestDescription
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&requests); err != nil {
			return nil, fmt.Errorf("failed to parse requests: %w", err)
		}
	case yaml.MappingNode:
		var single types.RequestDescription
		if err := root.Decode(&single); err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
		requests = append(requests, single)
	default:
		return nil, fmt.Errorf("%w: request file must hold a mapping or a sequence", types.ErrInvalidRequest)
	}
	return normalize(requests), nil
}

func normalize(requests []types.RequestDescription) []types.RequestDescription {
	for i := range requests {
		requests[i].Normalize()
	}
	return requests
}
