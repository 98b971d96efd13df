package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pair is a single name/value entry of a header or query mapping
type Pair struct {
	Name  string
	Value string
}

// Pairs is a mapping that remembers the order its entries were written in.
// It decodes from a JSON object or a YAML mapping and encodes back to a JSON
// object with the same key order.
type Pairs []Pair

// Add appends an entry
func (p *Pairs) Add(name, value string) {
	*p = append(*p, Pair{Name: name, Value: value})
}

// Get returns the value of the first entry called name
func (p Pairs) Get(name string) (string, bool) {
	for _, pair := range p {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Pairs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	out := make(Pairs, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode value of %q: %w", key, err)
		}
		out.Add(key, scalarText(raw))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

// scalarText turns a raw JSON value into the text a user typed for it:
// strings lose their quotes, null becomes empty and anything else keeps its
// compact JSON form.
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}

// MarshalJSON implements json.Marshaler
func (p Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pair.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	out := make(Pairs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a scalar", value.Line, key.Value)
		}
		text := value.Value
		if value.ShortTag() == "!!null" {
			text = ""
		}
		out.Add(key.Value, text)
	}

	*p = out
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (p Pairs) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pair := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: pair.Value},
		)
	}
	return node, nil
}
