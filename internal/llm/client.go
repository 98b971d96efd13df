package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

func buildPrompt(op OperationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a realistic JSON request body for %s %s.\n", op.Method, op.Path)
	if op.Summary != "" {
		fmt.Fprintf(&b, "Operation: %s\n", op.Summary)
	}
	if op.Schema != "" {
		fmt.Fprintf(&b, "The body must satisfy this JSON schema:\n%s\n", op.Schema)
	}
	if op.Sample != "" {
		fmt.Fprintf(&b, "Placeholder body generated from the schema:\n%s\n", op.Sample)
		b.WriteString("Replace placeholder values with plausible data and keep the same fields.\n")
	}
	b.WriteString("Respond with the JSON object only.")
	return b.String()
}

// parseBody accepts a bare JSON object or one wrapped in a markdown code
// fence and returns it compacted
func parseBody(response string) (string, error) {
	text := stripCodeFence(strings.TrimSpace(response))
	if !strings.HasPrefix(text, "{") {
		return "", fmt.Errorf("LLM response is not a JSON object")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return "", fmt.Errorf("failed to parse LLM response: %w", err)
	}
	return buf.String(), nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// drop the language tag line
		text = text[i+1:]
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}
