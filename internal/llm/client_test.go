package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeOpenAI answers chat completions with reply and records the last request
func fakeOpenAI(t *testing.T, status int, reply string) (*httptest.Server, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server, &got
}

func newTestClient(t *testing.T, server *httptest.Server) Client {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = server.URL + "/v1"
	client, err := NewClient(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return client
}

func TestSuggestRequestBody(t *testing.T) {
	server, got := fakeOpenAI(t, http.StatusOK, "```json\n{\n  \"name\": \"Rex\",\n  \"tag\": \"dog\"\n}\n```")
	client := newTestClient(t, server)

	body, err := client.SuggestRequestBody(context.Background(), OperationContext{
		Method:  "POST",
		Path:    "/pets",
		Summary: "Create a pet",
		Schema:  `{"type":"object","properties":{"name":{"type":"string"}}}`,
		Sample:  `{"name":"sample_string"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Rex","tag":"dog"}`, body)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "POST /pets")
	assert.Contains(t, got.Messages[1].Content, "Create a pet")
	assert.Contains(t, got.Messages[1].Content, `"sample_string"`)
}

func TestSuggestRequestBodyRejectsNonObject(t *testing.T) {
	for _, reply := range []string{"Sure! Here is a body.", "[1, 2]", "{\"name\": "} {
		server, _ := fakeOpenAI(t, http.StatusOK, reply)
		_, err := newTestClient(t, server).SuggestRequestBody(context.Background(), OperationContext{Method: "POST", Path: "/pets"})
		assert.Error(t, err, reply)
	}
}

func TestSuggestRequestBodyAPIError(t *testing.T) {
	server, _ := fakeOpenAI(t, http.StatusTooManyRequests, "")
	_, err := newTestClient(t, server).SuggestRequestBody(context.Background(), OperationContext{Method: "PUT", Path: "/pets/1"})
	assert.ErrorContains(t, err, "OpenAI API error")
}

func TestNewClientConfig(t *testing.T) {
	_, err := NewClient(Config{Provider: "openai"}, nil)
	assert.Error(t, err, "missing key")

	_, err = NewClient(Config{Provider: "llama", APIKey: "x"}, nil)
	assert.EqualError(t, err, "unsupported LLM provider: llama")
}

func TestParseBody(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a": 1}`, `{"a":1}`},
		{"```\n{\"a\": 1}\n```", `{"a":1}`},
		{"  ```json\n{\"a\": [1]}```  ", `{"a":[1]}`},
	}
	for _, tt := range tests {
		got, err := parseBody(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := buildPrompt(OperationContext{Method: "PATCH", Path: "/users/1"})
	assert.Contains(t, prompt, "PATCH /users/1")
	assert.NotContains(t, prompt, "schema")
	assert.NotContains(t, prompt, "Placeholder")
}
