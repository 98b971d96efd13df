package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"api-test-generator/internal/logger"
)

const systemPrompt = "You write request payloads for REST API tests. Reply with a single JSON object and nothing else."

// OpenAIClient implements Client using OpenAI's chat completion API
type OpenAIClient struct {
	config Config
	client *openai.Client
	log    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config Config, log *zap.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		log:    logger.OrNop(log),
	}
}

// SuggestRequestBody asks the model for a body matching the operation
func (c *OpenAIClient) SuggestRequestBody(ctx context.Context, op OperationContext) (string, error) {
	log := c.log.With(zap.String("method", op.Method), zap.String("path", op.Path))

	response, err := c.callLLM(ctx, buildPrompt(op))
	if err != nil {
		log.Warn("LLM request failed", zap.Error(err))
		return "", fmt.Errorf("failed to suggest request body: %w", err)
	}

	body, err := parseBody(response)
	if err != nil {
		log.Warn("LLM response rejected", zap.String("response", response), zap.Error(err))
		return "", err
	}
	log.Debug("LLM suggested request body", zap.String("body", body))
	return body, nil
}

// callLLM implements the actual LLM API call for OpenAI
func (c *OpenAIClient) callLLM(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: float32(c.config.Temperature),
			MaxTokens:   c.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
