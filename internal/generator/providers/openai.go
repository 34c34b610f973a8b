package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements the LLMProvider interface for OpenAI's chat models
type OpenAIProvider struct {
	Config
	client *openai.Client
}

// NewOpenAIProvider creates a new instance of the OpenAI provider. Retries are
// left to the caller, so the SDK's own retry loop is disabled.
func NewOpenAIProvider(config Config) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: config.timeout()}),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return &OpenAIProvider{
		Config: config,
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Generate implements the LLMProvider interface for OpenAI
func (p *OpenAIProvider) Generate(ctx context.Context, prompt Prompt) (string, error) {
	if p.APIKey == "" {
		return "", errors.New("OpenAI API key not provided")
	}

	model := p.ModelID
	if model == "" {
		model = DefaultOpenAIModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:  openai.F(messages),
		Model:     openai.F(openai.ChatModel(model)),
		MaxTokens: openai.Int(int64(p.maxTokens())),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", errors.New("empty response from OpenAI API")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
