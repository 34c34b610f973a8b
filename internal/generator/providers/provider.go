// Package providers contains the LLM backends used to expand a topic into
// source text for summarization.
package providers

import (
	"context"
	"time"
)

const (
	// Provider constants
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	// Default settings
	DefaultTimeout   = 30 * time.Second
	DefaultMaxTokens = 1024
)

// Prompt is a single-turn chat request.
type Prompt struct {
	System string
	User   string
}

// LLMProvider defines the interface for different LLM service providers
type LLMProvider interface {
	// Generate returns the model's reply to the prompt.
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds common configuration for LLM providers
type Config struct {
	APIKey  string
	ModelID string
	// BaseURL overrides the provider endpoint. Used by tests and proxies.
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}
