// Package generator expands a topic into explanatory text with an LLM, so the
// text can then be summarized extractively.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/generator/providers"
	"github.com/localrivet/textsummarizer/internal/telemetry"
)

const (
	// Default settings
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	// ProviderNone disables topic generation.
	ProviderNone = "none"

	systemPrompt = "You are a knowledgeable assistant that provides detailed information about topics."
	topicPrompt  = "Write a detailed explanation about %s"
)

// Config holds configuration for the Generator
type Config struct {
	ProviderName  string
	ModelID       string
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	FallbackOrder []string
	// FallbackKeys maps fallback provider names to their API keys.
	FallbackKeys map[string]string
}

// Generator turns a topic into text, retrying each provider and then falling
// back through the configured chain.
type Generator struct {
	provider   providers.LLMProvider
	fallbacks  []providers.LLMProvider
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// New creates a Generator from config. A "none" provider yields a Generator
// that rejects every request with a configuration error.
func New(config *Config, metrics *telemetry.MetricsCollector, logger *slog.Logger) (*Generator, error) {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}

	g := &Generator{
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		metrics:    metrics,
		logger:     logger.With("component", "generator"),
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.maxRetries < 0 {
		g.maxRetries = DefaultMaxRetries
	}
	if g.retryDelay <= 0 {
		g.retryDelay = DefaultRetryDelay
	}

	name := strings.ToLower(strings.TrimSpace(config.ProviderName))
	if name == "" || name == ProviderNone {
		return g, nil
	}

	configs := map[string]providers.Config{
		name: {
			APIKey:  config.APIKey,
			ModelID: config.ModelID,
			BaseURL: config.BaseURL,
			Timeout: g.timeout,
		},
	}
	for _, fb := range config.FallbackOrder {
		fb = strings.ToLower(strings.TrimSpace(fb))
		if fb == "" || fb == name {
			continue
		}
		configs[fb] = providers.Config{APIKey: config.FallbackKeys[fb], Timeout: g.timeout}
	}

	factory := providers.NewProviderFactory(configs)
	primary, err := factory.GetProvider(name)
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to create generator provider").WithField("provider", name)
	}
	g.provider = primary

	for _, p := range factory.GetProviderChain(config.FallbackOrder) {
		if p.Name() != name {
			g.fallbacks = append(g.fallbacks, p)
		}
	}
	return g, nil
}

// NewWithProviders creates a Generator around ready-made providers.
func NewWithProviders(primary providers.LLMProvider, fallbacks []providers.LLMProvider, maxRetries int, retryDelay time.Duration, metrics *telemetry.MetricsCollector) *Generator {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &Generator{
		provider:   primary,
		fallbacks:  fallbacks,
		timeout:    DefaultTimeout,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		metrics:    metrics,
		logger:     slog.Default().With("component", "generator"),
	}
}

// Enabled reports whether a provider is configured.
func (g *Generator) Enabled() bool {
	return g != nil && g.provider != nil
}

// Providers returns the names of the primary and fallback providers, in order.
func (g *Generator) Providers() []string {
	if !g.Enabled() {
		return nil
	}
	names := []string{g.provider.Name()}
	for _, p := range g.fallbacks {
		names = append(names, p.Name())
	}
	return names
}

// GenerateFromTopic asks the configured LLM for a detailed explanation of topic.
func (g *Generator) GenerateFromTopic(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", errortypes.InvalidInputError(errors.New("topic is empty"), "no topic provided")
	}
	if !g.Enabled() {
		return "", errortypes.ConfigError(errors.New("no generator provider configured"), "topic generation is disabled")
	}

	prompt := providers.Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(topicPrompt, topic),
	}

	start := time.Now()
	defer func() {
		g.metrics.RecordTimer(telemetry.MetricGeneratorTime, time.Since(start))
	}()

	chain := append([]providers.LLMProvider{g.provider}, g.fallbacks...)
	var lastErr error
	for i, p := range chain {
		if i > 0 {
			g.metrics.IncrementCounter(telemetry.MetricGeneratorFallbacks, 1)
			g.logger.Warn("Falling back to next provider", "provider", p.Name(), "previous_error", lastErr)
		}
		g.metrics.IncrementCounter(telemetry.ProviderMetric(telemetry.MetricGeneratorCalls, p.Name()), 1)

		text, err := g.generateWithRetries(ctx, p, prompt)
		if err == nil {
			g.metrics.IncrementCounter(telemetry.MetricGeneratorSuccess, 1)
			g.logger.Debug("Generated text from topic", "provider", p.Name(), "length", len(text))
			return text, nil
		}
		g.metrics.IncrementCounter(telemetry.MetricGeneratorFailure, 1)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", errortypes.ExternalError(lastErr, "text generation failed").
		WithField("providers", len(chain))
}

// generateWithRetries calls one provider up to maxRetries+1 times with a
// linearly growing delay between attempts.
func (g *Generator) generateWithRetries(ctx context.Context, p providers.LLMProvider, prompt providers.Prompt) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.metrics.IncrementCounter(telemetry.MetricGeneratorRetries, 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.retryDelay * time.Duration(attempt)):
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := p.Generate(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		g.logger.Debug("Provider call failed", "provider", p.Name(), "attempt", attempt+1, "error", err)
		lastErr = err
	}
	return "", lastErr
}

// CheckProviderHealth reports which providers answer a short prompt.
func (g *Generator) CheckProviderHealth(ctx context.Context) map[string]bool {
	results := make(map[string]bool)
	if !g.Enabled() {
		return results
	}
	for _, p := range append([]providers.LLMProvider{g.provider}, g.fallbacks...) {
		if _, checked := results[p.Name()]; checked {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := p.Generate(callCtx, providers.Prompt{User: "Reply with OK."})
		cancel()
		results[p.Name()] = err == nil
	}
	return results
}
