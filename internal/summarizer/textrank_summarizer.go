package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/stopwords"
	"github.com/localrivet/textsummarizer/internal/telemetry"
	"github.com/localrivet/textsummarizer/internal/textrank"
)

const (
	// Default settings
	DefaultCacheCapacity = 1000
	DefaultCacheTTL      = 24 * time.Hour
)

// Config holds configuration for the TextRankSummarizer
type Config struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
	Workers       int
	PreserveOrder bool
	// StopwordsPath names an optional file of extra stopwords.
	StopwordsPath string
	// CacheCapacity of zero disables caching.
	CacheCapacity int
	CacheTTL      time.Duration
}

// DefaultConfig returns the standard settings.
func DefaultConfig() *Config {
	opts := textrank.DefaultOptions()
	return &Config{
		Damping:       opts.Damping,
		Tolerance:     opts.Tolerance,
		MaxIterations: opts.MaxIterations,
		CacheCapacity: DefaultCacheCapacity,
		CacheTTL:      DefaultCacheTTL,
	}
}

// TextRankSummarizer implements Summarizer with the TextRank engine. Results
// are cached by input, sentence count and order; the engine is deterministic
// so a cached result is identical to a fresh one.
type TextRankSummarizer struct {
	config  Config
	engine  *textrank.Engine
	cache   *summaryCache
	metrics *telemetry.MetricsCollector
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewTextRankSummarizer creates a summarizer. Initialize must be called before use.
func NewTextRankSummarizer(config *Config, metrics *telemetry.MetricsCollector, logger *slog.Logger) *TextRankSummarizer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TextRankSummarizer{
		config:  *config,
		cache:   newSummaryCache(config.CacheCapacity, config.CacheTTL),
		metrics: metrics,
		logger:  logger.With("component", "summarizer"),
	}
}

// Initialize loads the stopwords and builds the engine. It is idempotent.
func (s *TextRankSummarizer) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		return nil
	}

	set, err := stopwords.Resolve(s.config.StopwordsPath)
	if err != nil {
		return errortypes.ConfigError(err, "failed to load stopwords").WithField("path", s.config.StopwordsPath)
	}

	opts := textrank.DefaultOptions()
	if s.config.Damping != 0 {
		opts.Damping = s.config.Damping
	}
	if s.config.Tolerance != 0 {
		opts.Tolerance = s.config.Tolerance
	}
	if s.config.MaxIterations != 0 {
		opts.MaxIterations = s.config.MaxIterations
	}
	if s.config.Workers != 0 {
		opts.Workers = s.config.Workers
	}
	if s.config.PreserveOrder {
		opts.Order = textrank.OrderSource
	}
	opts.Stopwords = set
	opts.Logger = s.logger

	engine, err := textrank.NewEngine(opts)
	if err != nil {
		return err
	}
	s.engine = engine
	s.logger.Debug("Summarizer initialized",
		"stopwords", set.Len(), "order", opts.Order.String(), "workers", opts.Workers)
	return nil
}

func (s *TextRankSummarizer) getEngine() (*textrank.Engine, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine != nil {
		return engine, nil
	}
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, nil
}

// DefaultOrder returns the order used by Summarize.
func (s *TextRankSummarizer) DefaultOrder() textrank.Order {
	if s.config.PreserveOrder {
		return textrank.OrderSource
	}
	return textrank.OrderScore
}

// Summarize implements Summarizer.
func (s *TextRankSummarizer) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	res, err := s.SummarizeDetailed(ctx, text, sentences, s.DefaultOrder())
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// SummarizeDetailed returns the full ranking result. The returned value may
// be shared with the cache and must not be modified.
func (s *TextRankSummarizer) SummarizeDetailed(ctx context.Context, text string, sentences int, order textrank.Order) (*textrank.Result, error) {
	s.metrics.IncrementCounter(telemetry.MetricRequests, 1)

	engine, err := s.getEngine()
	if err != nil {
		return nil, err
	}

	key := cacheKey(text, sentences, order)
	if res, found := s.cache.get(key); found {
		s.metrics.IncrementCounter(telemetry.MetricCacheHits, 1)
		return res, nil
	}
	s.metrics.IncrementCounter(telemetry.MetricCacheMisses, 1)

	start := time.Now()
	res, err := engine.SummarizeOrdered(ctx, text, sentences, order)
	s.metrics.RecordTimer(telemetry.MetricEngineTime, time.Since(start))
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	if res.Converged {
		s.metrics.IncrementCounter(telemetry.MetricConverged, 1)
	} else {
		s.metrics.IncrementCounter(telemetry.MetricNotConverged, 1)
	}
	s.metrics.SetGauge(telemetry.MetricLastIterations, float64(res.Iterations))
	s.metrics.SetGauge(telemetry.MetricLastSentences, float64(res.SentenceCount))
	s.metrics.RecordTimestamp(telemetry.MetricLastSummary)

	size := s.cache.put(key, res)
	s.metrics.SetGauge(telemetry.MetricCacheSize, float64(size))
	return res, nil
}

func (s *TextRankSummarizer) recordFailure(err error) {
	switch {
	case errortypes.IsInvalidInputError(err):
		s.metrics.IncrementCounter(telemetry.MetricInvalidInput, 1)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.IncrementCounter(telemetry.MetricProcessingErrors, 1)
		s.logger.Warn("Summarization cancelled", "error", err)
	default:
		s.metrics.IncrementCounter(telemetry.MetricProcessingErrors, 1)
		errortypes.LogError(s.logger, err)
	}
}

// Vectorizer exposes the engine's vectorizer for similarity search over summaries.
func (s *TextRankSummarizer) Vectorizer() (*textrank.Vectorizer, error) {
	engine, err := s.getEngine()
	if err != nil {
		return nil, err
	}
	return engine.Vectorizer(), nil
}

// GetMetrics returns the metrics collector for this summarizer
func (s *TextRankSummarizer) GetMetrics() *telemetry.MetricsCollector {
	return s.metrics
}

// ClearCache drops every cached result.
func (s *TextRankSummarizer) ClearCache() {
	s.cache.clear()
	s.metrics.SetGauge(telemetry.MetricCacheSize, 0)
}

// Initialized reports whether the engine has been built.
func (s *TextRankSummarizer) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine != nil
}
