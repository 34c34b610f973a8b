// Package service runs a summarization request end to end: optional topic
// generation, TextRank summarization, sign language translation and
// persistence of the result. Both the MCP tools and the HTTP API call it.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/extract"
	"github.com/localrivet/textsummarizer/internal/generator"
	"github.com/localrivet/textsummarizer/internal/signlang"
	"github.com/localrivet/textsummarizer/internal/store"
	"github.com/localrivet/textsummarizer/internal/summarizer"
	"github.com/localrivet/textsummarizer/internal/telemetry"
	"github.com/localrivet/textsummarizer/internal/textrank"
	"github.com/localrivet/textsummarizer/internal/util"
)

const (
	// DefaultSentences is used when a request does not name a sentence count.
	DefaultSentences = summarizer.DefaultSentences

	// DefaultSearchLimit is used when a search does not name a limit.
	DefaultSearchLimit = 5
)

// Request describes one summarization. Topic wins over Text when both are set.
type Request struct {
	Topic        string `json:"topic,omitempty"`
	Text         string `json:"text,omitempty"`
	NumSentences int    `json:"num_sentences,omitempty"`
	// Order is "score" or "source"; empty uses the summarizer default.
	Order      string `json:"order,omitempty"`
	SourceKind string `json:"source_kind,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

// Response is the outcome of Process.
type Response struct {
	ID               string                    `json:"id,omitempty"`
	OriginalText     string                    `json:"original_text"`
	Summary          string                    `json:"summary"`
	Sentences        []textrank.RankedSentence `json:"sentences"`
	SignLanguageData map[string]any            `json:"sign_language_data,omitempty"`
	Iterations       int                       `json:"iterations"`
	Converged        bool                      `json:"converged"`
	Order            string                    `json:"order"`
	// Warnings lists optional steps that failed without failing the request.
	Warnings []string `json:"warnings,omitempty"`
}

// Components are the collaborators of a Service. Only Summarizer is required.
type Components struct {
	Summarizer *summarizer.TextRankSummarizer
	Generator  *generator.Generator
	Translator signlang.Translator
	Store      store.Store
	Metrics    *telemetry.MetricsCollector
	Logger     *slog.Logger
	// DefaultSentences replaces a zero sentence count. Zero means DefaultSentences.
	DefaultSentences int
	// MaxDocumentBytes caps the decompressed size of uploaded archives such
	// as DOCX. Zero means extract.DefaultMaxExpandedBytes.
	MaxDocumentBytes int64
}

// Service coordinates the components for each request.
type Service struct {
	summarizer *summarizer.TextRankSummarizer
	generator  *generator.Generator
	translator signlang.Translator
	store      store.Store
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
	sentences  int
	maxDoc     int64
}

// New creates a Service. A nil translator falls back to the stub.
func New(c Components) (*Service, error) {
	if c.Summarizer == nil {
		return nil, errortypes.ConfigError(errors.New("summarizer is nil"), "summarizer is required")
	}
	if c.Translator == nil {
		c.Translator = signlang.StubTranslator{}
	}
	if c.Metrics == nil {
		c.Metrics = c.Summarizer.GetMetrics()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DefaultSentences <= 0 {
		c.DefaultSentences = DefaultSentences
	}
	return &Service{
		summarizer: c.Summarizer,
		generator:  c.Generator,
		translator: c.Translator,
		store:      c.Store,
		metrics:    c.Metrics,
		logger:     c.Logger.With("component", "service"),
		sentences:  c.DefaultSentences,
		maxDoc:     c.MaxDocumentBytes,
	}, nil
}

// Summarizer returns the underlying summarizer.
func (s *Service) Summarizer() *summarizer.TextRankSummarizer {
	return s.summarizer
}

// HistoryEnabled reports whether summaries are persisted.
func (s *Service) HistoryEnabled() bool {
	return s.store != nil
}

// Process generates text from the topic when one is given, summarizes it,
// translates the summary and stores the result.
func (s *Service) Process(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordTimer(telemetry.MetricServiceTotalTime, time.Since(start))
	}()

	order, err := s.resolveOrder(req.Order)
	if err != nil {
		return nil, err
	}
	sentences := req.NumSentences
	if sentences == 0 {
		sentences = s.sentences
	}

	kind := req.SourceKind
	text := req.Text
	if strings.TrimSpace(req.Topic) != "" {
		kind = store.SourceTopic
		text, err = s.generator.GenerateFromTopic(ctx, req.Topic)
		if err != nil {
			errortypes.LogError(s.logger, err)
			return nil, err
		}
	}
	if kind == "" {
		kind = store.SourceText
	}
	s.metrics.IncrementCounter(telemetry.MetricRequestsByKind+kind, 1)

	if strings.TrimSpace(text) == "" {
		return nil, errortypes.InvalidInputError(errors.New("empty text"), "No text provided or generated")
	}

	res, err := s.summarizer.SummarizeDetailed(ctx, text, sentences, order)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		OriginalText: text,
		Summary:      res.Summary,
		Sentences:    res.Sentences,
		Iterations:   res.Iterations,
		Converged:    res.Converged,
		Order:        res.Order,
	}

	translation, err := s.translator.Translate(ctx, res.Summary)
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricSignErrors, 1)
		s.logger.Warn("Sign language translation failed", "translator", s.translator.Name(), "error", err)
		resp.Warnings = append(resp.Warnings, "sign language translation failed: "+err.Error())
	} else {
		resp.SignLanguageData = translation.SignLanguageData
	}

	if s.store != nil {
		record := &store.Record{
			ContentHash:   util.ContentHash(text),
			SourceKind:    kind,
			SourceText:    text,
			Summary:       res.Summary,
			SentenceCount: len(res.Sentences),
			Requested:     sentences,
		}
		if err := s.store.Save(record); err != nil {
			s.metrics.IncrementCounter(telemetry.MetricStoreErrors, 1)
			errortypes.LogError(s.logger, err)
			resp.Warnings = append(resp.Warnings, "summary was not saved: "+err.Error())
		} else {
			resp.ID = record.ID
		}
	}

	s.logger.Info("Processed summarization request",
		"kind", kind,
		"file", req.FileName,
		"hash", util.ShortHash(util.ContentHash(text)),
		"sentences", len(res.Sentences),
		"iterations", res.Iterations,
		"duration", time.Since(start))
	return resp, nil
}

func (s *Service) resolveOrder(name string) (textrank.Order, error) {
	if name == "" {
		return s.summarizer.DefaultOrder(), nil
	}
	return textrank.ParseOrder(name)
}

// SummarizeFile extracts the text of an uploaded document and processes it.
func (s *Service) SummarizeFile(ctx context.Context, name string, r io.Reader, sentences int, order string) (*Response, error) {
	text, err := extract.ExtractLimit(name, r, s.maxDoc)
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricExtractErrors, 1)
		return nil, err
	}
	return s.Process(ctx, Request{
		Text:         text,
		NumSentences: sentences,
		Order:        order,
		SourceKind:   store.SourceFile,
		FileName:     name,
	})
}

// SummarizePath summarizes a document on disk.
func (s *Service) SummarizePath(ctx context.Context, path string, sentences int, order string) (*Response, error) {
	text, err := extract.ExtractFileLimit(path, s.maxDoc)
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricExtractErrors, 1)
		return nil, err
	}
	return s.Process(ctx, Request{
		Text:         text,
		NumSentences: sentences,
		Order:        order,
		SourceKind:   store.SourceFile,
		FileName:     path,
	})
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return errortypes.UnsupportedError(errors.New("store disabled"), "summary history is disabled")
	}
	return nil
}

// GetSummary returns a stored summary.
func (s *Service) GetSummary(id string) (*store.Record, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, errortypes.InvalidInputError(errors.New("empty id"), "summary id is required")
	}
	return s.store.Get(id)
}

// ListSummaries returns up to limit stored summaries, newest first.
func (s *Service) ListSummaries(limit int) ([]store.Record, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	return s.store.List(limit)
}

// SearchSummaries returns the stored summaries most similar to query.
func (s *Service) SearchSummaries(query string, limit int) ([]store.SearchResult, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.store.Search(query, limit)
}

// DeleteSummary removes a stored summary.
func (s *Service) DeleteSummary(id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Deleted summary", "id", id)
	return nil
}

// ClearSummaries removes every stored summary and empties the result cache.
func (s *Service) ClearSummaries() (int, error) {
	if err := s.requireStore(); err != nil {
		return 0, err
	}
	n, err := s.store.Clear()
	if err != nil {
		return 0, err
	}
	s.summarizer.ClearCache()
	s.logger.Info("Cleared summaries", "count", n)
	return n, nil
}

// Health builds a health report. When checkProviders is set each generator
// provider is called once, which costs an API request per provider.
func (s *Service) Health(ctx context.Context, checkProviders bool) (*summarizer.HealthReport, error) {
	components := map[string]bool{}
	if s.store != nil {
		_, err := s.store.List(1)
		components["store"] = err == nil
	}
	if s.generator.Enabled() && checkProviders {
		for name, ok := range s.generator.CheckProviderHealth(ctx) {
			components["generator."+name] = ok
		}
	}
	return summarizer.CreateHealthReport(s.summarizer, components)
}

// Close releases the store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
