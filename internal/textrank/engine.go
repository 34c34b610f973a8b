// Package textrank implements extractive summarization with the TextRank
// algorithm: sentences are segmented, turned into stopword-filtered token
// vectors, linked by cosine similarity and ranked with damped PageRank. The
// top ranked sentences are returned verbatim.
package textrank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/stopwords"
)

// DefaultSentenceCount is the summary length used when callers do not ask for one.
const DefaultSentenceCount = 3

// Options configures an Engine.
type Options struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
	// Workers bounds the goroutines used for the similarity matrix.
	// Zero means GOMAXPROCS.
	Workers int
	Order   Order
	// Stopwords defaults to the built-in English list.
	Stopwords stopwords.Set
	Logger    *slog.Logger
}

// DefaultOptions returns the standard TextRank settings.
func DefaultOptions() Options {
	return Options{
		Damping:       DefaultDamping,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Workers:       runtime.GOMAXPROCS(0),
		Order:         OrderScore,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	switch {
	case o.Damping <= 0 || o.Damping >= 1:
		return errortypes.ConfigError(fmt.Errorf("damping %v outside (0, 1)", o.Damping), "invalid engine options")
	case o.Tolerance <= 0:
		return errortypes.ConfigError(fmt.Errorf("tolerance %v must be positive", o.Tolerance), "invalid engine options")
	case o.MaxIterations <= 0:
		return errortypes.ConfigError(fmt.Errorf("max iterations %d must be positive", o.MaxIterations), "invalid engine options")
	case o.Workers < 0:
		return errortypes.ConfigError(fmt.Errorf("workers %d must not be negative", o.Workers), "invalid engine options")
	case !o.Order.Valid():
		return errortypes.ConfigError(fmt.Errorf("unknown order %d", o.Order), "invalid engine options")
	}
	return nil
}

// Result is the outcome of one summarization.
type Result struct {
	Summary string `json:"summary"`
	// Sentences are the selected sentences in emission order.
	Sentences []RankedSentence `json:"sentences"`
	// Scores holds one score per input sentence, by sentence index.
	Scores        []float64 `json:"scores"`
	SentenceCount int       `json:"sentence_count"`
	Iterations    int       `json:"iterations"`
	Converged     bool      `json:"converged"`
	Order         string    `json:"order"`
}

// Engine runs the summarization pipeline. It keeps no per-request state and
// is safe for concurrent use.
type Engine struct {
	opts       Options
	vectorizer *Vectorizer
	logger     *slog.Logger
}

// NewEngine creates an Engine after validating opts.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		opts:       opts,
		vectorizer: NewVectorizer(opts.Stopwords),
		logger:     logger.With("component", "textrank"),
	}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Vectorizer returns the vectorizer used by the engine.
func (e *Engine) Vectorizer() *Vectorizer { return e.vectorizer }

// Summarize returns the k most central sentences of text using the engine's
// configured order.
func (e *Engine) Summarize(ctx context.Context, text string, k int) (*Result, error) {
	return e.SummarizeOrdered(ctx, text, k, e.opts.Order)
}

// SummarizeOrdered is Summarize with an explicit output order.
func (e *Engine) SummarizeOrdered(ctx context.Context, text string, k int, order Order) (*Result, error) {
	if k <= 0 {
		return nil, errortypes.InvalidInputError(errors.New("sentence count must be positive"), "invalid sentence count").
			WithField("requested", k)
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}

	sents, err := Segment(text)
	if err != nil {
		return nil, err
	}

	if len(sents) == 1 {
		return &Result{
			Summary:       sents[0].Text,
			Sentences:     []RankedSentence{{Sentence: sents[0], Score: 1, Rank: 1}},
			Scores:        []float64{1},
			SentenceCount: 1,
			Converged:     true,
			Order:         order.String(),
		}, nil
	}

	vectors := e.vectorizer.Vectorize(sents)
	matrix, err := BuildSimilarityMatrix(ctx, vectors, e.opts.Workers)
	if err != nil {
		return nil, err
	}

	rank := NewGraph(matrix).Rank(ctx, RankOptions{
		Damping:       e.opts.Damping,
		Tolerance:     e.opts.Tolerance,
		MaxIterations: e.opts.MaxIterations,
	})
	for i, s := range rank.Scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, errortypes.ProcessingError(fmt.Errorf("score of sentence %d is %v", i, s), "ranking produced an invalid score")
		}
	}
	switch {
	case rank.Cancelled:
		e.logger.Warn("ranking cancelled, using last scores",
			"sentences", len(sents), "iterations", rank.Iterations)
	case !rank.Converged:
		e.logger.Warn("ranking did not converge",
			"sentences", len(sents), "iterations", rank.Iterations, "delta", rank.Delta)
	}

	selected, err := Select(sents, rank.Scores, k, order)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("summarized text",
		"sentences", len(sents),
		"selected", len(selected),
		"iterations", rank.Iterations,
		"converged", rank.Converged)

	return &Result{
		Summary:       Join(selected),
		Sentences:     selected,
		Scores:        rank.Scores,
		SentenceCount: len(sents),
		Iterations:    rank.Iterations,
		Converged:     rank.Converged,
		Order:         order.String(),
	}, nil
}
