// Package summarizer provides interfaces and implementations for
// summarizing text content within the text summarizer service.
package summarizer

import (
	"context"

	"github.com/localrivet/textsummarizer/internal/textrank"
)

const (
	// DefaultSentences is the summary length used when callers ask for none.
	DefaultSentences = textrank.DefaultSentenceCount
)

// Summarizer defines the interface for summarizing text content.
type Summarizer interface {
	// Summarize returns a summary made of at most sentences sentences of text.
	Summarize(ctx context.Context, text string, sentences int) (string, error)

	// Initialize sets up the summarizer with any required configuration.
	Initialize() error
}

// DetailedSummarizer also exposes the ranking behind a summary.
type DetailedSummarizer interface {
	Summarizer
	SummarizeDetailed(ctx context.Context, text string, sentences int, order textrank.Order) (*textrank.Result, error)
}
