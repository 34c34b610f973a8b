package textrank

import (
	"errors"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// Sentence is one segment of the input text. Index is its 0-based position
// in the segmented sequence and never changes.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

var (
	punkt     *sentences.DefaultSentenceTokenizer
	punktErr  error
	punktOnce sync.Once
)

// sentenceTokenizer returns the shared Punkt tokenizer trained on English.
// Tokenize does not mutate the tokenizer, so one instance serves every request.
func sentenceTokenizer() (*sentences.DefaultSentenceTokenizer, error) {
	punktOnce.Do(func() {
		punkt, punktErr = english.NewSentenceTokenizer(nil)
	})
	return punkt, punktErr
}

// Segment splits raw text into ordered sentences using abbreviation-aware
// sentence boundary rules. Fragments that are empty after trimming are dropped
// and the remaining sentences are indexed from 0.
func Segment(text string) ([]Sentence, error) {
	if !utf8.ValidString(text) {
		return nil, errortypes.ProcessingError(errors.New("text is not valid UTF-8"), "failed to segment text")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errortypes.InvalidInputError(errors.New("text is empty"), "no text to summarize")
	}

	tokenizer, err := sentenceTokenizer()
	if err != nil {
		return nil, errortypes.ProcessingError(err, "failed to load sentence tokenizer")
	}

	var out []Sentence
	for _, s := range tokenizer.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if !hasWordRune(t) {
			continue
		}
		out = append(out, Sentence{Index: len(out), Text: t})
	}

	if len(out) == 0 {
		return nil, errortypes.InvalidInputError(errors.New("no sentences found"), "text contains no extractable sentence")
	}
	return out, nil
}

// hasWordRune reports whether s holds at least one letter or digit.
func hasWordRune(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0
}
