package textrank

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/localrivet/textsummarizer/internal/errortypes"
)

// Order controls how selected sentences are arranged in the summary.
type Order int

const (
	// OrderScore emits sentences by descending score.
	OrderScore Order = iota
	// OrderSource emits the selected sentences in their original reading order.
	OrderSource
)

func (o Order) String() string {
	switch o {
	case OrderScore:
		return "score"
	case OrderSource:
		return "source"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// Valid reports whether o is one of the defined orders.
func (o Order) Valid() bool {
	return o == OrderScore || o == OrderSource
}

func checkOrder(o Order) error {
	if o.Valid() {
		return nil
	}
	return errortypes.InvalidInputError(fmt.Errorf("unknown order %d", int(o)), "invalid sentence order").
		WithField("order", int(o))
}

// ParseOrder parses "score" or "source". The empty string means OrderScore.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "score":
		return OrderScore, nil
	case "source", "original", "document":
		return OrderSource, nil
	default:
		return OrderScore, errortypes.InvalidInputError(fmt.Errorf("unknown order %q", s), "invalid sentence order")
	}
}

// RankedSentence is a sentence with its centrality score. Rank is its 1-based
// position in the full score ordering.
type RankedSentence struct {
	Sentence
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// RankSentences orders every sentence by descending score, breaking ties by ascending
// index.
func RankSentences(sents []Sentence, scores []float64) ([]RankedSentence, error) {
	if len(sents) != len(scores) {
		return nil, errortypes.ProcessingError(
			fmt.Errorf("%d sentences but %d scores", len(sents), len(scores)),
			"score vector does not match sentences")
	}
	ranked := make([]RankedSentence, len(sents))
	for i, s := range sents {
		ranked[i] = RankedSentence{Sentence: s, Score: scores[i]}
	}
	slices.SortStableFunc(ranked, func(a, b RankedSentence) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// Select picks the min(k, len(sents)) highest scoring sentences.
func Select(sents []Sentence, scores []float64, k int, order Order) ([]RankedSentence, error) {
	if k <= 0 {
		return nil, errortypes.InvalidInputError(errors.New("sentence count must be positive"), "invalid sentence count").
			WithField("requested", k)
	}
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	ranked, err := RankSentences(sents, scores)
	if err != nil {
		return nil, err
	}
	top := ranked[:min(k, len(ranked))]
	if order == OrderSource {
		slices.SortFunc(top, func(a, b RankedSentence) int {
			return cmp.Compare(a.Index, b.Index)
		})
	}
	return top, nil
}

// Join concatenates the selected sentences with a single space.
func Join(selected []RankedSentence) string {
	parts := make([]string, len(selected))
	for i, s := range selected {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
