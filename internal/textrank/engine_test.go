package textrank

import (
	"context"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"gonum.org/v1/gonum/floats"
)

const article = "Solar power is growing quickly around the world. " +
	"Many countries now install more solar panels than ever before. " +
	"The price of solar panels has fallen sharply over the last decade. " +
	"Cheaper panels make solar power attractive for homes and businesses. " +
	"My neighbour owns a red bicycle."

func newTestEngine(t *testing.T, mutate func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestEngineSingleSentence(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.Summarize(context.Background(), "The sky is blue.", 3)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Summary != "The sky is blue." {
		t.Errorf("Summary = %q, want %q", res.Summary, "The sky is blue.")
	}
	if res.SentenceCount != 1 || len(res.Sentences) != 1 {
		t.Errorf("expected exactly one sentence, got %+v", res)
	}
}

func TestEngineDuplicateSentences(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.Summarize(context.Background(), "Cats are mammals. Cats are mammals.", 1)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Summary != "Cats are mammals." {
		t.Errorf("Summary = %q, want %q", res.Summary, "Cats are mammals.")
	}
	if res.Sentences[0].Index != 0 {
		t.Errorf("tie resolved to sentence %d, want 0", res.Sentences[0].Index)
	}
	if res.Scores[0] != res.Scores[1] {
		t.Errorf("Scores = %v, want equal", res.Scores)
	}
}

func TestEngineFewerSentencesThanRequested(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.Summarize(context.Background(), "Dogs bark loudly. Birds sing softly.", 10)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(res.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(res.Sentences))
	}
	for _, s := range []string{"Dogs bark loudly.", "Birds sing softly."} {
		if !strings.Contains(res.Summary, s) {
			t.Errorf("Summary %q missing %q", res.Summary, s)
		}
	}
}

func TestEngineArticle(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.Summarize(context.Background(), article, 2)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.SentenceCount != 5 {
		t.Fatalf("SentenceCount = %d, want 5", res.SentenceCount)
	}
	if len(res.Scores) != 5 {
		t.Fatalf("len(Scores) = %d, want 5", len(res.Scores))
	}
	if sum := floats.Sum(res.Scores); math.Abs(sum-1) > 1e-9 {
		t.Errorf("scores sum to %v", sum)
	}
	if !res.Converged {
		t.Errorf("expected convergence, iterations = %d", res.Iterations)
	}
	if strings.Contains(res.Summary, "bicycle") {
		t.Errorf("unrelated sentence selected: %q", res.Summary)
	}
	// Score order: each selected sentence scores at least as high as the next.
	for i := 1; i < len(res.Sentences); i++ {
		if res.Sentences[i-1].Score < res.Sentences[i].Score {
			t.Errorf("sentences not in score order: %+v", res.Sentences)
		}
	}
	// Every selected sentence appears verbatim in the input.
	for _, s := range res.Sentences {
		if !strings.Contains(article, s.Text) {
			t.Errorf("sentence %q not found in input", s.Text)
		}
	}
}

func TestEngineSourceOrder(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Order = OrderSource })

	res, err := e.Summarize(context.Background(), article, 3)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	for i := 1; i < len(res.Sentences); i++ {
		if res.Sentences[i-1].Index > res.Sentences[i].Index {
			t.Errorf("sentences not in source order: %+v", res.Sentences)
		}
	}
	if res.Order != "source" {
		t.Errorf("Order = %q, want source", res.Order)
	}
}

func TestEngineDeterministic(t *testing.T) {
	first := newTestEngine(t, func(o *Options) { o.Workers = 1 })
	second := newTestEngine(t, func(o *Options) { o.Workers = 8 })

	a, err := first.Summarize(context.Background(), article, 3)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		b, err := second.Summarize(context.Background(), article, 3)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if a.Summary != b.Summary || !reflect.DeepEqual(a.Scores, b.Scores) {
			t.Fatalf("run %d differs: %q vs %q", i, a.Summary, b.Summary)
		}
	}
}

func TestEngineErrors(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		name     string
		text     string
		k        int
		wantType errortypes.ErrorType
	}{
		{name: "empty text", text: "", k: 3, wantType: errortypes.ErrorTypeInvalidInput},
		{name: "whitespace text", text: "   ", k: 3, wantType: errortypes.ErrorTypeInvalidInput},
		{name: "zero count", text: article, k: 0, wantType: errortypes.ErrorTypeInvalidInput},
		{name: "negative count", text: article, k: -2, wantType: errortypes.ErrorTypeInvalidInput},
		{name: "invalid utf-8", text: "Broken \xff text. More text.", k: 1, wantType: errortypes.ErrorTypeProcessing},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := e.Summarize(context.Background(), test.text, test.k)
			if got := errortypes.TypeOf(err); got != test.wantType {
				t.Errorf("error = %v (type %q), want type %q", err, got, test.wantType)
			}
		})
	}
}

func TestEngineRejectsUnknownOrder(t *testing.T) {
	e := newTestEngine(t, nil)

	for _, order := range []Order{Order(7), Order(-1)} {
		for _, text := range []string{article, "Only one sentence here."} {
			_, err := e.SummarizeOrdered(context.Background(), text, 2, order)
			if !errortypes.IsInvalidInputError(err) {
				t.Errorf("SummarizeOrdered(order=%d) error = %v, want invalid input", int(order), err)
			}
		}
	}
}

func TestEngineCancelled(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Summarize(ctx, article, 2); !errortypes.IsProcessingError(err) {
		t.Errorf("error = %v, want processing error", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "damping zero", mutate: func(o *Options) { o.Damping = 0 }},
		{name: "damping one", mutate: func(o *Options) { o.Damping = 1 }},
		{name: "tolerance", mutate: func(o *Options) { o.Tolerance = 0 }},
		{name: "iterations", mutate: func(o *Options) { o.MaxIterations = 0 }},
		{name: "workers", mutate: func(o *Options) { o.Workers = -1 }},
		{name: "order", mutate: func(o *Options) { o.Order = Order(7) }},
	}

	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("DefaultOptions().Validate() error = %v", err)
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := DefaultOptions()
			test.mutate(&opts)
			if _, err := NewEngine(opts); err == nil {
				t.Error("NewEngine() error = nil, want error")
			}
		})
	}
}
