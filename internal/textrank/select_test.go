package textrank

import (
	"testing"

	"github.com/localrivet/textsummarizer/internal/errortypes"
)

func TestSelect(t *testing.T) {
	sents := []Sentence{
		{Index: 0, Text: "A."},
		{Index: 1, Text: "B."},
		{Index: 2, Text: "C."},
		{Index: 3, Text: "D."},
	}
	scores := []float64{0.1, 0.4, 0.1, 0.4}

	tests := []struct {
		name  string
		k     int
		order Order
		want  []int
	}{
		{name: "top two ties by index", k: 2, order: OrderScore, want: []int{1, 3}},
		{name: "tie at cutoff picks lower index", k: 3, order: OrderScore, want: []int{1, 3, 0}},
		{name: "k larger than input", k: 10, order: OrderScore, want: []int{1, 3, 0, 2}},
		{name: "source order", k: 3, order: OrderSource, want: []int{0, 1, 3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Select(sents, scores, test.k, test.order)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if len(got) != len(test.want) {
				t.Fatalf("Select() returned %d sentences, want %d", len(got), len(test.want))
			}
			for i, s := range got {
				if s.Index != test.want[i] {
					t.Errorf("position %d = sentence %d, want %d", i, s.Index, test.want[i])
				}
			}
		})
	}
}

func TestSelectRanks(t *testing.T) {
	sents := []Sentence{{Index: 0, Text: "A."}, {Index: 1, Text: "B."}}
	got, err := Select(sents, []float64{0.3, 0.7}, 2, OrderSource)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got[0].Rank != 2 || got[1].Rank != 1 {
		t.Errorf("ranks = %d,%d, want 2,1", got[0].Rank, got[1].Rank)
	}
	if Join(got) != "A. B." {
		t.Errorf("Join() = %q, want %q", Join(got), "A. B.")
	}
}

func TestSelectErrors(t *testing.T) {
	sents := []Sentence{{Index: 0, Text: "A."}}

	for _, k := range []int{0, -1} {
		if _, err := Select(sents, []float64{1}, k, OrderScore); !errortypes.IsInvalidInputError(err) {
			t.Errorf("Select(k=%d) error = %v, want invalid input", k, err)
		}
	}
	if _, err := Select(sents, []float64{1, 2}, 1, OrderScore); !errortypes.IsProcessingError(err) {
		t.Errorf("mismatched scores error = %v, want processing error", err)
	}
	if _, err := Select(sents, []float64{1}, 1, Order(7)); !errortypes.IsInvalidInputError(err) {
		t.Errorf("unknown order error = %v, want invalid input", err)
	}
	if got := Order(7).String(); got != "Order(7)" {
		t.Errorf("Order(7).String() = %q", got)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{in: "", want: OrderScore},
		{in: "score", want: OrderScore},
		{in: "Source", want: OrderSource},
		{in: "original", want: OrderSource},
		{in: "random", wantErr: true},
	}
	for _, test := range tests {
		got, err := ParseOrder(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseOrder(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			continue
		}
		if !test.wantErr && got != test.want {
			t.Errorf("ParseOrder(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}
