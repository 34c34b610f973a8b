package textrank

import (
	"context"
	"errors"
	"math"
	"runtime"

	"github.com/localrivet/textsummarizer/internal/errortypes"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// CosineSimilarity returns the cosine of the angle between the term-frequency
// vectors of a and b, in [0, 1]. Empty vectors and disjoint vocabularies give 0.
func CosineSimilarity(a, b TokenVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	fa, fb := termFrequencies(a), termFrequencies(b)

	// Counts are integers, so these sums are exact regardless of map order.
	var dot float64
	for w, ca := range fa {
		if cb, ok := fb[w]; ok {
			dot += float64(ca * cb)
		}
	}
	if dot == 0 {
		return 0
	}

	var na, nb float64
	for _, c := range fa {
		na += float64(c * c)
	}
	for _, c := range fb {
		nb += float64(c * c)
	}
	denom := math.Sqrt(na * nb)
	if denom == 0 {
		return 0
	}
	return math.Min(dot/denom, 1)
}

// BuildSimilarityMatrix computes the pairwise cosine similarity of vectors.
// Rows are filled concurrently by at most workers goroutines; each cell of the
// upper triangle is written by exactly one of them, so the result does not
// depend on scheduling. The diagonal is zero.
func BuildSimilarityMatrix(ctx context.Context, vectors []TokenVector, workers int) (*mat.SymDense, error) {
	n := len(vectors)
	if n == 0 {
		return nil, errortypes.InvalidInputError(errors.New("no sentence vectors"), "cannot build similarity matrix")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	m := mat.NewSymDense(n, nil)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < n; j++ {
				m.SetSym(i, j, CosineSimilarity(vectors[i], vectors[j]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errortypes.ProcessingError(err, "similarity computation cancelled").
			WithField("sentences", n)
	}
	// The group context is only cancelled by a failing row; check the caller's too.
	if err := ctx.Err(); err != nil {
		return nil, errortypes.ProcessingError(err, "similarity computation cancelled").
			WithField("sentences", n)
	}
	return m, nil
}
