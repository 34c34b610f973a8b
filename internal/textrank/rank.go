package textrank

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Ranking defaults.
const (
	DefaultDamping       = 0.85
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100
)

// Edge is a weighted link to a neighbouring sentence.
type Edge struct {
	To     int
	Weight float64
}

// Graph is an undirected weighted sentence graph. Only pairs with positive
// similarity are linked and there are no self-loops.
type Graph struct {
	n         int
	adj       [][]Edge
	outWeight []float64
}

// NewGraph builds the sentence graph from a similarity matrix. Neighbour
// lists are kept in ascending index order so iteration is reproducible.
func NewGraph(m mat.Symmetric) *Graph {
	n := m.SymmetricDim()
	g := &Graph{
		n:         n,
		adj:       make([][]Edge, n),
		outWeight: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if w := m.At(i, j); w > 0 {
				g.adj[i] = append(g.adj[i], Edge{To: j, Weight: w})
				g.outWeight[i] += w
			}
		}
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return g.n }

// Neighbours returns the edges of node i.
func (g *Graph) Neighbours(i int) []Edge { return g.adj[i] }

// Degree returns the total edge weight of node i.
func (g *Graph) Degree(i int) float64 { return g.outWeight[i] }

// RankOptions configures the power iteration.
type RankOptions struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

func (o RankOptions) withDefaults() RankOptions {
	if o.Damping <= 0 || o.Damping >= 1 {
		o.Damping = DefaultDamping
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// RankResult holds the centrality scores and how the iteration ended.
type RankResult struct {
	Scores     []float64
	Iterations int
	Converged  bool
	// Delta is the L1 change of the last iteration.
	Delta float64
	// Cancelled is set when the context ended the iteration early.
	Cancelled bool
}

// Rank runs damped weighted PageRank until the L1 change between iterations
// drops below the tolerance or the iteration cap is reached. A node with no
// edges spreads its score uniformly over all other nodes. Scores are positive
// and sum to 1.
//
// Hitting the cap is not an error; the last scores are returned with
// Converged unset. A cancelled context stops the loop and keeps the scores
// of the last completed iteration.
func (g *Graph) Rank(ctx context.Context, opts RankOptions) RankResult {
	opts = opts.withDefaults()
	n := g.n
	switch n {
	case 0:
		return RankResult{Converged: true}
	case 1:
		return RankResult{Scores: []float64{1}, Converged: true}
	}

	nf := float64(n)
	d := opts.Damping
	teleport := (1 - d) / nf

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / nf
	}
	next := make([]float64, n)

	var res RankResult
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		var dangling float64
		for j := 0; j < n; j++ {
			if g.outWeight[j] == 0 {
				dangling += scores[j]
			}
		}

		for i := 0; i < n; i++ {
			fromDangling := dangling
			if g.outWeight[i] == 0 {
				fromDangling -= scores[i]
			}
			sum := math.Max(fromDangling, 0) / (nf - 1)
			for _, e := range g.adj[i] {
				sum += e.Weight * scores[e.To] / g.outWeight[e.To]
			}
			next[i] = teleport + d*sum
		}

		res.Delta = floats.Distance(next, scores, 1)
		scores, next = next, scores
		res.Iterations = iter
		if res.Delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	if total := floats.Sum(scores); total > 0 {
		floats.Scale(1/total, scores)
	}
	res.Scores = scores
	return res
}
