package motif

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

type aggregatorKey struct {
	length int
	width  int
}

// Aggregator turns a sequence's indicator matrix into motif position counts.
//
// For a sequence of length L and motif width W the aggregation matrix is
// L×W with entry (i, j) = 1 when position i can sit at motif column j, that
// is when 0 <= i-j <= L-W. Matrices are built once per (L, W) and cached.
// An Aggregator is safe for concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	cache map[aggregatorKey]*mat.Dense
}

// NewAggregator returns an empty aggregator cache.
func NewAggregator() *Aggregator {
	return &Aggregator{cache: make(map[aggregatorKey]*mat.Dense)}
}

// DefaultAggregator is shared by callers that do not manage their own cache.
var DefaultAggregator = NewAggregator()

// Matrix returns the cached L×W aggregation matrix. The result must not be
// modified.
func (a *Aggregator) Matrix(length, width int) (mat.Matrix, error) {
	if width <= 0 {
		return nil, bioerr.Degenerate("aggregate", "motif width %d", width)
	}
	if length < width {
		return nil, bioerr.Shape("aggregate", "sequence length (minimum)", width, length)
	}

	key := aggregatorKey{length: length, width: width}
	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := a.cache[key]; ok {
		return m, nil
	}
	m := mat.NewDense(length, width, nil)
	for i := 0; i < length; i++ {
		for j := 0; j < width; j++ {
			if k := i - j; k >= 0 && k <= length-width {
				m.Set(i, j, 1)
			}
		}
	}
	a.cache[key] = m
	return m, nil
}

// Len returns the number of cached matrices.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

// Counts returns the 4×W base counts over every window of the sequence
// described by ind. With weights, the window starting at k contributes
// weights[k] instead of 1; len(weights) must be L-W+1.
func (a *Aggregator) Counts(ind mat.Matrix, width int, weights []float64) (*mat.Dense, error) {
	length, err := checkIndicator("aggregate", ind, width)
	if err != nil {
		return nil, err
	}
	agg, err := a.Matrix(length, width)
	if err != nil {
		return nil, err
	}

	if weights != nil {
		if n := length - width + 1; len(weights) != n {
			return nil, bioerr.Shape("aggregate", "window weights", n, len(weights))
		}
		scaled := mat.NewDense(length, width, nil)
		for i := 0; i < length; i++ {
			for j := 0; j < width; j++ {
				if v := agg.At(i, j); v != 0 {
					scaled.Set(i, j, v*weights[i-j])
				}
			}
		}
		agg = scaled
	}

	counts := mat.NewDense(NumBases, width, nil)
	counts.Mul(ind, agg)
	return counts, nil
}
