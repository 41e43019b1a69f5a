package motif

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// DefaultPseudocount is added to every count before a refined model is
// normalized, so no base ever gets zero weight.
const DefaultPseudocount = 0.1

// Background builds a background model of the given width from the
// unweighted counts over every window of every sequence. Sequences shorter
// than the width contribute nothing.
func Background(seqs []string, width int, agg *Aggregator) (*WeightMatrix, error) {
	if err := checkWidth("background", width); err != nil {
		return nil, err
	}
	if agg == nil {
		agg = DefaultAggregator
	}

	total := mat.NewDense(NumBases, width, nil)
	used := 0
	for i, seq := range seqs {
		if len(seq) < width {
			continue
		}
		ind, err := Matrixify(seq)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		counts, err := agg.Counts(ind, width, nil)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		total.Add(total, counts)
		used++
	}
	if used == 0 {
		return nil, bioerr.Degenerate("background", "no sequence has a window of width %d", width)
	}
	return Normalize(total, width)
}

// RefineOptions controls motif refinement.
type RefineOptions struct {
	// Pseudocount is added to every count before normalization.
	Pseudocount float64
	// Aggregator caches aggregation matrices; nil uses DefaultAggregator.
	Aggregator *Aggregator
	// OnIteration, if set, is called after each Refine iteration.
	OnIteration func(iteration int, w *WeightMatrix)
}

// RefineStep runs one MEME-style expectation-maximization step: every
// window of every sequence is scored against w, the normalized scores
// weight that window's contribution to new counts, and the counts plus the
// pseudocount are normalized into the next model.
func RefineStep(w *WeightMatrix, seqs []string, opts RefineOptions) (*WeightMatrix, error) {
	agg := opts.Aggregator
	if agg == nil {
		agg = DefaultAggregator
	}
	if opts.Pseudocount < 0 {
		return nil, fmt.Errorf("refine: negative pseudocount %v", opts.Pseudocount)
	}

	width := w.Width()
	total := mat.NewDense(NumBases, width, nil)
	used := 0
	for i, seq := range seqs {
		if len(seq) < width {
			continue
		}
		ind, err := Matrixify(seq)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		scores, err := ScoreWindows(w, ind)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		counts, err := agg.Counts(ind, width, scores)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		total.Add(total, counts)
		used++
	}
	if used == 0 {
		return nil, bioerr.Degenerate("refine", "no sequence has a window of width %d", width)
	}

	if opts.Pseudocount > 0 {
		total.Apply(func(_, _ int, v float64) float64 {
			return v + opts.Pseudocount
		}, total)
	}
	return Normalize(total, width)
}

// Refine runs the given number of RefineStep iterations starting from w.
// The context is checked between iterations.
func Refine(ctx context.Context, w *WeightMatrix, seqs []string, iterations int, opts RefineOptions) (*WeightMatrix, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("refine: negative iteration count %d", iterations)
	}

	current := w
	for it := 1; it <= iterations; it++ {
		if err := ctx.Err(); err != nil {
			return current, err
		}
		next, err := RefineStep(current, seqs, opts)
		if err != nil {
			return current, fmt.Errorf("refine iteration %d: %w", it, err)
		}
		current = next
		if opts.OnIteration != nil {
			opts.OnIteration(it, current)
		}
	}
	return current, nil
}
