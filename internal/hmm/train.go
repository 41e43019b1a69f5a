package hmm

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// normalizeRows scales each row of counts to sum to 1 in place. Rows with
// no counts become uniform; their indices are returned.
func normalizeRows(counts [][]float64) []State {
	var degenerate []State
	for i, row := range counts {
		sum := floats.Sum(row)
		if sum <= 0 {
			for j := range row {
				row[j] = 1 / float64(len(row))
			}
			degenerate = append(degenerate, State(i))
			continue
		}
		floats.Scale(1/sum, row)
	}
	return degenerate
}

func newCounts(rows, cols int) [][]float64 {
	counts := make([][]float64, rows)
	for i := range counts {
		counts[i] = make([]float64, cols)
	}
	return counts
}

func checkState(op string, s State, k int) error {
	if s < 0 || int(s) >= k {
		return fmt.Errorf("%s: state %d outside model with %d states", op, s, k)
	}
	return nil
}

func transitionCounts(segments []Segment, k int) ([][]float64, []State, error) {
	counts := newCounts(k, k)
	for i, seg := range segments {
		if err := checkState("reestimate transitions", seg.State, k); err != nil {
			return nil, nil, err
		}
		if seg.Len() <= 0 {
			return nil, nil, bioerr.Degenerate("reestimate transitions", "empty segment at [%d, %d)", seg.Start, seg.End)
		}
		counts[seg.State][seg.State] += float64(seg.Len() - 1)
		if i > 0 {
			counts[segments[i-1].State][seg.State]++
		}
	}
	degenerate := normalizeRows(counts)
	return counts, degenerate, nil
}

func emissionCounts(seq []Symbol, segments []Segment, k int) ([][]float64, []State, error) {
	counts := newCounts(k, NumSymbols)
	for _, seg := range segments {
		if err := checkState("reestimate emissions", seg.State, k); err != nil {
			return nil, nil, err
		}
		if seg.Start < 0 || seg.End > len(seq) || seg.Start > seg.End {
			return nil, nil, fmt.Errorf("reestimate emissions: segment [%d, %d) outside sequence of length %d",
				seg.Start, seg.End, len(seq))
		}
		for t := seg.Start; t < seg.End; t++ {
			x := seq[t]
			if x < 0 || x >= NumSymbols {
				return nil, nil, &bioerr.InvalidSymbolError{Position: t, Found: '?'}
			}
			counts[seg.State][x]++
		}
	}
	degenerate := normalizeRows(counts)
	return counts, degenerate, nil
}

// ReestimateTransitions rebuilds the K×K transition table from time-ordered
// segments. Each segment contributes len-1 self transitions and one
// transition into the following segment. A state that is never left becomes
// a uniform row.
func ReestimateTransitions(segments []Segment, k int) ([][]float64, error) {
	table, _, err := transitionCounts(segments, k)
	return table, err
}

// ReestimateEmissions rebuilds the K×4 emission table from the symbol
// frequencies inside each state's segments. A state with no segments gets
// a uniform row.
func ReestimateEmissions(seq []Symbol, segments []Segment, k int) ([][]float64, error) {
	table, _, err := emissionCounts(seq, segments, k)
	return table, err
}

// IterationReport summarizes one round of Viterbi training. LogProb is the
// log probability of the path decoded at the start of the iteration. The
// Degenerate lists name states whose re-estimated rows had no counts and
// were made uniform.
type IterationReport struct {
	Iteration             int           `json:"iteration"`
	LogProb               float64       `json:"log_prob"`
	SegmentCounts         map[State]int `json:"segment_counts"`
	DegenerateTransitions []State       `json:"degenerate_transitions,omitempty"`
	DegenerateEmissions   []State       `json:"degenerate_emissions,omitempty"`
}

// TrainOptions controls Train.
type TrainOptions struct {
	Iterations  int
	OnIteration func(IterationReport)
}

// Train runs Viterbi training on seq starting from m. Every iteration
// decodes the sequence with the current model and replaces the transition
// and emission tables with their re-estimates; the initial distribution is
// kept. The input model is not modified.
//
// The context is checked between iterations only.
func Train(ctx context.Context, seq []Symbol, m *Model, opts TrainOptions) (*Model, []IterationReport, error) {
	if opts.Iterations < 0 {
		return nil, nil, fmt.Errorf("train: negative iteration count %d", opts.Iterations)
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	current := m.Clone()
	reports := make([]IterationReport, 0, opts.Iterations)

	for it := 1; it <= opts.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return current, reports, err
		}

		dec, err := Decode(seq, current)
		if err != nil {
			return current, reports, fmt.Errorf("train iteration %d: %w", it, err)
		}

		runs := dec.Runs()
		trans, degTrans, err := transitionCounts(runs, current.K())
		if err != nil {
			return current, reports, fmt.Errorf("train iteration %d: %w", it, err)
		}
		emit, degEmit, err := emissionCounts(seq, runs, current.K())
		if err != nil {
			return current, reports, fmt.Errorf("train iteration %d: %w", it, err)
		}

		next := current.Clone()
		next.Transition = trans
		next.Emission = emit
		current = next

		report := IterationReport{
			Iteration:             it,
			LogProb:               dec.LogProb,
			SegmentCounts:         make(map[State]int, current.K()),
			DegenerateTransitions: degTrans,
			DegenerateEmissions:   degEmit,
		}
		for _, s := range current.States {
			report.SegmentCounts[s] = len(dec.Segments[s])
		}
		reports = append(reports, report)
		if opts.OnIteration != nil {
			opts.OnIteration(report)
		}
	}

	return current, reports, nil
}
