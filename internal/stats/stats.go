// Package stats provides length summaries for decoded segments and sequence
// sets.
package stats

import (
	"fmt"
	"sort"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

// LengthStats summarizes a collection of lengths.
type LengthStats struct {
	Count  int     `json:"count"`
	Total  int     `json:"total"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median int     `json:"median"`
	N50    int     `json:"n50"`
}

// FromLengths calculates count, total, range, mean, median and N50.
func FromLengths(lengths []int) (*LengthStats, error) {
	count := len(lengths)
	if count == 0 {
		return nil, fmt.Errorf("length list cannot be empty")
	}

	total := 0
	minLen, maxLen := lengths[0], lengths[0]
	for _, l := range lengths {
		total += l
		minLen = min(minLen, l)
		maxLen = max(maxLen, l)
	}

	sorted := make([]int, count)
	copy(sorted, lengths)
	sort.Ints(sorted)

	mid := count / 2
	median := sorted[mid]
	if count%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	// N50: the length at which half the total is covered by longer items.
	halfTotal := total / 2
	runningSum := 0
	n50 := sorted[count-1]
	for i := count - 1; i >= 0; i-- {
		runningSum += sorted[i]
		if runningSum >= halfTotal {
			n50 = sorted[i]
			break
		}
	}

	return &LengthStats{
		Count:  count,
		Total:  total,
		Min:    minLen,
		Max:    maxLen,
		Mean:   float64(total) / float64(count),
		Median: median,
		N50:    n50,
	}, nil
}

func (s *LengthStats) String() string {
	return fmt.Sprintf("count=%d total=%d range=%d-%d mean=%.1f median=%d N50=%d",
		s.Count, s.Total, s.Min, s.Max, s.Mean, s.Median, s.N50)
}

// StateStats summarizes the segments decoded for one hidden state.
type StateStats struct {
	State hmm.State `json:"state"`
	// Fraction is the share of all decoded positions spent in State.
	Fraction float64 `json:"fraction"`
	LengthStats
}

// FromSegments groups segments by state and summarizes each group, sorted
// by state.
func FromSegments(segments []hmm.Segment) []StateStats {
	byState := hmm.Partition(segments)

	covered := 0
	for _, s := range segments {
		covered += s.Len()
	}

	states := make([]hmm.State, 0, len(byState))
	for st := range byState {
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })

	out := make([]StateStats, 0, len(states))
	for _, st := range states {
		lengths := make([]int, len(byState[st]))
		for i, seg := range byState[st] {
			lengths[i] = seg.Len()
		}
		ls, err := FromLengths(lengths)
		if err != nil {
			continue
		}
		fraction := 0.0
		if covered > 0 {
			fraction = float64(ls.Total) / float64(covered)
		}
		out = append(out, StateStats{State: st, Fraction: fraction, LengthStats: *ls})
	}
	return out
}

// SequenceSetStats represents aggregated statistics for multiple sequences.
type SequenceSetStats struct {
	LengthStats
	MeanGCContent  float64 `json:"mean_gc_content"`
	TotalAmbiguous int     `json:"total_ambiguous"`
}

// FromSequences calculates statistics for a collection of sequences.
func FromSequences(sequences []*sequence.Sequence) (*SequenceSetStats, error) {
	if len(sequences) == 0 {
		return nil, fmt.Errorf("sequence list cannot be empty")
	}

	lengths := make([]int, len(sequences))
	gcSum := 0.0
	ambiguous := 0
	for i, seq := range sequences {
		lengths[i] = seq.Len()
		gcSum += seq.GCContent()
		ambiguous += seq.CountAmbiguous()
	}

	ls, err := FromLengths(lengths)
	if err != nil {
		return nil, err
	}
	return &SequenceSetStats{
		LengthStats:    *ls,
		MeanGCContent:  gcSum / float64(len(sequences)),
		TotalAmbiguous: ambiguous,
	}, nil
}

func (s *SequenceSetStats) String() string {
	return fmt.Sprintf(`SequenceSetStats {
  count: %d
  total_bases: %d
  length range: %d - %d
  mean length: %.1f
  median length: %d
  mean GC: %.1f%%
  N50: %d
  ambiguous bases: %d
}`, s.Count, s.Total, s.Min, s.Max,
		s.Mean, s.Median, s.MeanGCContent*100, s.N50, s.TotalAmbiguous)
}
