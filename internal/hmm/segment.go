package hmm

import (
	"fmt"
	"sort"
)

// Segment is a maximal run of one state over the half-open range [Start, End).
type Segment struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	State State `json:"state"`
}

// Len returns the number of positions covered.
func (s Segment) Len() int {
	return s.End - s.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("%d\t%d\t%d", s.Start, s.End, s.State)
}

// Collapse merges consecutive equal states of a path into segments, in
// time order.
func Collapse(path []Step) []Segment {
	if len(path) == 0 {
		return nil
	}

	var segments []Segment
	start := 0
	for t := 1; t <= len(path); t++ {
		if t == len(path) || path[t].State != path[start].State {
			segments = append(segments, Segment{Start: start, End: t, State: path[start].State})
			start = t
		}
	}
	return segments
}

// Partition groups segments by state, keeping time order within each state.
func Partition(segments []Segment) map[State][]Segment {
	out := make(map[State][]Segment)
	for _, seg := range segments {
		out[seg.State] = append(out[seg.State], seg)
	}
	return out
}

// Merge flattens a per-state grouping back into one time-ordered list.
func Merge(byState map[State][]Segment) []Segment {
	var all []Segment
	for _, segs := range byState {
		all = append(all, segs...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Start < all[j].Start
	})
	return all
}
