package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// Step is one position of a decoded path: the chosen state and the log
// probability of the best path ending in that state at this position.
type Step struct {
	State   State
	LogProb float64
}

// Decoding is the result of a Viterbi decode.
type Decoding struct {
	// Path has one step per input symbol.
	Path []Step
	// LogProb is the log probability of the most likely path.
	LogProb float64
	// Segments holds the collapsed runs of Path grouped by state. Together
	// they partition [0, len(Path)).
	Segments map[State][]Segment
}

// Runs returns the collapsed segments of the path in time order.
func (d *Decoding) Runs() []Segment {
	return Collapse(d.Path)
}

// StatePath returns the bare state sequence.
func (d *Decoding) StatePath() []State {
	states := make([]State, len(d.Path))
	for i, s := range d.Path {
		states[i] = s.State
	}
	return states
}

// logProb is math.Log with zero (and anything below it) mapped to -Inf.
func logProb(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// logTables converts the model's tables to log space.
func logTables(m *Model) (initial []float64, trans, emit [][]float64) {
	k := m.K()
	initial = make([]float64, k)
	trans = make([][]float64, k)
	emit = make([][]float64, k)
	for s := 0; s < k; s++ {
		initial[s] = logProb(m.Initial[s])
		trans[s] = make([]float64, k)
		for e := 0; e < k; e++ {
			trans[s][e] = logProb(m.Transition[s][e])
		}
		emit[s] = make([]float64, NumSymbols)
		for x := 0; x < NumSymbols; x++ {
			emit[s][x] = logProb(m.Emission[s][x])
		}
	}
	return initial, trans, emit
}

// Decode finds the most likely state path for seq under m.
//
// Ties between predecessor states, and between final states, go to the
// lowest state index. Only sums of log probabilities are formed, so
// impossible paths score -Inf without producing NaN.
func Decode(seq []Symbol, m *Model) (*Decoding, error) {
	if len(seq) == 0 {
		return nil, bioerr.Degenerate("decode", "empty sequence")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	for i, x := range seq {
		if x < 0 || x >= NumSymbols {
			return nil, &bioerr.InvalidSymbolError{Position: i, Found: '?'}
		}
	}

	k, n := m.K(), len(seq)
	logInit, logTrans, logEmit := logTables(m)

	// v[t][s] is the best log probability of a path ending in s at t;
	// back[t][s] is the predecessor state on that path.
	v := make([][]float64, n)
	back := make([][]int, n)
	for t := range v {
		v[t] = make([]float64, k)
		back[t] = make([]int, k)
	}

	for s := 0; s < k; s++ {
		v[0][s] = logInit[s] + logEmit[s][seq[0]]
	}

	candidates := make([]float64, k)
	for t := 1; t < n; t++ {
		x := seq[t]
		for e := 0; e < k; e++ {
			for s := 0; s < k; s++ {
				candidates[s] = v[t-1][s] + logTrans[s][e]
			}
			best := floats.MaxIdx(candidates)
			back[t][e] = best
			v[t][e] = candidates[best] + logEmit[e][x]
		}
	}

	last := floats.MaxIdx(v[n-1])
	path := make([]Step, n)
	state := last
	for t := n - 1; t >= 0; t-- {
		path[t] = Step{State: State(state), LogProb: v[t][state]}
		state = back[t][state]
	}

	return &Decoding{
		Path:     path,
		LogProb:  v[n-1][last],
		Segments: Partition(Collapse(path)),
	}, nil
}
