// Package hmm implements a discrete hidden Markov model over nucleotides
// with Viterbi decoding and Viterbi (hard-assignment) training.
//
// The engine is written for any number of states. DefaultModel returns the
// two-state background / GC-rich model used for isochore-style segmentation.
package hmm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// probTolerance is the slack allowed when checking that a distribution sums to 1.
const probTolerance = 1e-6

// State is a hidden state index in 0..K-1.
type State int

// MarshalText encodes the state as its decimal index, which keeps integer
// state ids intact as JSON object keys.
func (s State) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalText decodes a decimal state index.
func (s *State) UnmarshalText(text []byte) error {
	v, err := strconv.Atoi(string(text))
	if err != nil {
		return fmt.Errorf("invalid state id %q: %w", text, err)
	}
	*s = State(v)
	return nil
}

// Symbol is an emitted nucleotide.
type Symbol int

const (
	A Symbol = iota
	C
	G
	T
)

// NumSymbols is the size of the emission alphabet.
const NumSymbols = 4

const symbolLetters = "ACGT"

// Byte returns the nucleotide letter.
func (s Symbol) Byte() byte {
	return symbolLetters[s]
}

func (s Symbol) String() string {
	if s < 0 || s >= NumSymbols {
		return "Symbol(" + strconv.Itoa(int(s)) + ")"
	}
	return string(symbolLetters[s])
}

// MarshalText encodes the symbol as its letter.
func (s Symbol) MarshalText() ([]byte, error) {
	if s < 0 || s >= NumSymbols {
		return nil, fmt.Errorf("symbol %d out of range", int(s))
	}
	return []byte{symbolLetters[s]}, nil
}

// UnmarshalText decodes a single nucleotide letter.
func (s *Symbol) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("invalid symbol %q", text)
	}
	v, ok := symbolOf(text[0])
	if !ok {
		return fmt.Errorf("invalid symbol %q", text)
	}
	*s = v
	return nil
}

func symbolOf(c byte) (Symbol, bool) {
	switch c {
	case 'A', 'a':
		return A, true
	case 'C', 'c':
		return C, true
	case 'G', 'g':
		return G, true
	case 'T', 't':
		return T, true
	}
	return 0, false
}

// ParseSymbols converts a nucleotide string to symbols. Input is
// case-insensitive; anything other than A, C, G or T is rejected.
func ParseSymbols(s string) ([]Symbol, error) {
	out := make([]Symbol, len(s))
	for i := 0; i < len(s); i++ {
		v, ok := symbolOf(s[i])
		if !ok {
			return nil, &bioerr.InvalidSymbolError{Position: i, Found: rune(s[i])}
		}
		out[i] = v
	}
	return out, nil
}

// Model holds the probability tables of a hidden Markov model.
//
// Tables are read-only while decoding. Training never edits a table in
// place; it builds a new Model with the re-estimated tables.
type Model struct {
	States     []State
	Initial    []float64
	Transition [][]float64
	Emission   [][]float64
}

// NewModel builds a model with K states from the given tables and validates it.
func NewModel(initial []float64, transition, emission [][]float64) (*Model, error) {
	m := &Model{
		States:     make([]State, len(initial)),
		Initial:    initial,
		Transition: transition,
		Emission:   emission,
	}
	for i := range m.States {
		m.States[i] = State(i)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultModel returns the two-state model: state 0 is background
// (uniform emissions) and state 1 is GC-rich.
func DefaultModel() *Model {
	return &Model{
		States:  []State{0, 1},
		Initial: []float64{0.9999, 0.0001},
		Transition: [][]float64{
			{0.9999, 0.0001},
			{0.01, 0.99},
		},
		Emission: [][]float64{
			{0.25, 0.25, 0.25, 0.25},
			{0.20, 0.30, 0.30, 0.20},
		},
	}
}

// K returns the number of states.
func (m *Model) K() int {
	return len(m.States)
}

// Validate checks table shapes and that every distribution sums to 1.
func (m *Model) Validate() error {
	k := len(m.States)
	if k == 0 {
		return bioerr.Degenerate("validate model", "no states")
	}
	for i, s := range m.States {
		if int(s) != i {
			return fmt.Errorf("validate model: state %d at position %d, states must be 0..K-1 in order", s, i)
		}
	}
	if len(m.Initial) != k {
		return bioerr.Shape("validate model", "initial probabilities", k, len(m.Initial))
	}
	if len(m.Transition) != k {
		return bioerr.Shape("validate model", "transition rows", k, len(m.Transition))
	}
	if len(m.Emission) != k {
		return bioerr.Shape("validate model", "emission rows", k, len(m.Emission))
	}
	if err := checkDistribution("initial", m.Initial); err != nil {
		return err
	}
	for i := 0; i < k; i++ {
		if len(m.Transition[i]) != k {
			return bioerr.Shape("validate model", fmt.Sprintf("transition row %d", i), k, len(m.Transition[i]))
		}
		if err := checkDistribution(fmt.Sprintf("transition row %d", i), m.Transition[i]); err != nil {
			return err
		}
		if len(m.Emission[i]) != NumSymbols {
			return bioerr.Shape("validate model", fmt.Sprintf("emission row %d", i), NumSymbols, len(m.Emission[i]))
		}
		if err := checkDistribution(fmt.Sprintf("emission row %d", i), m.Emission[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkDistribution(what string, p []float64) error {
	for _, v := range p {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("validate model: %s has invalid probability %v", what, v)
		}
	}
	if sum := floats.Sum(p); math.Abs(sum-1) > probTolerance {
		return fmt.Errorf("validate model: %s sums to %v, want 1", what, sum)
	}
	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		States:     append([]State(nil), m.States...),
		Initial:    append([]float64(nil), m.Initial...),
		Transition: make([][]float64, len(m.Transition)),
		Emission:   make([][]float64, len(m.Emission)),
	}
	for i, row := range m.Transition {
		c.Transition[i] = append([]float64(nil), row...)
	}
	for i, row := range m.Emission {
		c.Emission[i] = append([]float64(nil), row...)
	}
	return c
}

type modelJSON struct {
	States     []int                        `json:"states"`
	Initial    map[State]float64            `json:"initial"`
	Transition map[State]map[State]float64  `json:"transition"`
	Emission   map[State]map[Symbol]float64 `json:"emission"`
}

// MarshalJSON encodes the tables as objects keyed by state id and symbol.
func (m *Model) MarshalJSON() ([]byte, error) {
	out := modelJSON{
		States:     make([]int, len(m.States)),
		Initial:    make(map[State]float64, len(m.States)),
		Transition: make(map[State]map[State]float64, len(m.States)),
		Emission:   make(map[State]map[Symbol]float64, len(m.States)),
	}
	for i, s := range m.States {
		out.States[i] = int(s)
		if i < len(m.Initial) {
			out.Initial[s] = m.Initial[i]
		}
		if i < len(m.Transition) {
			row := make(map[State]float64, len(m.Transition[i]))
			for j, p := range m.Transition[i] {
				row[State(j)] = p
			}
			out.Transition[s] = row
		}
		if i < len(m.Emission) {
			row := make(map[Symbol]float64, len(m.Emission[i]))
			for j, p := range m.Emission[i] {
				row[Symbol(j)] = p
			}
			out.Emission[s] = row
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes tables written by MarshalJSON and validates them.
// Missing entries decode as zero probability.
func (m *Model) UnmarshalJSON(data []byte) error {
	var in modelJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	k := len(in.States)
	decoded := Model{
		States:     make([]State, k),
		Initial:    make([]float64, k),
		Transition: make([][]float64, k),
		Emission:   make([][]float64, k),
	}
	for i, s := range in.States {
		if s != i {
			return fmt.Errorf("decode model: state %d at position %d, states must be 0..K-1 in order", s, i)
		}
		decoded.States[i] = State(s)
		decoded.Transition[i] = make([]float64, k)
		decoded.Emission[i] = make([]float64, NumSymbols)
	}

	for s, p := range in.Initial {
		if int(s) < 0 || int(s) >= k {
			return fmt.Errorf("decode model: initial probability for unknown state %d", s)
		}
		decoded.Initial[s] = p
	}
	for from, row := range in.Transition {
		if int(from) < 0 || int(from) >= k {
			return fmt.Errorf("decode model: transition row for unknown state %d", from)
		}
		for to, p := range row {
			if int(to) < 0 || int(to) >= k {
				return fmt.Errorf("decode model: transition to unknown state %d", to)
			}
			decoded.Transition[from][to] = p
		}
	}
	for s, row := range in.Emission {
		if int(s) < 0 || int(s) >= k {
			return fmt.Errorf("decode model: emission row for unknown state %d", s)
		}
		for sym, p := range row {
			decoded.Emission[s][sym] = p
		}
	}

	if err := decoded.Validate(); err != nil {
		return err
	}
	*m = decoded
	return nil
}
