// Package alignment provides pairwise sequence alignment over a substitution
// score table.
//
// Smith-Waterman local alignment is split into a fill step, which builds the
// complete score matrix, and a traceback step that walks the matrix back
// from its best cell by re-evaluating the recurrence. Needleman-Wunsch
// global alignment uses the same score model and linear gap cost.
package alignment

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// DefaultGapCost is the linear gap cost used when none is given.
const DefaultGapCost = -4

// Wildcard is the table symbol scored against identical unknown symbols.
const Wildcard = '*'

// AlignDirection is a traceback step. The order is the tie-break order:
// lower values win when two candidates have the same score.
type AlignDirection int

const (
	// Diagonal consumes a symbol from both sequences
	Diagonal AlignDirection = iota
	// Up consumes a symbol from A only (gap in B)
	Up
	// Left consumes a symbol from B only (gap in A)
	Left
	// Restart is the local-alignment zero branch
	Restart
)

func (d AlignDirection) String() string {
	switch d {
	case Diagonal:
		return "diagonal"
	case Up:
		return "up"
	case Left:
		return "left"
	default:
		return "restart"
	}
}

// AlignmentType represents the type of alignment.
type AlignmentType int

const (
	// LocalAlignment represents Smith-Waterman local alignment
	LocalAlignment AlignmentType = iota
	// GlobalAlignment represents Needleman-Wunsch global alignment
	GlobalAlignment
)

func (t AlignmentType) String() string {
	switch t {
	case LocalAlignment:
		return "local"
	case GlobalAlignment:
		return "global"
	default:
		return "unknown"
	}
}

// Alphabet is a case-insensitive, bidirectional mapping between table
// symbols and matrix indices.
type Alphabet struct {
	symbols []byte
	index   [256]int
}

func newAlphabet(symbols []byte) (*Alphabet, error) {
	a := &Alphabet{symbols: make([]byte, len(symbols))}
	for i := range a.index {
		a.index[i] = -1
	}
	for i, s := range symbols {
		s = upper(s)
		if a.index[s] >= 0 {
			return nil, fmt.Errorf("duplicate symbol %q in score table header", s)
		}
		a.symbols[i] = s
		a.index[s] = i
	}
	return a, nil
}

// Index returns the matrix index of a symbol.
func (a *Alphabet) Index(c byte) (int, bool) {
	i := a.index[upper(c)]
	return i, i >= 0
}

// Symbol returns the symbol at a matrix index.
func (a *Alphabet) Symbol(i int) byte {
	return a.symbols[i]
}

// Len returns the number of symbols, wildcard included.
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// Symbols returns the symbols in index order.
func (a *Alphabet) Symbols() string {
	return string(a.symbols)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// ScoreModel is a symmetric substitution table over an Alphabet.
// It is immutable once built and safe for concurrent use.
type ScoreModel struct {
	alphabet *Alphabet
	scores   [][]int
}

// Alphabet returns the model's alphabet.
func (m *ScoreModel) Alphabet() *Alphabet {
	return m.alphabet
}

// Score returns the table score for two symbols. The wildcard is not a
// known symbol for this lookup; it only scores identical unknown symbols.
func (m *ScoreModel) Score(a, b byte) (int, bool) {
	i, okA := m.known(a)
	j, okB := m.known(b)
	if !okA || !okB {
		return 0, false
	}
	return m.scores[i][j], true
}

func (m *ScoreModel) known(c byte) (int, bool) {
	if upper(c) == Wildcard {
		return 0, false
	}
	return m.alphabet.Index(c)
}

// WildcardScore returns the wildcard-vs-wildcard score, or 0 when the table
// has no wildcard.
func (m *ScoreModel) WildcardScore() int {
	w, ok := m.alphabet.Index(Wildcard)
	if !ok {
		return 0
	}
	return m.scores[w][w]
}

// Substitution scores aligning a against b. Known pairs use the table,
// identical unknown symbols use the wildcard score and any other pair is
// charged the gap cost.
func (m *ScoreModel) Substitution(a, b byte, gap int) int {
	if s, ok := m.Score(a, b); ok {
		return s
	}
	if upper(a) == upper(b) {
		return m.WildcardScore()
	}
	return gap
}

// ParseScoreModel reads a whitespace-delimited score table: a header row of
// symbols followed by one row per symbol (label, then integer scores).
// Lines starting with '#' are comments.
func ParseScoreModel(r io.Reader) (*ScoreModel, error) {
	scanner := bufio.NewScanner(r)

	var header []byte
	rows := make(map[byte][]int)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		if header == nil {
			header = make([]byte, len(fields))
			for i, f := range fields {
				if len(f) != 1 {
					return nil, fmt.Errorf("line %d: header symbol %q is not a single character", lineNum, f)
				}
				header[i] = f[0]
			}
			continue
		}

		if len(fields[0]) != 1 {
			return nil, fmt.Errorf("line %d: row label %q is not a single character", lineNum, fields[0])
		}
		if len(fields)-1 != len(header) {
			return nil, bioerr.Shape("parse score table", fmt.Sprintf("columns in row %q", fields[0]), len(header), len(fields)-1)
		}

		values := make([]int, len(header))
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			values[i] = v
		}
		rows[upper(fields[0][0])] = values
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading score table: %w", err)
	}
	if header == nil {
		return nil, bioerr.Degenerate("parse score table", "no header row")
	}

	alphabet, err := newAlphabet(header)
	if err != nil {
		return nil, err
	}
	if len(rows) != alphabet.Len() {
		return nil, bioerr.Shape("parse score table", "rows", alphabet.Len(), len(rows))
	}

	scores := make([][]int, alphabet.Len())
	for i := range scores {
		row, ok := rows[alphabet.Symbol(i)]
		if !ok {
			return nil, fmt.Errorf("score table has no row for %q", alphabet.Symbol(i))
		}
		scores[i] = row
	}

	for i := range scores {
		for j := i + 1; j < len(scores); j++ {
			if scores[i][j] != scores[j][i] {
				return nil, fmt.Errorf("score table is not symmetric at (%c, %c): %d != %d",
					alphabet.Symbol(i), alphabet.Symbol(j), scores[i][j], scores[j][i])
			}
		}
	}

	return &ScoreModel{alphabet: alphabet, scores: scores}, nil
}

var (
	blosum62Once  sync.Once
	blosum62Model *ScoreModel
)

// BLOSUM62 returns the shared BLOSUM62 score model.
func BLOSUM62() *ScoreModel {
	blosum62Once.Do(func() {
		m, err := ParseScoreModel(strings.NewReader(blosum62Table))
		if err != nil {
			panic("alignment: embedded BLOSUM62 table: " + err.Error())
		}
		blosum62Model = m
	})
	return blosum62Model
}

// Identity builds a model over the given symbols scoring match for equal
// symbols and mismatch otherwise. It is handy for nucleotide alignment.
func Identity(symbols string, match, mismatch int) (*ScoreModel, error) {
	if match <= 0 {
		return nil, fmt.Errorf("match score must be positive")
	}
	if mismatch > 0 {
		return nil, fmt.Errorf("mismatch penalty should be <= 0")
	}

	alphabet, err := newAlphabet([]byte(symbols))
	if err != nil {
		return nil, err
	}
	scores := make([][]int, alphabet.Len())
	for i := range scores {
		scores[i] = make([]int, alphabet.Len())
		for j := range scores[i] {
			if i == j {
				scores[i][j] = match
			} else {
				scores[i][j] = mismatch
			}
		}
	}
	return &ScoreModel{alphabet: alphabet, scores: scores}, nil
}

// String returns a short description of the model.
func (m *ScoreModel) String() string {
	return fmt.Sprintf("ScoreModel { symbols: %s }", m.alphabet.Symbols())
}
