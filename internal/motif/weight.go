// Package motif implements weight-matrix motif models: scoring every window
// of a sequence against a model, aggregating window counts into a new model,
// MEME-style refinement and motif scanning against a background.
//
// A weight matrix has one row per nucleotide (A, C, G, T) and one column per
// motif position. Sequences are converted to a 4×L indicator matrix so that
// scoring and counting are plain matrix products.
package motif

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

const (
	// NumBases is the number of weight matrix rows.
	NumBases = 4
	// DefaultWidth is the default motif width.
	DefaultWidth = 6
)

// WeightMatrix is a column-normalized 4×W motif model. It is immutable.
type WeightMatrix struct {
	m *mat.Dense
}

// Normalize divides each column of m by its sum. m must have 4 rows and
// width columns. A column summing to zero becomes uniform.
func Normalize(m mat.Matrix, width int) (*WeightMatrix, error) {
	r, c := m.Dims()
	if r != NumBases {
		return nil, bioerr.Shape("normalize", "rows", NumBases, r)
	}
	if c != width {
		return nil, bioerr.Shape("normalize", "columns", width, c)
	}

	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		for _, v := range col {
			if v < 0 {
				return nil, fmt.Errorf("normalize: negative weight %v in column %d", v, j)
			}
		}
		if sum := floats.Sum(col); sum > 0 {
			floats.Scale(1/sum, col)
		} else {
			for i := range col {
				col[i] = 1.0 / NumBases
			}
		}
		out.SetCol(j, col)
	}
	return &WeightMatrix{m: out}, nil
}

// FromRows builds a normalized weight matrix from 4 rows of equal length.
func FromRows(rows [][]float64) (*WeightMatrix, error) {
	if len(rows) != NumBases {
		return nil, bioerr.Shape("weight matrix", "rows", NumBases, len(rows))
	}
	width := len(rows[0])
	if width == 0 {
		return nil, bioerr.Degenerate("weight matrix", "no columns")
	}
	data := make([]float64, 0, NumBases*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, bioerr.Shape("weight matrix", fmt.Sprintf("columns in row %d", i), width, len(row))
		}
		data = append(data, row...)
	}
	return Normalize(mat.NewDense(NumBases, width, data), width)
}

func checkWidth(op string, width int) error {
	if width <= 0 {
		return bioerr.Degenerate(op, "motif width %d", width)
	}
	return nil
}

// Uniform returns a weight matrix with every entry 1/4.
func Uniform(width int) (*WeightMatrix, error) {
	if err := checkWidth("uniform", width); err != nil {
		return nil, err
	}
	m := mat.NewDense(NumBases, width, nil)
	for i := 0; i < NumBases; i++ {
		for j := 0; j < width; j++ {
			m.Set(i, j, 1.0/NumBases)
		}
	}
	return &WeightMatrix{m: m}, nil
}

// Width returns the number of motif positions.
func (w *WeightMatrix) Width() int {
	_, c := w.m.Dims()
	return c
}

// At returns the weight of base b at motif position j.
func (w *WeightMatrix) At(b, j int) float64 {
	return w.m.At(b, j)
}

// Matrix returns a read-only view of the weights.
func (w *WeightMatrix) Matrix() mat.Matrix {
	return w.m
}

// Rows returns a copy of the weights as a 4×W slice.
func (w *WeightMatrix) Rows() [][]float64 {
	rows := make([][]float64, NumBases)
	for i := range rows {
		rows[i] = mat.Row(nil, i, w.m)
	}
	return rows
}

// Consensus returns the most likely base at each position.
func (w *WeightMatrix) Consensus() string {
	const bases = "ACGT"
	out := make([]byte, w.Width())
	col := make([]float64, NumBases)
	for j := range out {
		mat.Col(col, j, w.m)
		out[j] = bases[floats.MaxIdx(col)]
	}
	return string(out)
}

// MarshalJSON encodes the weights as a 4×W array of rows.
func (w *WeightMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Rows())
}

// UnmarshalJSON decodes a 4×W array of rows and normalizes it.
func (w *WeightMatrix) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	decoded, err := FromRows(rows)
	if err != nil {
		return err
	}
	*w = *decoded
	return nil
}

// checkIndicator validates a 4×L indicator matrix against a motif width and
// returns L.
func checkIndicator(op string, ind mat.Matrix, width int) (int, error) {
	r, length := ind.Dims()
	if r != NumBases {
		return 0, bioerr.Shape(op, "indicator rows", NumBases, r)
	}
	if length < width {
		return 0, bioerr.Shape(op, "sequence length (minimum)", width, length)
	}
	return length, nil
}

// RawWindowScores returns, for each window start k, the sum of the model
// weights of the sequence symbols in that window.
func RawWindowScores(w *WeightMatrix, ind mat.Matrix) ([]float64, error) {
	width := w.Width()
	length, err := checkIndicator("score windows", ind, width)
	if err != nil {
		return nil, err
	}

	// P[i][j] is the weight of position i of the sequence when it sits at
	// motif column j; window k collects the diagonal P[k+j][j].
	var p mat.Dense
	p.Mul(ind.T(), w.m)

	n := length - width + 1
	scores := make([]float64, n)
	for k := 0; k < n; k++ {
		for j := 0; j < width; j++ {
			scores[k] += p.At(k+j, j)
		}
	}
	return scores, nil
}

// ScoreWindows returns the window scores of RawWindowScores normalized to
// sum to 1. When every window scores zero the result is uniform.
func ScoreWindows(w *WeightMatrix, ind mat.Matrix) ([]float64, error) {
	scores, err := RawWindowScores(w, ind)
	if err != nil {
		return nil, err
	}
	normalizeScores(scores)
	return scores, nil
}

func normalizeScores(scores []float64) {
	if total := floats.Sum(scores); total > 0 {
		floats.Scale(1/total, scores)
		return
	}
	for i := range scores {
		scores[i] = 1 / float64(len(scores))
	}
}
