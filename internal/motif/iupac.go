package motif

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

const third = 1.0 / 3.0

// iupacColumns maps each IUPAC nucleotide code to its A, C, G, T weights.
// Ambiguous codes spread one unit of weight over the bases they stand for.
var iupacColumns = map[byte][NumBases]float64{
	'A': {1, 0, 0, 0},
	'C': {0, 1, 0, 0},
	'G': {0, 0, 1, 0},
	'T': {0, 0, 0, 1},
	'U': {0, 0, 0, 1},
	'R': {0.5, 0, 0.5, 0},
	'Y': {0, 0.5, 0, 0.5},
	'S': {0, 0.5, 0.5, 0},
	'W': {0.5, 0, 0, 0.5},
	'K': {0, 0, 0.5, 0.5},
	'M': {0.5, 0.5, 0, 0},
	'B': {0, third, third, third},
	'D': {third, 0, third, third},
	'H': {third, third, 0, third},
	'V': {third, third, third, 0},
	'N': {0.25, 0.25, 0.25, 0.25},
}

// Matrixify converts a nucleotide sequence to its 4×L indicator matrix.
// Rows are A, C, G, T; lower-case input is accepted.
func Matrixify(seq string) (*mat.Dense, error) {
	if len(seq) == 0 {
		return nil, bioerr.Degenerate("matrixify", "empty sequence")
	}

	data := make([]float64, NumBases*len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		col, ok := iupacColumns[c]
		if !ok {
			return nil, &bioerr.InvalidSymbolError{Position: i, Found: rune(seq[i])}
		}
		for b := 0; b < NumBases; b++ {
			data[b*len(seq)+i] = col[b]
		}
	}
	return mat.NewDense(NumBases, len(seq), data), nil
}
