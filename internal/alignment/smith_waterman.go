package alignment

import (
	"fmt"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
)

// Cell addresses a matrix entry. I indexes sequence A (rows) and J indexes
// sequence B (columns); row 0 and column 0 are the empty prefixes.
type Cell struct {
	I int
	J int
}

// Matrix is a filled Smith-Waterman score matrix.
//
// H has len(A)+1 rows and len(B)+1 columns. Row 0 and column 0 are zero and
// every cell is non-negative.
type Matrix struct {
	H     [][]int
	model *ScoreModel
	gap   int
}

// Rows returns the number of matrix rows.
func (m *Matrix) Rows() int {
	return len(m.H)
}

// Cols returns the number of matrix columns.
func (m *Matrix) Cols() int {
	if len(m.H) == 0 {
		return 0
	}
	return len(m.H[0])
}

// At returns the score at (i, j).
func (m *Matrix) At(i, j int) int {
	return m.H[i][j]
}

// Max returns the cell holding the maximum score. Ties resolve to the first
// cell in row-major order.
func (m *Matrix) Max() (Cell, int) {
	best, cell := -1, Cell{}
	for i, row := range m.H {
		for j, v := range row {
			if v > best {
				best = v
				cell = Cell{I: i, J: j}
			}
		}
	}
	if best < 0 {
		best = 0
	}
	return cell, best
}

// Fill builds the local alignment matrix of a against b with a linear gap
// cost. Empty input yields a matrix with only the zero border.
func Fill(a, b string, model *ScoreModel, gap int) *Matrix {
	if model == nil {
		model = BLOSUM62()
	}

	rows, cols := len(a)+1, len(b)+1
	H := make([][]int, rows)
	for i := range H {
		H[i] = make([]int, cols)
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			diag := H[i-1][j-1] + model.Substitution(a[i-1], b[j-1], gap)
			up := H[i-1][j] + gap
			left := H[i][j-1] + gap
			H[i][j] = max(diag, up, left, 0)
		}
	}

	return &Matrix{H: H, model: model, gap: gap}
}

// step re-evaluates the recurrence at (i, j) and returns the winning branch
// and its value. Branches are compared in AlignDirection order, so the
// lower direction wins a tie and the zero branch wins only when every
// other branch is negative.
func (m *Matrix) step(a, b string, i, j int) (AlignDirection, int) {
	dir, best := Restart, 0
	found := false
	consider := func(d AlignDirection, v int) {
		if !found || v > best {
			dir, best, found = d, v, true
		}
	}

	if i > 0 && j > 0 {
		consider(Diagonal, m.H[i-1][j-1]+m.model.Substitution(a[i-1], b[j-1], m.gap))
	}
	if i > 0 {
		consider(Up, m.H[i-1][j]+m.gap)
	}
	if j > 0 {
		consider(Left, m.H[i][j-1]+m.gap)
	}

	if !found || best < 0 {
		return Restart, 0
	}
	return dir, best
}

// Traceback walks the matrix back from start, or from the global maximum
// when start is nil, until it reaches a zero cell.
func Traceback(m *Matrix, a, b string, start *Cell) (*Alignment, error) {
	if m.Rows() != len(a)+1 {
		return nil, bioerr.Shape("traceback", "matrix rows", len(a)+1, m.Rows())
	}
	if m.Cols() != len(b)+1 {
		return nil, bioerr.Shape("traceback", "matrix columns", len(b)+1, m.Cols())
	}

	var cell Cell
	if start == nil {
		cell, _ = m.Max()
	} else {
		cell = *start
		if cell.I < 0 || cell.I >= m.Rows() || cell.J < 0 || cell.J >= m.Cols() {
			return nil, fmt.Errorf("traceback: start cell (%d, %d) outside %dx%d matrix",
				cell.I, cell.J, m.Rows(), m.Cols())
		}
	}

	score := m.H[cell.I][cell.J]
	alignedA := make([]byte, 0, cell.I+cell.J)
	alignedB := make([]byte, 0, cell.I+cell.J)
	middle := make([]byte, 0, cell.I+cell.J)

	i, j := cell.I, cell.J
	for m.H[i][j] != 0 {
		dir, best := m.step(a, b, i, j)
		if dir == Restart {
			return nil, &bioerr.InvariantError{
				Op:     "traceback",
				Detail: fmt.Sprintf("zero branch selected at nonzero cell (%d, %d)", i, j),
			}
		}
		if best != m.H[i][j] {
			return nil, &bioerr.InvariantError{
				Op:     "traceback",
				Detail: fmt.Sprintf("cell (%d, %d) holds %d but recurrence gives %d", i, j, m.H[i][j], best),
			}
		}

		switch dir {
		case Diagonal:
			alignedA = append(alignedA, a[i-1])
			alignedB = append(alignedB, b[j-1])
			middle = append(middle, middleSymbol(a[i-1], b[j-1], m.H[i][j] > m.H[i-1][j-1]))
			i--
			j--
		case Up:
			alignedA = append(alignedA, a[i-1])
			alignedB = append(alignedB, Gap)
			middle = append(middle, ' ')
			i--
		case Left:
			alignedA = append(alignedA, Gap)
			alignedB = append(alignedB, b[j-1])
			middle = append(middle, ' ')
			j--
		}
	}

	return &Alignment{
		A:      reverse(alignedA),
		Middle: reverse(middle),
		B:      reverse(alignedB),
		Score:  score,
		StartA: i,
		EndA:   cell.I,
		StartB: j,
		EndB:   cell.J,
		Type:   LocalAlignment,
	}, nil
}

// Local performs Smith-Waterman local alignment of a against b.
// A nil model selects BLOSUM62.
func Local(a, b string, model *ScoreModel, gap int) (*Alignment, error) {
	m := Fill(a, b, model, gap)
	return Traceback(m, a, b, nil)
}

// ScoreOnly returns the best local alignment score without building the
// full matrix. It keeps two rows, so memory is linear in len(b).
func ScoreOnly(a, b string, model *ScoreModel, gap int) int {
	if model == nil {
		model = BLOSUM62()
	}

	n := len(b)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)
	maxScore := 0

	for i := 1; i <= len(a); i++ {
		currRow[0] = 0
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + model.Substitution(a[i-1], b[j-1], gap)
			up := prevRow[j] + gap
			left := currRow[j-1] + gap

			best := max(diag, up, left, 0)
			currRow[j] = best
			if best > maxScore {
				maxScore = best
			}
		}
		prevRow, currRow = currRow, prevRow
	}

	return maxScore
}
