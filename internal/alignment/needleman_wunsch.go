package alignment

import (
	"fmt"
)

// Global performs Needleman-Wunsch global alignment of a against b with the
// same substitution rule and linear gap cost as Local. Both sequences are
// aligned end to end, so the score may be negative.
func Global(a, b string, model *ScoreModel, gap int) (*Alignment, error) {
	if model == nil {
		model = BLOSUM62()
	}

	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("sequences must be non-empty")
	}

	m, n := len(a), len(b)

	// Initialize scoring matrix with gap penalties
	H := make([][]int, m+1)
	traceback := make([][]AlignDirection, m+1)
	for i := range H {
		H[i] = make([]int, n+1)
		traceback[i] = make([]AlignDirection, n+1)
	}

	for i := 1; i <= m; i++ {
		H[i][0] = i * gap
		traceback[i][0] = Up
	}
	for j := 1; j <= n; j++ {
		H[0][j] = j * gap
		traceback[0][j] = Left
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			diag := H[i-1][j-1] + model.Substitution(a[i-1], b[j-1], gap)
			up := H[i-1][j] + gap
			left := H[i][j-1] + gap

			// No zero branch for global alignment
			best := diag
			direction := Diagonal

			if up > best {
				best = up
				direction = Up
			}
			if left > best {
				best = left
				direction = Left
			}

			H[i][j] = best
			traceback[i][j] = direction
		}
	}

	alignedA := make([]byte, 0, m+n)
	alignedB := make([]byte, 0, m+n)
	middle := make([]byte, 0, m+n)

	i, j := m, n
	for i > 0 || j > 0 {
		switch traceback[i][j] {
		case Diagonal:
			alignedA = append(alignedA, a[i-1])
			alignedB = append(alignedB, b[j-1])
			middle = append(middle, middleSymbol(a[i-1], b[j-1], H[i][j] > H[i-1][j-1]))
			i--
			j--
		case Up:
			alignedA = append(alignedA, a[i-1])
			alignedB = append(alignedB, Gap)
			middle = append(middle, ' ')
			i--
		default:
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
		Score:  H[m][n],
		EndA:   m,
		EndB:   n,
		Type:   GlobalAlignment,
	}, nil
}

// GlobalScoreOnly calculates the global alignment score without traceback.
func GlobalScoreOnly(a, b string, model *ScoreModel, gap int) (int, error) {
	if model == nil {
		model = BLOSUM62()
	}

	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("sequences must be non-empty")
	}

	n := len(b)
	prevRow := make([]int, n+1)
	currRow := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prevRow[j] = j * gap
	}

	for i := 1; i <= len(a); i++ {
		currRow[0] = i * gap
		for j := 1; j <= n; j++ {
			diag := prevRow[j-1] + model.Substitution(a[i-1], b[j-1], gap)
			up := prevRow[j] + gap
			left := currRow[j-1] + gap
			currRow[j] = max(diag, up, left)
		}
		prevRow, currRow = currRow, prevRow
	}

	return prevRow[n], nil
}

// IndexedAlignment pairs an alignment with the index of its target.
type IndexedAlignment struct {
	Index     int
	Alignment *Alignment
}

// AlignAgainstMultiple locally aligns query against every target in order.
func AlignAgainstMultiple(query string, targets []string, model *ScoreModel, gap int) ([]IndexedAlignment, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("target list cannot be empty")
	}

	results := make([]IndexedAlignment, len(targets))
	for i, target := range targets {
		aln, err := Local(query, target, model, gap)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		results[i] = IndexedAlignment{Index: i, Alignment: aln}
	}

	return results, nil
}

// FindBest returns the highest-scoring local alignment of query among the
// targets. The earliest target wins a tie.
func FindBest(query string, targets []string, model *ScoreModel, gap int) (*IndexedAlignment, error) {
	alignments, err := AlignAgainstMultiple(query, targets, model, gap)
	if err != nil {
		return nil, err
	}

	best := alignments[0]
	for _, a := range alignments[1:] {
		if a.Alignment.Score > best.Alignment.Score {
			best = a
		}
	}

	return &best, nil
}

// Pair is the local alignment of sequences I and J, with I < J.
type Pair struct {
	I, J      int
	Alignment *Alignment
}

// AllPairs locally aligns every unordered pair of seqs, ordered by I then J.
func AllPairs(seqs []string, model *ScoreModel, gap int) ([]Pair, error) {
	if len(seqs) < 2 {
		return nil, fmt.Errorf("need at least two sequences, got %d", len(seqs))
	}

	pairs := make([]Pair, 0, len(seqs)*(len(seqs)-1)/2)
	for i := 0; i < len(seqs)-1; i++ {
		results, err := AlignAgainstMultiple(seqs[i], seqs[i+1:], model, gap)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		for _, r := range results {
			pairs = append(pairs, Pair{I: i, J: i + 1 + r.Index, Alignment: r.Alignment})
		}
	}

	return pairs, nil
}
