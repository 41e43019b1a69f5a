package alignment

import (
	"errors"
	"strings"
	"testing"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBLOSUM62(t *testing.T) {
	m := BLOSUM62()
	require.NotNil(t, m)
	assert.Same(t, m, BLOSUM62())
	assert.Equal(t, 24, m.Alphabet().Len())

	t.Run("Score", func(t *testing.T) {
		s, ok := m.Score('W', 'W')
		require.True(t, ok)
		assert.Equal(t, 11, s)

		s, ok = m.Score('h', 'E')
		require.True(t, ok)
		assert.Equal(t, 0, s)
	})

	t.Run("wildcard is not a known symbol", func(t *testing.T) {
		_, ok := m.Score('*', '*')
		assert.False(t, ok)
		assert.Equal(t, 1, m.WildcardScore())
	})

	t.Run("Substitution", func(t *testing.T) {
		assert.Equal(t, -1, m.Substitution('X', 'X', -4))
		assert.Equal(t, 1, m.Substitution('J', 'J', -4))
		assert.Equal(t, -4, m.Substitution('J', 'O', -4))
		assert.Equal(t, -7, m.Substitution('J', 'A', -7))
	})
}

func TestParseScoreModel(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		wantShape bool
		wantDegen bool
	}{
		{
			name:  "valid",
			table: "# comment\n  A C *\nA 2 -1 -4\nC -1 2 -4\n* -4 -4 1\n",
		},
		{
			name:      "ragged row",
			table:     "A C\nA 2 -1\nC -1\n",
			wantShape: true,
		},
		{
			name:      "missing row",
			table:     "A C\nA 2 -1\n",
			wantShape: true,
		},
		{
			name:      "empty",
			table:     "# nothing here\n\n",
			wantDegen: true,
		},
		{
			name:  "asymmetric",
			table: "A C\nA 2 -1\nC 0 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseScoreModel(strings.NewReader(tt.table))
			switch {
			case tt.wantShape:
				var shapeErr *bioerr.ShapeError
				require.ErrorAs(t, err, &shapeErr)
			case tt.wantDegen:
				var degenErr *bioerr.DegenerateInputError
				require.ErrorAs(t, err, &degenErr)
			case tt.name == "asymmetric":
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not symmetric")
			default:
				require.NoError(t, err)
				s, ok := m.Score('a', 'c')
				require.True(t, ok)
				assert.Equal(t, -1, s)
				assert.Equal(t, 1, m.WildcardScore())
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	m, err := Identity("ACGT", 5, -4)
	require.NoError(t, err)

	aln, err := Local("ACGT", "ACGT", m, -6)
	require.NoError(t, err)
	assert.Equal(t, 20, aln.Score)

	_, err = Identity("ACGT", 0, -1)
	require.Error(t, err)
	_, err = Identity("ACGT", 2, 1)
	require.Error(t, err)
	_, err = Identity("ACGA", 2, -1)
	require.Error(t, err)
}

func TestFill(t *testing.T) {
	a, b := "HEAGAWGHEE", "PAWHEAE"
	m := Fill(a, b, BLOSUM62(), DefaultGapCost)

	require.Equal(t, len(a)+1, m.Rows())
	require.Equal(t, len(b)+1, m.Cols())

	for i := 0; i < m.Rows(); i++ {
		assert.Equal(t, 0, m.At(i, 0))
		for j := 0; j < m.Cols(); j++ {
			assert.GreaterOrEqual(t, m.At(i, j), 0)
		}
	}
	for j := 0; j < m.Cols(); j++ {
		assert.Equal(t, 0, m.At(0, j))
	}

	assert.Equal(t, []int{0, 0, 0, 0, 11, 20, 23, 25}, m.H[len(a)])

	cell, score := m.Max()
	assert.Equal(t, Cell{I: 10, J: 7}, cell)
	assert.Equal(t, 25, score)
}

func TestFillEmpty(t *testing.T) {
	m := Fill("", "ACGT", nil, DefaultGapCost)
	assert.Equal(t, 1, m.Rows())
	assert.Equal(t, 5, m.Cols())

	aln, err := Traceback(m, "", "ACGT", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, aln.Score)
	assert.Empty(t, aln.A)
}

func TestLocal(t *testing.T) {
	tests := []struct {
		name   string
		a      string
		b      string
		gap    int
		score  int
		alnA   string
		middle string
		alnB   string
		startA int
		startB int
		endA   int
		endB   int
	}{
		{
			name: "HEAGAWGHEE vs PAWHEAE", a: "HEAGAWGHEE", b: "PAWHEAE", gap: -4,
			score: 25, alnA: "AWGHE-E", middle: "AW HE E", alnB: "AW-HEAE",
			startA: 4, startB: 1, endA: 10, endB: 7,
		},
		{
			name: "HEAGAWGHEE vs PAWHEAE gap -8", a: "HEAGAWGHEE", b: "PAWHEAE", gap: -8,
			score: 20, alnA: "AWGHE", middle: "AW HE", alnB: "AW-HE",
			startA: 4, startB: 1, endA: 9, endB: 5,
		},
		{
			name: "single deletion", a: "KAWHEE", b: "KAHEE", gap: -4,
			score: 23, alnA: "KAWHEE", middle: "KA HEE", alnB: "KA-HEE",
			endA: 6, endB: 5,
		},
		{
			name: "identical", a: "ACGT", b: "ACGT", gap: -4,
			score: 24, alnA: "ACGT", middle: "ACGT", alnB: "ACGT",
			endA: 4, endB: 4,
		},
		{
			name: "unknown symbols use wildcard score", a: "AXJJ", b: "AXJJ", gap: -4,
			score: 5, alnA: "AXJJ", middle: "AXJJ", alnB: "AXJJ",
			endA: 4, endB: 4,
		},
		{
			name: "embedded", a: "MKVLA", b: "QQMKVLAQQ", gap: -4,
			score: 22, alnA: "MKVLA", middle: "MKVLA", alnB: "MKVLA",
			startB: 2, endA: 5, endB: 7,
		},
		{
			name: "no positive cell", a: "WWWW", b: "PPPP", gap: -4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aln, err := Local(tt.a, tt.b, BLOSUM62(), tt.gap)
			require.NoError(t, err)

			assert.Equal(t, tt.score, aln.Score)
			assert.Equal(t, tt.alnA, aln.A)
			assert.Equal(t, tt.middle, aln.Middle)
			assert.Equal(t, tt.alnB, aln.B)
			assert.Equal(t, tt.startA, aln.StartA)
			assert.Equal(t, tt.startB, aln.StartB)
			assert.Equal(t, tt.endA, aln.EndA)
			assert.Equal(t, tt.endB, aln.EndB)
			assert.Equal(t, LocalAlignment, aln.Type)
			assert.Equal(t, tt.score, ScoreOnly(tt.a, tt.b, BLOSUM62(), tt.gap))
		})
	}
}

func TestLocalCaseInsensitive(t *testing.T) {
	aln, err := Local("heagawghee", "PAWHEAE", nil, DefaultGapCost)
	require.NoError(t, err)
	assert.Equal(t, 25, aln.Score)
	assert.Equal(t, "awghe-e", aln.A)
	assert.Equal(t, "AW HE E", aln.Middle)
	assert.Equal(t, 5, aln.MatchCount())
	assert.Equal(t, 0, aln.MismatchCount())
	assert.InDelta(t, 5.0/7.0, aln.Identity(), 1e-9)
	assert.Equal(t, "2M1D2M1I1M", aln.CIGAR())
}

func TestTracebackRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"HEAGAWGHEE", "PAWHEAE"},
		{"MEEPQSDPSVEPPLSQETFSDLWKLL", "MEESQSDISLELPLSQETFSGLWKLLPPE"},
		{"KAWHEE", "KAHEE"},
		{"ACDEFGHIKLMNPQRSTVWY", "YWVTSRQPNMLKIHGFEDCA"},
	}

	for _, p := range pairs {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			a, b := p[0], p[1]
			aln, err := Local(a, b, BLOSUM62(), DefaultGapCost)
			require.NoError(t, err)

			require.Equal(t, len(aln.A), len(aln.B))
			require.Equal(t, len(aln.A), len(aln.Middle))
			for i := 0; i < len(aln.A); i++ {
				assert.False(t, aln.A[i] == Gap && aln.B[i] == Gap, "double gap at column %d", i)
			}

			assert.Equal(t, a[aln.StartA:aln.EndA], strings.ReplaceAll(aln.A, "-", ""))
			assert.Equal(t, b[aln.StartB:aln.EndB], strings.ReplaceAll(aln.B, "-", ""))
		})
	}
}

func TestTracebackFromCell(t *testing.T) {
	a, b := "HEAGAWGHEE", "PAWHEAE"
	m := Fill(a, b, BLOSUM62(), DefaultGapCost)

	aln, err := Traceback(m, a, b, &Cell{I: 9, J: 5})
	require.NoError(t, err)
	assert.Equal(t, m.At(9, 5), aln.Score)
	assert.Equal(t, 9, aln.EndA)
	assert.Equal(t, 5, aln.EndB)

	_, err = Traceback(m, a, b, &Cell{I: 11, J: 0})
	require.Error(t, err)
}

func TestTracebackErrors(t *testing.T) {
	t.Run("shape mismatch", func(t *testing.T) {
		m := Fill("ACGT", "ACGT", nil, DefaultGapCost)
		_, err := Traceback(m, "ACG", "ACGT", nil)
		var shapeErr *bioerr.ShapeError
		require.ErrorAs(t, err, &shapeErr)
	})

	t.Run("zero branch at nonzero cell", func(t *testing.T) {
		m := &Matrix{H: [][]int{{0, 0}, {0, 5}}, model: BLOSUM62(), gap: DefaultGapCost}
		_, err := Traceback(m, "W", "P", nil)
		var invErr *bioerr.InvariantError
		require.True(t, errors.As(err, &invErr))
		assert.Contains(t, err.Error(), "zero branch")
	})

	t.Run("cell disagrees with recurrence", func(t *testing.T) {
		m := &Matrix{H: [][]int{{0, 0}, {0, 7}}, model: BLOSUM62(), gap: DefaultGapCost}
		_, err := Traceback(m, "W", "W", nil)
		var invErr *bioerr.InvariantError
		require.ErrorAs(t, err, &invErr)
	})
}

func TestGlobal(t *testing.T) {
	tests := []struct {
		name   string
		a      string
		b      string
		gap    int
		score  int
		alnA   string
		middle string
		alnB   string
	}{
		{"HEAGAWGHEE vs PAWHEAE", "HEAGAWGHEE", "PAWHEAE", -8, -8, "HEAGAWGHEE", "    AW   E", "--P-AWHEAE"},
		{"one gap", "ACGT", "AGT", -4, 11, "ACGT", "A GT", "A-GT"},
		{"deletion", "KAWHEE", "KAHEE", -4, 23, "KAWHEE", "KA HEE", "KA-HEE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aln, err := Global(tt.a, tt.b, BLOSUM62(), tt.gap)
			require.NoError(t, err)
			assert.Equal(t, tt.score, aln.Score)
			assert.Equal(t, tt.alnA, aln.A)
			assert.Equal(t, tt.middle, aln.Middle)
			assert.Equal(t, tt.alnB, aln.B)
			assert.Equal(t, GlobalAlignment, aln.Type)
			assert.Equal(t, len(tt.a), aln.EndA)
			assert.Equal(t, len(tt.b), aln.EndB)

			score, err := GlobalScoreOnly(tt.a, tt.b, BLOSUM62(), tt.gap)
			require.NoError(t, err)
			assert.Equal(t, tt.score, score)
		})
	}

	_, err := Global("", "ACGT", nil, DefaultGapCost)
	require.Error(t, err)
}

func TestAlignmentCounters(t *testing.T) {
	aln := &Alignment{A: "AWGHE-E", Middle: "AW HE E", B: "AW-HEAE"}

	assert.Equal(t, 7, aln.Length())
	assert.Equal(t, 5, aln.MatchCount())
	assert.Equal(t, 0, aln.MismatchCount())
	assert.Equal(t, 1, aln.GapsA())
	assert.Equal(t, 1, aln.GapsB())
	assert.Equal(t, 2, aln.TotalGaps())
	assert.Equal(t, 2, aln.GapOpenings())
	assert.InDelta(t, 5.0/7.0, aln.Identity(), 1e-9)
	assert.Equal(t, "2M1D2M1I1M", aln.CIGAR())
}

func TestCIGAR(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want string
	}{
		{"ACGT", "ACGT", "4M"},
		{"ACGT", "ACCT", "2M1X1M"},
		{"acgt", "ACGT", "4M"},
		{"acgt", "ACCT", "2M1X1M"},
		{"AC--GT", "ACTTGT", "2M2I2M"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			aln := &Alignment{A: tt.a, B: tt.b}
			assert.Equal(t, tt.want, aln.CIGAR())
		})
	}
}

func TestFormat(t *testing.T) {
	aln, err := Local("HEAGAWGHEE", "PAWHEAE", nil, DefaultGapCost)
	require.NoError(t, err)

	out := aln.Format("seqA", "seqB")
	assert.Contains(t, out, "Score: 25")
	assert.Contains(t, out, "seqA      5 AWGHE-E\n")
	assert.Contains(t, out, "            AW HE E\n")
	assert.Contains(t, out, "seqB      2 AW-HEAE\n")
}

func TestFormatBlocks(t *testing.T) {
	s := strings.Repeat("ACDEFGHIKL", 13)
	aln, err := Local(s, s, nil, DefaultGapCost)
	require.NoError(t, err)
	require.Equal(t, 130, aln.Length())

	out := aln.Format("a", "b")
	assert.Equal(t, 3, strings.Count(out, "\na "))
	assert.Contains(t, out, "a      1 "+s[:60]+"\n")
	assert.Contains(t, out, "a     61 "+s[60:120]+"\n")
	assert.Contains(t, out, "b    121 "+s[120:]+"\n")
}

func TestAlignAgainstMultiple(t *testing.T) {
	targets := []string{"PPPP", "PAWHEAE", "HEAGAWGHEE"}

	results, err := AlignAgainstMultiple("HEAGAWGHEE", targets, nil, DefaultGapCost)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, 25, results[1].Alignment.Score)

	best, err := FindBest("HEAGAWGHEE", targets, nil, DefaultGapCost)
	require.NoError(t, err)
	assert.Equal(t, 2, best.Index)

	_, err = AlignAgainstMultiple("ACGT", nil, nil, DefaultGapCost)
	require.Error(t, err)
}

func TestAllPairs(t *testing.T) {
	seqs := []string{"HEAGAWGHEE", "PAWHEAE", "PPPP"}

	pairs, err := AllPairs(seqs, nil, DefaultGapCost)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	got := make([][2]int, len(pairs))
	for i, p := range pairs {
		got[i] = [2]int{p.I, p.J}
		want, err := Local(seqs[p.I], seqs[p.J], nil, DefaultGapCost)
		require.NoError(t, err)
		assert.Equal(t, want.Score, p.Alignment.Score)
	}
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 2}}, got)
	assert.Equal(t, 25, pairs[0].Alignment.Score)

	_, err = AllPairs([]string{"ACGT"}, nil, DefaultGapCost)
	require.Error(t, err)
}

func BenchmarkFill(b *testing.B) {
	s1 := strings.Repeat("HEAGAWGHEE", 20)
	s2 := strings.Repeat("PAWHEAE", 20)
	model := BLOSUM62()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Fill(s1, s2, model, DefaultGapCost)
	}
}

func BenchmarkLocal(b *testing.B) {
	s1 := strings.Repeat("HEAGAWGHEE", 20)
	s2 := strings.Repeat("PAWHEAE", 20)
	model := BLOSUM62()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Local(s1, s2, model, DefaultGapCost)
	}
}

func BenchmarkScoreOnly(b *testing.B) {
	s1 := strings.Repeat("HEAGAWGHEE", 20)
	s2 := strings.Repeat("PAWHEAE", 20)
	model := BLOSUM62()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ScoreOnly(s1, s2, model, DefaultGapCost)
	}
}
