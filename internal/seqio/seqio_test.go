package seqio

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/bioinfer-go/internal/orf"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

func TestParseFASTA(t *testing.T) {
	input := `>seq1 first sequence
ATGC
atgc

>seq2
GGCC
`
	seqs, err := ParseFASTA(strings.NewReader(input), FASTAOptions{})
	require.NoError(t, err)
	require.Len(t, seqs, 2)

	assert.Equal(t, "seq1", seqs[0].ID)
	assert.Equal(t, "first sequence", seqs[0].Description)
	assert.Equal(t, "ATGCATGC", seqs[0].Bases)
	assert.Equal(t, "seq2", seqs[1].ID)
	assert.Empty(t, seqs[1].Description)
	assert.Equal(t, []string{"ATGCATGC", "GGCC"}, Bases(seqs))
}

func TestParseFASTAOptions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    FASTAOptions
		want    string
		wantErr bool
	}{
		{"clean replaces unknown symbols", ">x\nacgXnu\n", FASTAOptions{Clean: true}, "ACGTTT", false},
		{"invalid without clean", ">x\nACGX\n", FASTAOptions{}, "", true},
		{"protein", ">p\nHEAGAWGHEE\n", FASTAOptions{Type: sequence.Protein}, "HEAGAWGHEE", false},
		{"no header", "ACGT\n", FASTAOptions{}, "ACGT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqs, err := ParseFASTA(strings.NewReader(tt.input), tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, seqs, 1)
			assert.Equal(t, tt.want, seqs[0].Bases)
		})
	}
}

func TestReadWriteFASTA(t *testing.T) {
	seq, err := sequence.WithMetadata("ACGTACGT", "id1", "desc", sequence.DNA)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, []*sequence.Sequence{seq}))
	assert.Equal(t, ">id1 desc\nACGTACGT\n", buf.String())

	path := filepath.Join(t.TempDir(), "in.fna")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	seqs, err := ReadFASTA(path, FASTAOptions{})
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.True(t, seq.Equal(seqs[0]))

	_, err = ReadFASTA(filepath.Join(t.TempDir(), "missing.fna"), FASTAOptions{})
	assert.Error(t, err)
}

func TestParseGenBankCDS(t *testing.T) {
	input := `LOCUS       NC_000913
FEATURES             Location/Qualifiers
     gene            190..255
     CDS             190..255
                     /gene="thrL"
     CDS             complement(5683..6459)
     CDS             <337..>2799
`
	got, err := ParseGenBankCDS(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []orf.Annotation{
		{Start: 189, End: 254},
		{Start: 336, End: 2798},
	}, got)

	_, err = ParseGenBankCDS(strings.NewReader("CDS join\n"))
	assert.Error(t, err)
}

const samInput = "@HD\tVN:1.0\n" +
	"r1\t0\tchr1\t100\t60\t10M\t*\t0\t0\tCGCGCAAAAA\t*\tAS:i:-4\tNM:i:2\tMD:Z:3A6\n" +
	"r2\t4\t*\t0\t0\t*\t*\t0\t0\tCGCGCGCAAA\t*\n" +
	"r3\t16\tchr1\t200\t60\t10M\t*\t0\t0\tTTTTTGCGCG\t*\tAS:i:-20\tNM:i:5\n" +
	"r4\t0\tchr1\t300\t60\t10M\t*\t0\t0\tCGCGCGCGCA\t*\tAS:i:-10\tNM:i:0\n"

func TestParseSAMLine(t *testing.T) {
	line := strings.Split(samInput, "\n")[1]
	rec, err := ParseSAMLine(line)
	require.NoError(t, err)

	assert.Equal(t, "r1", rec.QName)
	assert.Equal(t, 100, rec.Pos)
	assert.Equal(t, "10M", rec.CIGAR)
	require.NotNil(t, rec.AlignScore)
	assert.Equal(t, -4, *rec.AlignScore)
	require.NotNil(t, rec.Mismatches)
	assert.Equal(t, 2, *rec.Mismatches)
	assert.Equal(t, "3A6", rec.MD)
	assert.Equal(t, 5, rec.PolyALen())
	assert.False(t, rec.Unmapped())

	_, err = ParseSAMLine("r1\t0\tchr1")
	assert.Error(t, err)

	_, err = ParseSAMLine("r1\tx\tchr1\t100\t60\t10M\t*\t0\t0\tACGT\t*")
	assert.Error(t, err)
}

func TestSAMFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter SAMFilter
		limit  int
		want   []string
	}{
		{"no filter", SAMFilter{}, 0, []string{"r1", "r2", "r3", "r4"}},
		{"matches only", SAMFilter{MatchesOnly: true}, 0, []string{"r1", "r3", "r4"}},
		{"min mismatch", SAMFilter{MinMismatch: 1}, 0, []string{"r1", "r2", "r3"}},
		{"max align score", SAMFilter{MaxAlignScore: -5}, 0, []string{"r2", "r3", "r4"}},
		{"min poly-A", SAMFilter{MinPolyALen: 3}, 0, []string{"r1", "r2", "r3"}},
		{"limit", SAMFilter{}, 2, []string{"r1", "r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			st, err := FilterSAM(strings.NewReader(samInput), &out, tt.filter, tt.limit)
			require.NoError(t, err)

			var recs []SAMRecord
			require.NoError(t, json.Unmarshal(out.Bytes(), &recs))
			names := make([]string, len(recs))
			for i, r := range recs {
				names[i] = r.QName
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), st.Kept)
		})
	}
}

func TestParsePhred33(t *testing.T) {
	scores, err := ParsePhred33("!+5I~")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 40, PhredMax}, scores)

	scores, err = ParsePhred33("*")
	require.NoError(t, err)
	assert.Nil(t, scores)

	_, err = ParsePhred33("II I")
	assert.Error(t, err)
}

func TestSAMFilterMeanQuality(t *testing.T) {
	high := &SAMRecord{QName: "high", Seq: "ACGT", Qual: "IIII"}
	low := &SAMRecord{QName: "low", Seq: "ACGT", Qual: "!!+5"}
	none := &SAMRecord{QName: "none", Seq: "ACGT", Qual: "*"}

	q, ok := low.MeanQuality()
	require.True(t, ok)
	assert.InDelta(t, 7.5, q, 1e-12)
	_, ok = none.MeanQuality()
	assert.False(t, ok)

	f := SAMFilter{MinMeanQuality: 30}
	assert.True(t, f.Keep(high))
	assert.False(t, f.Keep(low))
	assert.True(t, f.Keep(none))
}
