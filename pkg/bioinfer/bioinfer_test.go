package bioinfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	local, err := Align("HEAGAWGHEE", "PAWHEAE")
	require.NoError(t, err)
	assert.Equal(t, 25, local.Score)

	global, err := AlignGlobal("ACGT", "AGT")
	require.NoError(t, err)
	assert.Equal(t, "A-GT", global.B)

	same, err := AlignWith("HEAGAWGHEE", "PAWHEAE", nil, DefaultGapCost, false)
	require.NoError(t, err)
	assert.Equal(t, local, same)
}

func TestCompareAllAndBestHit(t *testing.T) {
	seqs := []string{"HEAGAWGHEE", "PAWHEAE", "PPPP"}

	pairs, err := CompareAll(seqs, nil, DefaultGapCost)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 1, pairs[0].J)
	assert.Equal(t, 25, pairs[0].Alignment.Score)

	idx, aln, err := BestHit("HEAGAWGHEE", seqs[1:], nil, DefaultGapCost)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 25, aln.Score)

	_, _, err = BestHit("HEAGAWGHEE", nil, nil, DefaultGapCost)
	assert.Error(t, err)
}

func TestDecodeAndTrain(t *testing.T) {
	dec, err := Decode("ACGTACGTGGCC", nil)
	require.NoError(t, err)
	assert.Len(t, dec.Path, 12)

	_, err = Decode("ACGU", nil)
	assert.Error(t, err)

	m, reports, err := Train(context.Background(), "ACGTACGTGGCCAATT", nil, 2)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.NoError(t, m.Validate())
	assert.Equal(t, DefaultHMM().Initial, m.Initial)
}

func TestFindORFs(t *testing.T) {
	assert.Len(t, FindORFs("ATGAAATAGCCCTGATAAGGGTAG", false), 4)
	assert.Len(t, FindORFs("CTATTT", true), 1)
}

func TestReadFASTA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fna")
	require.NoError(t, os.WriteFile(path, []byte(">a\nACGT\n>b\nGGCC\n"), 0o644))

	seqs, err := ReadFASTA(path)
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	assert.Equal(t, "b", seqs[1].ID)
}

func TestInfo(t *testing.T) {
	assert.Contains(t, Info(), "v"+Version())
}
