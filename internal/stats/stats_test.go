package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

func TestFromLengths(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    LengthStats
	}{
		{
			name:    "odd count",
			lengths: []int{4, 8, 4},
			want:    LengthStats{Count: 3, Total: 16, Min: 4, Max: 8, Mean: 16.0 / 3.0, Median: 4, N50: 8},
		},
		{
			// Total = 300, half = 150, 100 + 80 >= 150
			name:    "N50",
			lengths: []int{20, 100, 60, 80, 40},
			want:    LengthStats{Count: 5, Total: 300, Min: 20, Max: 100, Mean: 60, Median: 60, N50: 80},
		},
		{
			name:    "even count",
			lengths: []int{1, 2, 3, 10},
			want:    LengthStats{Count: 4, Total: 16, Min: 1, Max: 10, Mean: 4, Median: 2, N50: 10},
		},
		{
			name:    "single",
			lengths: []int{7},
			want:    LengthStats{Count: 1, Total: 7, Min: 7, Max: 7, Mean: 7, Median: 7, N50: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLengths(tt.lengths)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			got.Mean = tt.want.Mean
			assert.Equal(t, tt.want, *got)
		})
	}

	_, err := FromLengths(nil)
	require.Error(t, err)
}

func TestFromSegments(t *testing.T) {
	segments := []hmm.Segment{
		{Start: 0, End: 4, State: 0},
		{Start: 4, End: 6, State: 1},
		{Start: 6, End: 9, State: 0},
		{Start: 9, End: 10, State: 1},
	}

	got := FromSegments(segments)
	require.Len(t, got, 2)

	assert.Equal(t, hmm.State(0), got[0].State)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 7, got[0].Total)
	assert.InDelta(t, 0.7, got[0].Fraction, 1e-12)

	assert.Equal(t, hmm.State(1), got[1].State)
	assert.Equal(t, 3, got[1].Total)
	assert.Equal(t, 1, got[1].Min)
	assert.Equal(t, 2, got[1].Max)

	assert.Empty(t, FromSegments(nil))
}

func TestFromSequences(t *testing.T) {
	s1, err := sequence.New("ATGC")
	require.NoError(t, err)
	s2, err := sequence.New("ATGCATGN")
	require.NoError(t, err)
	s3, err := sequence.New("GGCC")
	require.NoError(t, err)

	stats, err := FromSequences([]*sequence.Sequence{s1, s2, s3})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 16, stats.Total)
	assert.Equal(t, 4, stats.Min)
	assert.Equal(t, 8, stats.Max)
	assert.Equal(t, 4, stats.Median)
	assert.Equal(t, 1, stats.TotalAmbiguous)
	assert.True(t, strings.Contains(stats.String(), "total_bases: 16"))

	_, err = FromSequences(nil)
	require.Error(t, err)
}

func BenchmarkFromLengths(b *testing.B) {
	lengths := make([]int, 10000)
	for i := range lengths {
		lengths[i] = (i * 7919) % 1000
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = FromLengths(lengths)
	}
}
