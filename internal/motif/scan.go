package motif

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

// HistogramBins is the number of hit-distance histogram bins. Distances of
// HistogramBins-1 or more share the last bin.
const HistogramBins = 101

// Hit is the best motif match in a sequence's UTR region.
type Hit struct {
	// Index is the start of the matching window.
	Index int `json:"index"`
	// Distance is the number of bases from the window start to the tail.
	Distance int `json:"distance"`
	// Score is the log ratio of model to background for the window.
	Score float64 `json:"score"`
}

// Scanner scores sequence windows against a motif model relative to a
// background model of the same width.
type Scanner struct {
	Model      *WeightMatrix
	Background *WeightMatrix
}

// NewScanner checks that both models have the same width.
func NewScanner(model, background *WeightMatrix) (*Scanner, error) {
	if model.Width() != background.Width() {
		return nil, bioerr.Shape("scanner", "background width", model.Width(), background.Width())
	}
	return &Scanner{Model: model, Background: background}, nil
}

// LogRatios returns log(model/background) of the normalized window scores
// of seq. Windows the background scores as zero get -Inf.
func (s *Scanner) LogRatios(seq string) ([]float64, error) {
	ind, err := Matrixify(seq)
	if err != nil {
		return nil, err
	}
	model, err := ScoreWindows(s.Model, ind)
	if err != nil {
		return nil, err
	}
	background, err := ScoreWindows(s.Background, ind)
	if err != nil {
		return nil, err
	}

	ratios := make([]float64, len(model))
	for k := range model {
		if background[k] <= 0 || model[k] <= 0 {
			ratios[k] = math.Inf(-1)
			continue
		}
		ratios[k] = math.Log(model[k] / background[k])
	}
	return ratios, nil
}

// Scan looks for a motif hit in seq[:tail], the region before the poly-A
// tail. A hit needs a window whose log ratio is above zero; when several
// windows share the maximum the last one is reported. A region shorter
// than the motif width has no hit.
func (s *Scanner) Scan(seq string, tail int) (Hit, bool, error) {
	if tail < 0 || tail > len(seq) {
		return Hit{}, false, fmt.Errorf("scan: tail %d outside sequence of length %d", tail, len(seq))
	}
	if tail < s.Model.Width() {
		return Hit{}, false, nil
	}

	ratios, err := s.LogRatios(seq[:tail])
	if err != nil {
		return Hit{}, false, err
	}

	best, index := math.Inf(-1), -1
	for k, r := range ratios {
		if r >= best {
			best, index = r, k
		}
	}
	if index < 0 || !(best > 0) {
		return Hit{}, false, nil
	}
	return Hit{Index: index, Distance: tail - index, Score: best}, true, nil
}

// ScanStats accumulates hits over many sequences.
type ScanStats struct {
	Sequences     int                `json:"sequences"`
	Hits          int                `json:"hits"`
	TotalDistance int                `json:"total_distance"`
	Histogram     [HistogramBins]int `json:"histogram"`
}

// Add records one hit.
func (st *ScanStats) Add(h Hit) {
	st.Hits++
	st.TotalDistance += h.Distance
	bin := h.Distance
	if bin >= HistogramBins {
		bin = HistogramBins - 1
	}
	if bin < 0 {
		bin = 0
	}
	st.Histogram[bin]++
}

// Merge adds other's counts to st.
func (st *ScanStats) Merge(other *ScanStats) {
	st.Sequences += other.Sequences
	st.Hits += other.Hits
	st.TotalDistance += other.TotalDistance
	for i, n := range other.Histogram {
		st.Histogram[i] += n
	}
}

// MeanDistance returns the average hit distance, or 0 without hits.
func (st *ScanStats) MeanDistance() float64 {
	if st.Hits == 0 {
		return 0
	}
	return float64(st.TotalDistance) / float64(st.Hits)
}

// ScanAll scans every sequence in parallel, locating each sequence's poly-A
// tail first. At most workers sequences are scanned at once; workers <= 0
// means no limit. Sequences are independent, so the result does not depend
// on scheduling.
func ScanAll(ctx context.Context, s *Scanner, seqs []string, workers int) (*ScanStats, error) {
	type result struct {
		hit Hit
		ok  bool
	}
	results := make([]result, len(seqs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, seq := range seqs {
		i, seq := i, seq
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seq = strings.ToUpper(seq)
			hit, ok, err := s.Scan(seq, sequence.PolyATail(seq))
			if err != nil {
				return fmt.Errorf("sequence %d: %w", i, err)
			}
			results[i] = result{hit: hit, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &ScanStats{Sequences: len(seqs)}
	for _, r := range results {
		if r.ok {
			stats.Add(r.hit)
		}
	}
	return stats, nil
}
