// Package orf finds open reading frames bounded by stop codons and compares
// them with annotated coding sequences.
package orf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bebop/poly/synthesis/codon"
	"github.com/bebop/poly/transform"
)

// StopCodons are the codons that end a reading frame.
var StopCodons = []string{"TAA", "TAG", "TGA"}

// StandardTable is the NCBI index of the standard genetic code.
const StandardTable = 1

// Strand is the strand an ORF was found on.
type Strand string

const (
	Forward Strand = "+"
	Reverse Strand = "-"
)

// ORF is a half-open region [Start, End) ending just before a stop codon.
// Coordinates always refer to the forward strand.
type ORF struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Frame  int    `json:"frame"`
	Strand Strand `json:"strand"`
}

// Len returns the ORF length in bases, excluding the stop codon.
func (o ORF) Len() int {
	return o.End - o.Start
}

func (o ORF) String() string {
	return fmt.Sprintf("%s[%d,%d) frame %d", o.Strand, o.Start, o.End, o.Frame)
}

func isStop(codon string) bool {
	for _, s := range StopCodons {
		if codon == s {
			return true
		}
	}
	return false
}

// FindStops returns the start index of every stop codon in seq in ascending
// order. Overlapping matches are all reported.
func FindStops(seq string) []int {
	seq = strings.ToUpper(seq)
	var stops []int
	for i := 0; i+3 <= len(seq); i++ {
		if isStop(seq[i : i+3]) {
			stops = append(stops, i)
		}
	}
	return stops
}

// Find returns the forward-strand ORFs of seq sorted by start. In each of
// the three frames the first ORF runs from the frame offset to the first
// stop and every later one from the end of the previous stop codon to the
// next. A stop directly following another stop in the same frame is
// skipped.
func Find(seq string) []ORF {
	stops := FindStops(seq)

	var orfs []ORF
	for offset := 0; offset < 3; offset++ {
		var frame []int
		for _, s := range stops {
			if s%3 == offset {
				frame = append(frame, s)
			}
		}
		if len(frame) == 0 {
			continue
		}

		kept := []int{frame[0]}
		for x := 1; x < len(frame); x++ {
			if frame[x]-3 != frame[x-1] {
				kept = append(kept, frame[x])
			}
		}

		start := offset
		for _, stop := range kept {
			orfs = append(orfs, ORF{Start: start, End: stop, Frame: offset, Strand: Forward})
			start = stop + 3
		}
	}

	sort.SliceStable(orfs, func(i, j int) bool {
		return orfs[i].Start < orfs[j].Start
	})
	return orfs
}

// FindBothStrands returns the ORFs of seq and of its reverse complement.
// Reverse-strand ORFs are mapped back to forward coordinates; their Frame
// stays relative to the reverse complement.
func FindBothStrands(seq string) []ORF {
	seq = strings.ToUpper(seq)
	orfs := Find(seq)

	n := len(seq)
	for _, o := range Find(transform.ReverseComplement(seq)) {
		orfs = append(orfs, ORF{Start: n - o.End, End: n - o.Start, Frame: o.Frame, Strand: Reverse})
	}

	sort.SliceStable(orfs, func(i, j int) bool {
		return orfs[i].Start < orfs[j].Start
	})
	return orfs
}

// Translate returns the protein encoded by o using the NCBI translation
// table with the given index.
func Translate(seq string, o ORF, tableIndex int) (string, error) {
	if o.Start < 0 || o.End > len(seq) || o.Start > o.End {
		return "", fmt.Errorf("orf %v outside sequence of length %d", o, len(seq))
	}
	if o.Len() == 0 {
		return "", nil
	}

	table, err := codon.NewTranslationTable(tableIndex)
	if err != nil {
		return "", fmt.Errorf("translation table %d: %w", tableIndex, err)
	}

	region := strings.ToUpper(seq[o.Start:o.End])
	if o.Strand == Reverse {
		region = transform.ReverseComplement(region)
	}
	protein, err := table.Translate(region)
	if err != nil {
		return "", fmt.Errorf("translate %v: %w", o, err)
	}
	return protein, nil
}
