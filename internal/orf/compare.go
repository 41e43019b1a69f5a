package orf

import "sort"

// Annotation is an annotated coding sequence [Start, End] in 0-based
// coordinates, as read from a GenBank CDS feature.
type Annotation struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LengthTally counts the ORFs of one length that do and do not end at an
// annotated stop codon.
type LengthTally struct {
	Length  int `json:"length"`
	Match   int `json:"match"`
	NoMatch int `json:"no_match"`
}

// AnnotatedStops returns the set of stop codon positions found inside the
// annotations, each searched over [Start, End+3) so the closing stop codon
// is included.
func AnnotatedStops(seq string, annotations []Annotation) map[int]struct{} {
	stops := make(map[int]struct{})
	for _, a := range annotations {
		start, end := a.Start, a.End+3
		if start < 0 {
			start = 0
		}
		if end > len(seq) {
			end = len(seq)
		}
		if start >= end {
			continue
		}
		for _, s := range FindStops(seq[start:end]) {
			stops[start+s] = struct{}{}
		}
	}
	return stops
}

// Compare declares an ORF a gene when it ends at an annotated stop codon and
// tallies genes and non-genes per ORF length, sorted by length.
func Compare(seq string, orfs []ORF, annotations []Annotation) []LengthTally {
	stops := AnnotatedStops(seq, annotations)

	byLength := make(map[int]*LengthTally)
	for _, o := range orfs {
		t, ok := byLength[o.Len()]
		if !ok {
			t = &LengthTally{Length: o.Len()}
			byLength[o.Len()] = t
		}
		if _, hit := stops[o.End]; hit {
			t.Match++
		} else {
			t.NoMatch++
		}
	}

	tallies := make([]LengthTally, 0, len(byLength))
	for _, t := range byLength {
		tallies = append(tallies, *t)
	}
	sort.Slice(tallies, func(i, j int) bool {
		return tallies[i].Length < tallies[j].Length
	})
	return tallies
}
