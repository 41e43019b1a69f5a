package alignment

import (
	"fmt"
	"strings"
)

// Gap is the gap marker used in aligned strings.
const Gap = '-'

// LineWidth is the number of alignment columns per line in Format.
const LineWidth = 60

// Alignment is the result of aligning sequence A against sequence B.
//
// A, Middle and B always have the same length and a gap never appears in
// both A and B at the same column. Start and End offsets are 0-based and
// half-open into the original sequences.
type Alignment struct {
	A      string
	Middle string
	B      string
	Score  int
	StartA int
	EndA   int
	StartB int
	EndB   int
	Type   AlignmentType
}

// Length returns the number of alignment columns.
func (a *Alignment) Length() int {
	return len(a.A)
}

// Identity returns the fraction of columns holding identical symbols.
func (a *Alignment) Identity() float64 {
	if len(a.A) == 0 {
		return 0.0
	}
	return float64(a.MatchCount()) / float64(len(a.A))
}

// MatchCount returns the number of identical columns, ignoring case.
func (a *Alignment) MatchCount() int {
	count := 0
	for i := 0; i < len(a.A); i++ {
		if upper(a.A[i]) == upper(a.B[i]) && a.A[i] != Gap {
			count++
		}
	}
	return count
}

// MismatchCount returns the number of substituted columns.
func (a *Alignment) MismatchCount() int {
	count := 0
	for i := 0; i < len(a.A); i++ {
		if upper(a.A[i]) != upper(a.B[i]) && a.A[i] != Gap && a.B[i] != Gap {
			count++
		}
	}
	return count
}

// GapsA returns the number of gaps in the aligned A string.
func (a *Alignment) GapsA() int {
	return strings.Count(a.A, string(Gap))
}

// GapsB returns the number of gaps in the aligned B string.
func (a *Alignment) GapsB() int {
	return strings.Count(a.B, string(Gap))
}

// TotalGaps returns the total number of gaps.
func (a *Alignment) TotalGaps() int {
	return a.GapsA() + a.GapsB()
}

// GapOpenings counts the number of gap openings.
func (a *Alignment) GapOpenings() int {
	openings := 0
	inGapA, inGapB := false, false

	for i := 0; i < len(a.A); i++ {
		if a.A[i] == Gap && !inGapA {
			openings++
			inGapA = true
		} else if a.A[i] != Gap {
			inGapA = false
		}

		if a.B[i] == Gap && !inGapB {
			openings++
			inGapB = true
		} else if a.B[i] != Gap {
			inGapB = false
		}
	}

	return openings
}

// CIGAR generates a CIGAR string with A as the reference.
func (a *Alignment) CIGAR() string {
	if len(a.A) == 0 {
		return ""
	}

	var cigar strings.Builder
	currentOp := byte(0)
	count := 0

	for i := 0; i < len(a.A); i++ {
		var op byte
		if a.A[i] == Gap {
			op = 'I' // Insertion
		} else if a.B[i] == Gap {
			op = 'D' // Deletion
		} else if upper(a.A[i]) == upper(a.B[i]) {
			op = 'M' // Match
		} else {
			op = 'X' // Mismatch
		}

		if op == currentOp {
			count++
		} else {
			if count > 0 {
				cigar.WriteString(fmt.Sprintf("%d%c", count, currentOp))
			}
			currentOp = op
			count = 1
		}
	}

	if count > 0 {
		cigar.WriteString(fmt.Sprintf("%d%c", count, currentOp))
	}

	return cigar.String()
}

// Format renders the alignment as fixed-width text blocks of LineWidth
// columns. Each sequence line carries its label and the 1-based offset of
// the fragment's first symbol in the original sequence.
func (a *Alignment) Format(labelA, labelB string) string {
	width := len(labelA)
	if len(labelB) > width {
		width = len(labelB)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d\nIdentity: %.1f%%\nCIGAR: %s\n", a.Score, a.Identity()*100, a.CIGAR())

	posA, posB := a.StartA, a.StartB
	for start := 0; start < len(a.A); start += LineWidth {
		end := start + LineWidth
		if end > len(a.A) {
			end = len(a.A)
		}
		fragA, fragB := a.A[start:end], a.B[start:end]

		sb.WriteByte('\n')
		fmt.Fprintf(&sb, "%-*s %6d %s\n", width, labelA, posA+1, fragA)
		fmt.Fprintf(&sb, "%-*s %6s %s\n", width, "", "", a.Middle[start:end])
		fmt.Fprintf(&sb, "%-*s %6d %s\n", width, labelB, posB+1, fragB)

		posA += len(fragA) - strings.Count(fragA, string(Gap))
		posB += len(fragB) - strings.Count(fragB, string(Gap))
	}

	return sb.String()
}

func (a *Alignment) String() string {
	return fmt.Sprintf("Alignment { type: %s, score: %d, identity: %.1f%%, length: %d }",
		a.Type, a.Score, a.Identity()*100, a.Length())
}

// middleSymbol returns the comparison-line character for a diagonal step.
func middleSymbol(a, b byte, positive bool) byte {
	switch {
	case upper(a) == upper(b):
		return upper(a)
	case positive:
		return '+'
	default:
		return ' '
	}
}

// reverse reverses a byte slice in place and returns it as a string.
func reverse(b []byte) string {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
