// Package sequence provides nucleotide and protein sequence types with validation.
//
// Sequences are upper-cased on construction and validated against the
// alphabet of their type. Nucleotide sequences accept the IUPAC ambiguity
// codes; the helpers in this package understand them when complementing or
// locating poly-A tails.
package sequence

import (
	"fmt"
	"strings"
)

// SequenceType represents the type of biological sequence.
type SequenceType int

const (
	// DNA represents a nucleotide sequence (A, C, G, T and IUPAC codes)
	DNA SequenceType = iota
	// RNA represents an RNA sequence (A, C, G, U and IUPAC codes)
	RNA
	// Protein represents an amino-acid sequence
	Protein
	// Unknown represents an unknown sequence type
	Unknown
)

func (t SequenceType) String() string {
	switch t {
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	case Protein:
		return "Protein"
	default:
		return "Unknown"
	}
}

// Sequence represents a validated biological sequence.
type Sequence struct {
	Bases       string
	ID          string
	Description string
	SeqType     SequenceType
}

// New creates a new DNA sequence with validation.
func New(bases string) (*Sequence, error) {
	return WithMetadata(bases, "", "", DNA)
}

// NewProtein creates a new protein sequence with validation.
func NewProtein(bases string) (*Sequence, error) {
	return WithMetadata(bases, "", "", Protein)
}

// WithID creates a new DNA sequence with an identifier.
func WithID(bases, id string) (*Sequence, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	seq, err := New(bases)
	if err != nil {
		return nil, err
	}

	seq.ID = id
	return seq, nil
}

// WithMetadata creates a new sequence with full metadata.
func WithMetadata(bases, id, description string, seqType SequenceType) (*Sequence, error) {
	normalized := strings.ToUpper(bases)

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}

	if err := Validate(normalized, seqType); err != nil {
		return nil, err
	}

	return &Sequence{
		Bases:       normalized,
		ID:          id,
		Description: description,
		SeqType:     seqType,
	}, nil
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// IsValid checks if all bases are valid for the sequence type.
func (s *Sequence) IsValid() bool {
	return Validate(s.Bases, s.SeqType) == nil
}

// CountAmbiguous counts the bases that are not one of A, C, G, T or U.
func (s *Sequence) CountAmbiguous() int {
	if s.SeqType == Protein {
		return strings.Count(s.Bases, "X")
	}
	count := 0
	for i := 0; i < len(s.Bases); i++ {
		switch s.Bases[i] {
		case 'A', 'C', 'G', 'T', 'U':
		default:
			count++
		}
	}
	return count
}

// BaseAt returns the base at a specific index, or false if out of bounds.
func (s *Sequence) BaseAt(index int) (rune, bool) {
	if index < 0 || index >= len(s.Bases) {
		return 0, false
	}
	return rune(s.Bases[index]), true
}

// Subsequence returns the half-open slice [start, end) of the sequence.
func (s *Sequence) Subsequence(start, end int) (*Sequence, error) {
	if start < 0 {
		return nil, fmt.Errorf("start index must be non-negative")
	}
	if end <= start {
		return nil, fmt.Errorf("end must be greater than start")
	}
	if end > len(s.Bases) {
		return nil, fmt.Errorf("end must not exceed sequence length")
	}

	return &Sequence{
		Bases:       s.Bases[start:end],
		ID:          s.ID,
		Description: s.Description,
		SeqType:     s.SeqType,
	}, nil
}

// complementBase returns the IUPAC complement of a nucleotide code.
func complementBase(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'T', 'U':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'R':
		return 'Y'
	case 'Y':
		return 'R'
	case 'K':
		return 'M'
	case 'M':
		return 'K'
	case 'B':
		return 'V'
	case 'V':
		return 'B'
	case 'D':
		return 'H'
	case 'H':
		return 'D'
	default:
		// S, W and N are their own complements.
		return c
	}
}

// Complement returns the IUPAC complement of a nucleotide string.
func Complement(bases string) string {
	comp := make([]byte, len(bases))
	for i := 0; i < len(bases); i++ {
		comp[i] = complementBase(bases[i])
	}
	return string(comp)
}

// Complement returns the complement of the sequence.
func (s *Sequence) Complement() (*Sequence, error) {
	if s.SeqType != DNA {
		return nil, fmt.Errorf("complement only available for DNA sequences")
	}

	return &Sequence{
		Bases:       Complement(s.Bases),
		ID:          s.ID,
		Description: s.Description,
		SeqType:     s.SeqType,
	}, nil
}

// Reverse returns the reverse of the sequence.
func (s *Sequence) Reverse() *Sequence {
	b := []byte(s.Bases)
	n := len(b)
	for i := 0; i < n/2; i++ {
		b[i], b[n-1-i] = b[n-1-i], b[i]
	}

	return &Sequence{
		Bases:       string(b),
		ID:          s.ID,
		Description: s.Description,
		SeqType:     s.SeqType,
	}
}

// ReverseComplement returns the reverse complement of the sequence.
func (s *Sequence) ReverseComplement() (*Sequence, error) {
	comp, err := s.Complement()
	if err != nil {
		return nil, err
	}
	return comp.Reverse(), nil
}

// GCContent calculates the proportion of G and C bases.
func (s *Sequence) GCContent() float64 {
	if len(s.Bases) == 0 {
		return 0.0
	}

	gcCount := 0
	for i := 0; i < len(s.Bases); i++ {
		if s.Bases[i] == 'G' || s.Bases[i] == 'C' {
			gcCount++
		}
	}

	return float64(gcCount) / float64(len(s.Bases))
}

// CleanNucleotides upper-cases bases and replaces every character that is
// not A, C, G or T with T. Whitespace is dropped.
func CleanNucleotides(bases string) string {
	var sb strings.Builder
	sb.Grow(len(bases))
	for _, r := range bases {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		switch c := strings.ToUpper(string(r)); c {
		case "A", "C", "G", "T":
			sb.WriteString(c)
		default:
			sb.WriteByte('T')
		}
	}
	return sb.String()
}

// polyA holds the codes that may stand for an A in a poly-A tail.
var polyA = [256]bool{'A': true, 'R': true, 'W': true, 'M': true, 'D': true, 'H': true, 'V': true, 'N': true}

// polyT holds the codes that may stand for a T in a poly-T head.
var polyT = [256]bool{'T': true, 'Y': true, 'W': true, 'K': true, 'B': true, 'D': true, 'H': true, 'N': true}

// PolyATail returns the index where the trailing poly-A run starts, or
// len(bases) when the sequence does not end in one. Uncertain codes that may
// stand for A count as part of the tail.
func PolyATail(bases string) int {
	i := len(bases)
	for i > 0 && polyA[bases[i-1]] {
		i--
	}
	return i
}

// PolyTHead returns the length of the leading poly-T run (the poly-A tail of
// a reverse-complemented read).
func PolyTHead(bases string) int {
	i := 0
	for i < len(bases) && polyT[bases[i]] {
		i++
	}
	return i
}

// ToFASTA returns the sequence in FASTA format.
func (s *Sequence) ToFASTA() string {
	var header string
	if s.ID != "" {
		header = ">" + s.ID
		if s.Description != "" {
			header += " " + s.Description
		}
	} else {
		header = ">sequence"
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteRune('\n')

	// Split sequence into 80-character lines
	for i := 0; i < len(s.Bases); i += 80 {
		end := i + 80
		if end > len(s.Bases) {
			end = len(s.Bases)
		}
		sb.WriteString(s.Bases[i:end])
		sb.WriteRune('\n')
	}

	return sb.String()
}

// String returns a string representation of the sequence.
func (s *Sequence) String() string {
	if s.ID != "" {
		return fmt.Sprintf(">%s\n%s", s.ID, s.Bases)
	}
	return s.Bases
}

// Equal checks equality with another sequence.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil {
		return false
	}
	return s.Bases == other.Bases && s.SeqType == other.SeqType
}
