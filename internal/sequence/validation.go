package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

func (e *EmptySequenceError) IsSequenceError() {}

// InvalidBaseError is returned when an invalid base is encountered.
type InvalidBaseError struct {
	Position int
	Found    rune
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidBaseError) IsSequenceError() {}

// Valid symbols per sequence type
var (
	ValidDNABases = alphabet("ACGTRYSWKMBDHVN")
	ValidRNABases = alphabet("ACGURYSWKMBDHVN")
	ValidResidues = alphabet("ACDEFGHIKLMNPQRSTVWYBZX*")
)

func alphabet(symbols string) map[rune]bool {
	m := make(map[rune]bool, len(symbols))
	for _, r := range symbols {
		m[r] = true
	}
	return m
}

// Validate checks bases against the alphabet of the given sequence type.
// Unknown types are validated as DNA.
func Validate(bases string, seqType SequenceType) error {
	valid := ValidDNABases
	switch seqType {
	case RNA:
		valid = ValidRNABases
	case Protein:
		valid = ValidResidues
	}
	for i, b := range bases {
		if !valid[b] {
			return &InvalidBaseError{Position: i, Found: b}
		}
	}
	return nil
}

// ValidateDNA validates that a string contains only DNA bases or IUPAC codes.
func ValidateDNA(bases string) error {
	return Validate(bases, DNA)
}

// IsValidDNABase checks if a character is a valid DNA base or IUPAC code.
func IsValidDNABase(c rune) bool {
	return ValidDNABases[c]
}
