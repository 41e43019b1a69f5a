// Package bioerr defines the error taxonomy shared by the analysis engines.
//
// Shape and degenerate-input errors are fatal to the operation that raised
// them. Numeric guard cases (log of zero, zero-sum normalization) are not
// errors: the engines recover from them locally.
package bioerr

import "fmt"

// EngineError is implemented by every error in this package.
type EngineError interface {
	error
	IsEngineError()
}

// ShapeError is returned when matrix dimensions violate an invariant.
type ShapeError struct {
	Op   string
	What string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: want %d, got %d", e.Op, e.What, e.Want, e.Got)
}

func (e *ShapeError) IsEngineError() {}

// DegenerateInputError is returned when an input cannot produce a meaningful
// result, e.g. an empty sequence or no windows to score.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DegenerateInputError) IsEngineError() {}

// InvalidSymbolError is returned when a symbol is outside an engine's alphabet.
type InvalidSymbolError struct {
	Position int
	Found    rune
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol '%c' at position %d", e.Found, e.Position)
}

func (e *InvalidSymbolError) IsEngineError() {}

// InvariantError reports a broken internal invariant, such as a traceback
// step that cannot be explained by the recurrence.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", e.Op, e.Detail)
}

func (e *InvariantError) IsEngineError() {}

// Shape is shorthand for building a ShapeError.
func Shape(op, what string, want, got int) error {
	return &ShapeError{Op: op, What: what, Want: want, Got: got}
}

// Degenerate is shorthand for building a DegenerateInputError.
func Degenerate(op, format string, args ...any) error {
	return &DegenerateInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
