// Package bioinfer provides a high-level API for sequence inference.
//
// This package exposes the core engines through a small set of functions
// that take and return plain strings where possible.
//
// Example usage:
//
//	aln, err := bioinfer.Align("HEAGAWGHEE", "PAWHEAE")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(aln.Format("query", "target"))
//
//	dec, err := bioinfer.Decode("ACGTTTAGCA", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, seg := range dec.Runs() {
//	    fmt.Println(seg)
//	}
package bioinfer

import (
	"context"
	"fmt"

	"github.com/aria-lang/bioinfer-go/internal/alignment"
	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/motif"
	"github.com/aria-lang/bioinfer-go/internal/orf"
	"github.com/aria-lang/bioinfer-go/internal/seqio"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

// Re-export types for convenience
type (
	Sequence        = sequence.Sequence
	Alignment       = alignment.Alignment
	AlignedPair     = alignment.Pair
	ScoreModel      = alignment.ScoreModel
	HMM             = hmm.Model
	Decoding        = hmm.Decoding
	Segment         = hmm.Segment
	IterationReport = hmm.IterationReport
	WeightMatrix    = motif.WeightMatrix
	ScanStats       = motif.ScanStats
	ORF             = orf.ORF
	LengthTally     = orf.LengthTally
)

// DefaultGapCost is the linear gap penalty used by Align and AlignGlobal.
const DefaultGapCost = alignment.DefaultGapCost

// NewSequence creates a new DNA sequence.
func NewSequence(bases string) (*Sequence, error) {
	return sequence.New(bases)
}

// NewProtein creates a new protein sequence.
func NewProtein(bases string) (*Sequence, error) {
	return sequence.NewProtein(bases)
}

// Align performs Smith-Waterman local alignment with BLOSUM62.
func Align(a, b string) (*Alignment, error) {
	return alignment.Local(a, b, alignment.BLOSUM62(), DefaultGapCost)
}

// AlignGlobal performs Needleman-Wunsch global alignment with BLOSUM62.
func AlignGlobal(a, b string) (*Alignment, error) {
	return alignment.Global(a, b, alignment.BLOSUM62(), DefaultGapCost)
}

// AlignWith aligns a and b with the given model and gap cost. A nil model
// selects BLOSUM62.
func AlignWith(a, b string, model *ScoreModel, gap int, global bool) (*Alignment, error) {
	if global {
		return alignment.Global(a, b, model, gap)
	}
	return alignment.Local(a, b, model, gap)
}

// CompareAll locally aligns every pair of seqs. A nil model selects
// BLOSUM62.
func CompareAll(seqs []string, model *ScoreModel, gap int) ([]AlignedPair, error) {
	return alignment.AllPairs(seqs, model, gap)
}

// BestHit returns the index of the target with the highest local alignment
// score against query, and that alignment.
func BestHit(query string, targets []string, model *ScoreModel, gap int) (int, *Alignment, error) {
	best, err := alignment.FindBest(query, targets, model, gap)
	if err != nil {
		return -1, nil, err
	}
	return best.Index, best.Alignment, nil
}

// DefaultHMM returns the two-state model used when none is given.
func DefaultHMM() *HMM {
	return hmm.DefaultModel()
}

// Decode runs Viterbi decoding of a nucleotide string. A nil model selects
// DefaultHMM.
func Decode(seq string, m *HMM) (*Decoding, error) {
	if m == nil {
		m = hmm.DefaultModel()
	}
	symbols, err := hmm.ParseSymbols(seq)
	if err != nil {
		return nil, err
	}
	return hmm.Decode(symbols, m)
}

// Train runs the given number of Viterbi training iterations on seq. A nil
// model starts from DefaultHMM.
func Train(ctx context.Context, seq string, m *HMM, iterations int) (*HMM, []IterationReport, error) {
	if m == nil {
		m = hmm.DefaultModel()
	}
	symbols, err := hmm.ParseSymbols(seq)
	if err != nil {
		return nil, nil, err
	}
	return hmm.Train(ctx, symbols, m, hmm.TrainOptions{Iterations: iterations})
}

// FindORFs returns the ORFs of seq, optionally including the reverse strand.
func FindORFs(seq string, bothStrands bool) []ORF {
	if bothStrands {
		return orf.FindBothStrands(seq)
	}
	return orf.Find(seq)
}

// Scan counts motif hits upstream of each sequence's poly-A tail.
func Scan(ctx context.Context, model, background *WeightMatrix, seqs []string, workers int) (*ScanStats, error) {
	scanner, err := motif.NewScanner(model, background)
	if err != nil {
		return nil, err
	}
	return motif.ScanAll(ctx, scanner, seqs, workers)
}

// ReadFASTA reads DNA sequences from a FASTA file.
func ReadFASTA(filename string) ([]*Sequence, error) {
	return seqio.ReadFASTA(filename, seqio.FASTAOptions{Type: sequence.DNA})
}

// Version returns the bioinfer version.
func Version() string {
	return "0.3.0"
}

// Info returns information about bioinfer.
func Info() string {
	return fmt.Sprintf(`bioinfer v%s - Sequence Inference Toolkit

Features:
  - Smith-Waterman local and Needleman-Wunsch global alignment
  - BLOSUM62 and custom substitution matrices
  - Two-state HMM Viterbi decoding and Viterbi training
  - MEME-style motif refinement with weight matrices
  - Motif scanning upstream of poly-A tails
  - ORF detection and GenBank CDS comparison
  - FASTA, GenBank and SAM input
`, Version())
}
