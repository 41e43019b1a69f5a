// Package seqio reads and writes the file formats used by the command-line
// tools: FASTA sequences, GenBank CDS annotations and SAM read mappings.
package seqio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

// FASTAOptions controls how FASTA records are turned into sequences.
type FASTAOptions struct {
	// Type is the alphabet the bases are validated against.
	Type sequence.SequenceType
	// Clean upper-cases the bases and replaces every non-ACGT symbol with T
	// before validation.
	Clean bool
}

// ParseFASTA parses FASTA records from r. Blank lines are ignored and the
// header is split into an ID and an optional description.
func ParseFASTA(r io.Reader, opts FASTAOptions) ([]*sequence.Sequence, error) {
	sequences := make([]*sequence.Sequence, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var currentID, currentDesc string
	var currentBases strings.Builder

	flushSequence := func() error {
		if currentBases.Len() == 0 {
			return nil
		}
		bases := currentBases.String()
		if opts.Clean {
			bases = sequence.CleanNucleotides(bases)
		}
		seq, err := sequence.WithMetadata(bases, currentID, currentDesc, opts.Type)
		if err != nil {
			if currentID != "" {
				return fmt.Errorf("record %q: %w", currentID, err)
			}
			return err
		}
		sequences = append(sequences, seq)
		currentBases.Reset()
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			if err := flushSequence(); err != nil {
				return nil, err
			}
			parts := strings.SplitN(line[1:], " ", 2)
			currentID = parts[0]
			currentDesc = ""
			if len(parts) > 1 {
				currentDesc = parts[1]
			}
			continue
		}
		currentBases.WriteString(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fasta: %w", err)
	}
	if err := flushSequence(); err != nil {
		return nil, err
	}
	return sequences, nil
}

// ReadFASTA reads sequences from a FASTA file.
func ReadFASTA(filename string, opts FASTAOptions) ([]*sequence.Sequence, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return ParseFASTA(file, opts)
}

// WriteFASTA writes sequences to w in FASTA format.
func WriteFASTA(w io.Writer, sequences []*sequence.Sequence) error {
	for _, seq := range sequences {
		if _, err := io.WriteString(w, seq.ToFASTA()); err != nil {
			return fmt.Errorf("writing sequence: %w", err)
		}
	}
	return nil
}

// Bases returns the bases of every sequence.
func Bases(sequences []*sequence.Sequence) []string {
	out := make([]string, len(sequences))
	for i, s := range sequences {
		out[i] = s.Bases
	}
	return out
}
