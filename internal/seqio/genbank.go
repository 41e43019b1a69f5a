package seqio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/orf"
)

var cdsRange = regexp.MustCompile(`<?(\d+)\.\.>?(\d+)`)

// ParseGenBankCDS extracts the forward-strand coding sequences of a GenBank
// feature table. Only lines starting with CDS are read, complement features
// are skipped, and the first a..b range of each line becomes the 0-based
// annotation (a-1, b-1).
func ParseGenBankCDS(r io.Reader) ([]orf.Annotation, error) {
	var annotations []orf.Annotation
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "CDS") || strings.Contains(line, "complement") {
			continue
		}

		m := cdsRange.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: CDS feature without a location range", lineNum)
		}
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		end, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		annotations = append(annotations, orf.Annotation{Start: start - 1, End: end - 1})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading genbank: %w", err)
	}
	return annotations, nil
}

// ReadGenBankCDS reads the CDS annotations of a GenBank file.
func ReadGenBankCDS(filename string) ([]orf.Annotation, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	return ParseGenBankCDS(file)
}
