package seqio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/sequence"
)

// SAM flag bits.
const (
	FlagUnmapped = 0x4
	FlagReverse  = 0x10
)

// SAMRecord is one alignment line of a SAM file: the eleven mandatory
// fields plus the optional AS, NM and MD tags.
type SAMRecord struct {
	QName string `json:"qname"`
	Flag  int    `json:"flag"`
	RName string `json:"rname"`
	Pos   int    `json:"pos"`
	MapQ  int    `json:"mapq"`
	CIGAR string `json:"cigar"`
	RNext string `json:"rnext"`
	PNext int    `json:"pnext"`
	TLen  int    `json:"tlen"`
	Seq   string `json:"seq"`
	Qual  string `json:"qual"`

	AlignScore *int   `json:"align_score,omitempty"`
	Mismatches *int   `json:"mismatches,omitempty"`
	MD         string `json:"md,omitempty"`
}

// Unmapped reports whether the read did not map to the reference.
func (r *SAMRecord) Unmapped() bool {
	return r.Flag&FlagUnmapped != 0
}

// Reverse reports whether the read mapped to the reverse strand.
func (r *SAMRecord) Reverse() bool {
	return r.Flag&FlagReverse != 0
}

// PolyALen returns the length of the read's poly-A tail. Reverse-strand
// reads are stored reverse complemented, so their tail is a leading poly-T
// run.
func (r *SAMRecord) PolyALen() int {
	if r.Reverse() {
		return sequence.PolyTHead(r.Seq)
	}
	return len(r.Seq) - sequence.PolyATail(r.Seq)
}

// ParseSAMLine parses one tab-separated alignment line.
func ParseSAMLine(line string) (*SAMRecord, error) {
	tokens := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(tokens) < 11 {
		return nil, fmt.Errorf("sam: %d fields, want at least 11", len(tokens))
	}

	rec := &SAMRecord{
		QName: tokens[0],
		RName: tokens[2],
		CIGAR: tokens[5],
		RNext: tokens[6],
		Seq:   tokens[9],
		Qual:  tokens[10],
	}
	ints := []struct {
		name string
		dst  *int
		src  string
	}{
		{"FLAG", &rec.Flag, tokens[1]},
		{"POS", &rec.Pos, tokens[3]},
		{"MAPQ", &rec.MapQ, tokens[4]},
		{"PNEXT", &rec.PNext, tokens[7]},
		{"TLEN", &rec.TLen, tokens[8]},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(f.src)
		if err != nil {
			return nil, fmt.Errorf("sam: %s: %w", f.name, err)
		}
		*f.dst = v
	}

	for _, tok := range tokens[11:] {
		switch {
		case strings.HasPrefix(tok, "AS:i:"):
			v, err := strconv.Atoi(tok[5:])
			if err != nil {
				return nil, fmt.Errorf("sam: AS tag: %w", err)
			}
			rec.AlignScore = &v
		case strings.HasPrefix(tok, "NM:i:"):
			v, err := strconv.Atoi(tok[5:])
			if err != nil {
				return nil, fmt.Errorf("sam: NM tag: %w", err)
			}
			rec.Mismatches = &v
		case strings.HasPrefix(tok, "MD:Z:"):
			rec.MD = tok[5:]
		}
	}
	return rec, nil
}

// SAMFilter selects reads. Zero-valued fields disable their test.
type SAMFilter struct {
	// MatchesOnly drops unmapped reads.
	MatchesOnly bool `json:"matches_only"`
	// MinMismatch drops reads with fewer mismatches than this.
	MinMismatch int `json:"min_mismatch"`
	// MaxAlignScore drops reads scoring above this. Scores are negative.
	MaxAlignScore int `json:"max_align_score"`
	// MinPolyALen drops reads whose poly-A tail is shorter than this.
	MinPolyALen int `json:"min_poly_a_len"`
	// MinMeanQuality drops reads whose mean base quality is lower.
	MinMeanQuality float64 `json:"min_mean_quality"`
}

// Keep reports whether rec passes every enabled test. Reads without an NM
// or AS tag, or without qualities, are not judged on them.
func (f SAMFilter) Keep(rec *SAMRecord) bool {
	if f.MatchesOnly && rec.Unmapped() {
		return false
	}
	if f.MinMismatch != 0 && rec.Mismatches != nil && *rec.Mismatches < f.MinMismatch {
		return false
	}
	if f.MaxAlignScore != 0 && rec.AlignScore != nil && *rec.AlignScore > f.MaxAlignScore {
		return false
	}
	if f.MinPolyALen != 0 && rec.PolyALen() < f.MinPolyALen {
		return false
	}
	if f.MinMeanQuality != 0 {
		if q, ok := rec.MeanQuality(); ok && q < f.MinMeanQuality {
			return false
		}
	}
	return true
}

// FilterStats counts the reads seen and kept by FilterSAM.
type FilterStats struct {
	Read int `json:"read"`
	Kept int `json:"kept"`
}

// FilterSAM streams the alignment lines of r through f and writes the kept
// records to w as a JSON array. Header lines are skipped. A positive limit
// stops after that many alignment lines.
func FilterSAM(r io.Reader, w io.Writer, f SAMFilter, limit int) (FilterStats, error) {
	var st FilterStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if _, err := io.WriteString(w, "[\n"); err != nil {
		return st, err
	}
	enc := json.NewEncoder(w)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		if limit > 0 && st.Read >= limit {
			break
		}
		st.Read++

		rec, err := ParseSAMLine(line)
		if err != nil {
			return st, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if !f.Keep(rec) {
			continue
		}
		if st.Kept > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return st, err
			}
		}
		if err := enc.Encode(rec); err != nil {
			return st, err
		}
		st.Kept++
	}
	if err := scanner.Err(); err != nil {
		return st, fmt.Errorf("reading sam: %w", err)
	}

	_, err := io.WriteString(w, "]\n")
	return st, err
}
