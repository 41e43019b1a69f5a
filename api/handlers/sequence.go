package handlers

import (
	"net/http"

	"github.com/aria-lang/bioinfer-go/internal/sequence"
	"github.com/aria-lang/bioinfer-go/internal/stats"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// CleanResponse represents the response for nucleotide cleaning.
type CleanResponse struct {
	Sequence string `json:"sequence"`
	Replaced int    `json:"replaced"`
}

// CleanHandler upper-cases a nucleotide string and replaces every non-ACGT
// symbol with T.
func CleanHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	cleaned := sequence.CleanNucleotides(req.Sequence)
	replaced := 0
	for _, c := range req.Sequence {
		switch c {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't', ' ', '\t', '\n', '\r':
		default:
			replaced++
		}
	}
	writeJSON(w, http.StatusOK, CleanResponse{Sequence: cleaned, Replaced: replaced})
}

// ReverseComplementResponse represents the response for reverse complement.
type ReverseComplementResponse struct {
	ReverseComplement string `json:"reverse_complement"`
}

// ReverseComplementHandler handles reverse complement requests.
func ReverseComplementHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	seq, err := bioinfer.NewSequence(req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	rc, err := seq.ReverseComplement()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReverseComplementResponse{ReverseComplement: rc.Bases})
}

// SequenceInfoResponse represents sequence information.
type SequenceInfoResponse struct {
	Length    int     `json:"length"`
	GCContent float64 `json:"gc_content"`
	Ambiguous int     `json:"ambiguous"`
	PolyATail int     `json:"poly_a_tail"`
	PolyTHead int     `json:"poly_t_head"`
}

// SequenceInfoHandler reports length, GC content and poly-A/poly-T extents.
func SequenceInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	seq, err := bioinfer.NewSequence(req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SequenceInfoResponse{
		Length:    seq.Len(),
		GCContent: seq.GCContent(),
		Ambiguous: seq.CountAmbiguous(),
		PolyATail: seq.Len() - sequence.PolyATail(seq.Bases),
		PolyTHead: sequence.PolyTHead(seq.Bases),
	})
}

// SequenceSetRequest represents a request with multiple sequences.
type SequenceSetRequest struct {
	Sequences []string `json:"sequences"`
}

// SequenceSetStatsHandler handles sequence set statistics requests.
func SequenceSetStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceSetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	sequences := make([]*sequence.Sequence, 0, len(req.Sequences))
	for _, s := range req.Sequences {
		seq, err := bioinfer.NewSequence(s)
		if err != nil {
			writeError(w, err)
			return
		}
		sequences = append(sequences, seq)
	}

	st, err := stats.FromSequences(sequences)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
