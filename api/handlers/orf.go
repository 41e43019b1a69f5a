package handlers

import (
	"net/http"

	"github.com/aria-lang/bioinfer-go/internal/orf"
	"github.com/aria-lang/bioinfer-go/internal/sequence"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

// ORFRequest asks for the ORFs of a sequence. Annotations, when given, are
// 0-based CDS ranges compared against the ORF stops.
type ORFRequest struct {
	Sequence    string           `json:"sequence"`
	BothStrands bool             `json:"both_strands,omitempty"`
	Clean       bool             `json:"clean,omitempty"`
	Translate   bool             `json:"translate,omitempty"`
	Table       int              `json:"table,omitempty"`
	Annotations []orf.Annotation `json:"annotations,omitempty"`
}

// ORFResult is one ORF with its optional translation.
type ORFResult struct {
	orf.ORF
	Length  int    `json:"length"`
	Protein string `json:"protein,omitempty"`
}

// ORFResponse lists the ORFs and, with annotations, the per-length tallies.
type ORFResponse struct {
	ORFs    []ORFResult       `json:"orfs"`
	Tallies []orf.LengthTally `json:"tallies,omitempty"`
}

// FindORFsHandler handles ORF detection requests.
func FindORFsHandler(w http.ResponseWriter, r *http.Request) {
	var req ORFRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	bases := req.Sequence
	if req.Clean {
		bases = sequence.CleanNucleotides(bases)
	}
	seq, err := bioinfer.NewSequence(bases)
	if err != nil {
		writeError(w, err)
		return
	}
	table := req.Table
	if table == 0 {
		table = orf.StandardTable
	}

	orfs := bioinfer.FindORFs(seq.Bases, req.BothStrands)
	resp := ORFResponse{ORFs: make([]ORFResult, len(orfs))}
	for i, o := range orfs {
		resp.ORFs[i] = ORFResult{ORF: o, Length: o.Len()}
		if req.Translate {
			protein, err := orf.Translate(seq.Bases, o, table)
			if err != nil {
				writeError(w, err)
				return
			}
			resp.ORFs[i].Protein = protein
		}
	}
	if len(req.Annotations) > 0 {
		resp.Tallies = orf.Compare(seq.Bases, orfs, req.Annotations)
	}
	writeJSON(w, http.StatusOK, resp)
}
