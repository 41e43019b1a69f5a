package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aria-lang/bioinfer-go/internal/alignment"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

// AlignmentRequest represents an alignment request.
type AlignmentRequest struct {
	Sequence1 string `json:"sequence1"`
	Sequence2 string `json:"sequence2"`
	// Matrix is "blosum62" (the default), "dna", or a substitution table in
	// whitespace-separated text form.
	Matrix string `json:"matrix,omitempty"`
	Gap    *int   `json:"gap,omitempty"`
	Global bool   `json:"global,omitempty"`
}

func (req *AlignmentRequest) scoring() (*alignment.ScoreModel, int, error) {
	gap := alignment.DefaultGapCost
	if req.Gap != nil {
		gap = *req.Gap
	}
	if gap > 0 {
		return nil, 0, fmt.Errorf("gap cost must not be positive, got %d", gap)
	}

	switch strings.ToLower(strings.TrimSpace(req.Matrix)) {
	case "", "blosum62":
		return alignment.BLOSUM62(), gap, nil
	case "dna":
		model, err := alignment.Identity("ACGT", 5, -4)
		return model, gap, err
	default:
		model, err := alignment.ParseScoreModel(strings.NewReader(req.Matrix))
		return model, gap, err
	}
}

// AlignmentResponse represents the response for alignment.
type AlignmentResponse struct {
	AlignedSeq1 string  `json:"aligned_seq1"`
	Middle      string  `json:"middle"`
	AlignedSeq2 string  `json:"aligned_seq2"`
	Score       int     `json:"score"`
	Start1      int     `json:"start1"`
	End1        int     `json:"end1"`
	Start2      int     `json:"start2"`
	End2        int     `json:"end2"`
	Identity    float64 `json:"identity"`
	CIGAR       string  `json:"cigar"`
	Matches     int     `json:"matches"`
	Mismatches  int     `json:"mismatches"`
	Gaps        int     `json:"gaps"`
}

func newAlignmentResponse(a *alignment.Alignment) AlignmentResponse {
	return AlignmentResponse{
		AlignedSeq1: a.A,
		Middle:      a.Middle,
		AlignedSeq2: a.B,
		Score:       a.Score,
		Start1:      a.StartA,
		End1:        a.EndA,
		Start2:      a.StartB,
		End2:        a.EndB,
		Identity:    a.Identity(),
		CIGAR:       a.CIGAR(),
		Matches:     a.MatchCount(),
		Mismatches:  a.MismatchCount(),
		Gaps:        a.TotalGaps(),
	}
}

func align(w http.ResponseWriter, r *http.Request, global bool) {
	var req AlignmentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, gap, err := req.scoring()
	if err != nil {
		writeError(w, err)
		return
	}

	aln, err := bioinfer.AlignWith(req.Sequence1, req.Sequence2, model, gap, global)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAlignmentResponse(aln))
}

// LocalAlignHandler handles Smith-Waterman alignment requests.
func LocalAlignHandler(w http.ResponseWriter, r *http.Request) {
	align(w, r, false)
}

// GlobalAlignHandler handles Needleman-Wunsch alignment requests.
func GlobalAlignHandler(w http.ResponseWriter, r *http.Request) {
	align(w, r, true)
}

// ScoreResponse represents the response for alignment score.
type ScoreResponse struct {
	Score int `json:"score"`
}

// AlignmentScoreHandler returns the best alignment score without a
// traceback.
func AlignmentScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req AlignmentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, gap, err := req.scoring()
	if err != nil {
		writeError(w, err)
		return
	}

	if !req.Global {
		writeJSON(w, http.StatusOK, ScoreResponse{Score: alignment.ScoreOnly(req.Sequence1, req.Sequence2, model, gap)})
		return
	}
	score, err := alignment.GlobalScoreOnly(req.Sequence1, req.Sequence2, model, gap)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{Score: score})
}

// CompareRequest asks for local alignments among a set of sequences. With
// Query set only the best-scoring sequence for Query is returned.
type CompareRequest struct {
	Sequences []string `json:"sequences"`
	Query     string   `json:"query,omitempty"`
	Matrix    string   `json:"matrix,omitempty"`
	Gap       *int     `json:"gap,omitempty"`
}

// PairResponse is the alignment of sequences I and J of a compare request.
type PairResponse struct {
	I int `json:"i"`
	J int `json:"j"`
	AlignmentResponse
}

// HitResponse is the alignment of the query against sequence Index.
type HitResponse struct {
	Index int `json:"index"`
	AlignmentResponse
}

// CompareResponse holds every pair, or only Best when a query was given.
type CompareResponse struct {
	Pairs []PairResponse `json:"pairs,omitempty"`
	Best  *HitResponse   `json:"best,omitempty"`
}

// CompareHandler aligns every pair of the given sequences, or finds the
// sequence that best matches a query.
func CompareHandler(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, gap, err := (&AlignmentRequest{Matrix: req.Matrix, Gap: req.Gap}).scoring()
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Query != "" {
		idx, aln, err := bioinfer.BestHit(req.Query, req.Sequences, model, gap)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CompareResponse{Best: &HitResponse{Index: idx, AlignmentResponse: newAlignmentResponse(aln)}})
		return
	}

	pairs, err := bioinfer.CompareAll(req.Sequences, model, gap)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := CompareResponse{Pairs: make([]PairResponse, len(pairs))}
	for k, p := range pairs {
		resp.Pairs[k] = PairResponse{I: p.I, J: p.J, AlignmentResponse: newAlignmentResponse(p.Alignment)}
	}
	writeJSON(w, http.StatusOK, resp)
}
