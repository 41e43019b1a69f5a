package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aria-lang/bioinfer-go/internal/motif"
	"github.com/aria-lang/bioinfer-go/internal/store"
	"github.com/aria-lang/bioinfer-go/pkg/bioinfer"
)

const maxRefineIterations = 500

func (h *Handlers) loadWeightMatrix(ctx context.Context, inline *motif.WeightMatrix, name, what string) (*motif.WeightMatrix, error) {
	if inline != nil {
		return inline, nil
	}
	if name == "" {
		return nil, fmt.Errorf("%s: give either an inline matrix or a stored name", what)
	}
	rec, err := h.lookup(ctx, store.KindWeightMatrix, name)
	if err != nil {
		return nil, err
	}
	return store.DecodeWeightMatrix(rec)
}

// MotifScoreRequest asks for the normalized window scores of a sequence.
type MotifScoreRequest struct {
	Sequence  string              `json:"sequence"`
	Model     *motif.WeightMatrix `json:"model,omitempty"`
	ModelName string              `json:"model_name,omitempty"`
}

// MotifScoreResponse holds one score per window start.
type MotifScoreResponse struct {
	Consensus string    `json:"consensus"`
	Scores    []float64 `json:"scores"`
}

// ScoreWindows handles window-scoring requests.
func (h *Handlers) ScoreWindows(w http.ResponseWriter, r *http.Request) {
	var req MotifScoreRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, err := h.loadWeightMatrix(r.Context(), req.Model, req.ModelName, "model")
	if err != nil {
		writeError(w, err)
		return
	}
	ind, err := motif.Matrixify(req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	scores, err := motif.ScoreWindows(model, ind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MotifScoreResponse{Consensus: model.Consensus(), Scores: scores})
}

// ScanRequest asks for motif hits upstream of the poly-A tail of every
// sequence.
type ScanRequest struct {
	Sequences      []string            `json:"sequences"`
	Model          *motif.WeightMatrix `json:"model,omitempty"`
	ModelName      string              `json:"model_name,omitempty"`
	Background     *motif.WeightMatrix `json:"background,omitempty"`
	BackgroundName string              `json:"background_name,omitempty"`
	Workers        int                 `json:"workers,omitempty"`
}

// ScanResponse adds the mean hit distance to the accumulated statistics.
type ScanResponse struct {
	*motif.ScanStats
	MeanDistance float64 `json:"mean_distance"`
}

// Scan handles motif scanning requests.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, err := h.loadWeightMatrix(r.Context(), req.Model, req.ModelName, "model")
	if err != nil {
		writeError(w, err)
		return
	}
	background, err := h.loadWeightMatrix(r.Context(), req.Background, req.BackgroundName, "background")
	if err != nil {
		writeError(w, err)
		return
	}

	st, err := bioinfer.Scan(r.Context(), model, background, req.Sequences, req.Workers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScanResponse{ScanStats: st, MeanDistance: st.MeanDistance()})
}

// EntropyRequest asks for the relative entropy of a model against a
// background.
type EntropyRequest struct {
	Model          *motif.WeightMatrix `json:"model,omitempty"`
	ModelName      string              `json:"model_name,omitempty"`
	Background     *motif.WeightMatrix `json:"background,omitempty"`
	BackgroundName string              `json:"background_name,omitempty"`
}

// EntropyResponse holds the relative entropy in bits.
type EntropyResponse struct {
	Bits float64 `json:"bits"`
}

// Entropy handles relative entropy requests.
func (h *Handlers) Entropy(w http.ResponseWriter, r *http.Request) {
	var req EntropyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	model, err := h.loadWeightMatrix(r.Context(), req.Model, req.ModelName, "model")
	if err != nil {
		writeError(w, err)
		return
	}
	background, err := h.loadWeightMatrix(r.Context(), req.Background, req.BackgroundName, "background")
	if err != nil {
		writeError(w, err)
		return
	}

	bits, err := motif.RelativeEntropy(model, background)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntropyResponse{Bits: bits})
}

// BackgroundRequest asks for a background model built from sequences.
type BackgroundRequest struct {
	Sequences []string `json:"sequences"`
	Width     int      `json:"width,omitempty"`
	SaveAs    string   `json:"save_as,omitempty"`
}

// MatrixResponse carries a weight matrix and, when stored, its record ID.
type MatrixResponse struct {
	Model     *motif.WeightMatrix `json:"model"`
	Consensus string              `json:"consensus"`
	SavedID   string              `json:"saved_id,omitempty"`
}

func (h *Handlers) respondMatrix(w http.ResponseWriter, r *http.Request, m *motif.WeightMatrix, saveAs string) {
	resp := MatrixResponse{Model: m, Consensus: m.Consensus()}
	if saveAs != "" {
		saved, err := h.save(r.Context(), func() (store.Record, error) { return store.EncodeWeightMatrix(saveAs, m) })
		if err != nil {
			writeError(w, err)
			return
		}
		resp.SavedID = saved.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// Background handles background model requests.
func (h *Handlers) Background(w http.ResponseWriter, r *http.Request) {
	var req BackgroundRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	width := req.Width
	if width == 0 {
		width = motif.DefaultWidth
	}

	bg, err := motif.Background(req.Sequences, width, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondMatrix(w, r, bg, req.SaveAs)
}

// RefineRequest asks for MEME-style refinement of a starting model. With
// Seed and no model, refinement starts from the most frequent word.
type RefineRequest struct {
	Sequences   []string            `json:"sequences"`
	Model       *motif.WeightMatrix `json:"model,omitempty"`
	ModelName   string              `json:"model_name,omitempty"`
	Seed        bool                `json:"seed,omitempty"`
	Width       int                 `json:"width,omitempty"`
	Iterations  int                 `json:"iterations"`
	Pseudocount *float64            `json:"pseudocount,omitempty"`
	SaveAs      string              `json:"save_as,omitempty"`
}

// Refine handles motif refinement requests.
func (h *Handlers) Refine(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Iterations < 0 || req.Iterations > maxRefineIterations {
		writeError(w, fmt.Errorf("iterations must be between 0 and %d", maxRefineIterations))
		return
	}

	var (
		start *motif.WeightMatrix
		err   error
	)
	if req.Seed && req.Model == nil && req.ModelName == "" {
		width := req.Width
		if width == 0 {
			width = motif.DefaultWidth
		}
		start, err = motif.Seed(req.Sequences, width, motif.DefaultSeedWeight)
	} else {
		start, err = h.loadWeightMatrix(r.Context(), req.Model, req.ModelName, "model")
	}
	if err != nil {
		writeError(w, err)
		return
	}
	opts := motif.RefineOptions{Pseudocount: motif.DefaultPseudocount}
	if req.Pseudocount != nil {
		opts.Pseudocount = *req.Pseudocount
	}

	refined, err := motif.Refine(r.Context(), start, req.Sequences, req.Iterations, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondMatrix(w, r, refined, req.SaveAs)
}
