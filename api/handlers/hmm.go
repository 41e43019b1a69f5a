package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/stats"
	"github.com/aria-lang/bioinfer-go/internal/store"
)

// maxTrainIterations bounds the work a single train request can ask for.
const maxTrainIterations = 1000

func (h *Handlers) loadHMM(ctx context.Context, inline *hmm.Model, name string) (*hmm.Model, error) {
	if inline != nil {
		if err := inline.Validate(); err != nil {
			return nil, err
		}
		return inline, nil
	}
	if name == "" {
		return hmm.DefaultModel(), nil
	}
	rec, err := h.lookup(ctx, store.KindHMM, name)
	if err != nil {
		return nil, err
	}
	return store.DecodeHMM(rec)
}

func (h *Handlers) lookup(ctx context.Context, kind store.Kind, name string) (store.Record, error) {
	if h.Store == nil {
		return store.Record{}, errNoStore
	}
	rec, ok, err := h.Store.GetModel(ctx, kind, name)
	if err != nil {
		return store.Record{}, backendErr(err)
	}
	if !ok {
		return store.Record{}, &notFoundError{kind: kind, name: name}
	}
	return rec, nil
}

// DecodeRequest asks for the Viterbi path of a nucleotide sequence. The
// model is given inline, by stored name, or defaults to the two-state model.
type DecodeRequest struct {
	Sequence  string     `json:"sequence"`
	Model     *hmm.Model `json:"model,omitempty"`
	ModelName string     `json:"model_name,omitempty"`
}

// DecodeResponse carries the decoded segments. LogProb is null when every
// path is impossible under the model.
type DecodeResponse struct {
	LogProb    *float64           `json:"log_prob"`
	Impossible bool               `json:"impossible"`
	Segments   []hmm.Segment      `json:"segments"`
	Stats      []stats.StateStats `json:"stats"`
}

// Decode handles Viterbi decoding requests.
func (h *Handlers) Decode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	m, err := h.loadHMM(r.Context(), req.Model, req.ModelName)
	if err != nil {
		writeError(w, err)
		return
	}
	symbols, err := hmm.ParseSymbols(req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	dec, err := hmm.Decode(symbols, m)
	if err != nil {
		writeError(w, err)
		return
	}

	segments := dec.Runs()
	lp := finite(dec.LogProb)
	writeJSON(w, http.StatusOK, DecodeResponse{
		LogProb:    lp,
		Impossible: lp == nil,
		Segments:   segments,
		Stats:      stats.FromSegments(segments),
	})
}

// TrainRequest asks for Viterbi training on one sequence. When SaveAs is
// set the trained model is stored under that name.
type TrainRequest struct {
	Sequence   string     `json:"sequence"`
	Model      *hmm.Model `json:"model,omitempty"`
	ModelName  string     `json:"model_name,omitempty"`
	Iterations int        `json:"iterations"`
	SaveAs     string     `json:"save_as,omitempty"`
}

// IterationSummary is an hmm.IterationReport with a JSON-safe log
// probability.
type IterationSummary struct {
	Iteration             int               `json:"iteration"`
	LogProb               *float64          `json:"log_prob"`
	SegmentCounts         map[hmm.State]int `json:"segment_counts"`
	DegenerateTransitions []hmm.State       `json:"degenerate_transitions,omitempty"`
	DegenerateEmissions   []hmm.State       `json:"degenerate_emissions,omitempty"`
}

// TrainResponse carries the trained model and per-iteration summaries.
type TrainResponse struct {
	Model      *hmm.Model         `json:"model"`
	Iterations []IterationSummary `json:"iterations"`
	SavedID    string             `json:"saved_id,omitempty"`
}

// Train handles Viterbi training requests.
func (h *Handlers) Train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Iterations < 0 || req.Iterations > maxTrainIterations {
		writeError(w, fmt.Errorf("iterations must be between 0 and %d", maxTrainIterations))
		return
	}

	m, err := h.loadHMM(r.Context(), req.Model, req.ModelName)
	if err != nil {
		writeError(w, err)
		return
	}
	symbols, err := hmm.ParseSymbols(req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}

	trained, reports, err := hmm.Train(r.Context(), symbols, m, hmm.TrainOptions{Iterations: req.Iterations})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := TrainResponse{Model: trained, Iterations: make([]IterationSummary, len(reports))}
	for i, rep := range reports {
		resp.Iterations[i] = IterationSummary{
			Iteration:             rep.Iteration,
			LogProb:               finite(rep.LogProb),
			SegmentCounts:         rep.SegmentCounts,
			DegenerateTransitions: rep.DegenerateTransitions,
			DegenerateEmissions:   rep.DegenerateEmissions,
		}
	}

	if req.SaveAs != "" {
		saved, err := h.save(r.Context(), func() (store.Record, error) { return store.EncodeHMM(req.SaveAs, trained) })
		if err != nil {
			writeError(w, err)
			return
		}
		resp.SavedID = saved.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) save(ctx context.Context, encode func() (store.Record, error)) (store.Record, error) {
	if h.Store == nil {
		return store.Record{}, errNoStore
	}
	rec, err := encode()
	if err != nil {
		return store.Record{}, err
	}
	saved, err := h.Store.SaveModel(ctx, rec)
	return saved, backendErr(err)
}
