package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/motif"
	"github.com/aria-lang/bioinfer-go/internal/store"
)

// ModelSummary describes a stored model without its payload.
type ModelSummary struct {
	ID        string     `json:"id"`
	Kind      store.Kind `json:"kind"`
	Name      string     `json:"name"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func summarize(rec store.Record) ModelSummary {
	return ModelSummary{ID: rec.ID, Kind: rec.Kind, Name: rec.Name, UpdatedAt: rec.UpdatedAt}
}

func kindParam(r *http.Request) (store.Kind, error) {
	kind := store.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown model kind %q", kind)
	}
	return kind, nil
}

// ListModels lists the stored models of one kind.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, errNoStore)
		return
	}
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	recs, err := h.Store.ListModels(r.Context(), kind)
	if err != nil {
		writeError(w, backendErr(err))
		return
	}
	out := make([]ModelSummary, len(recs))
	for i, rec := range recs {
		out[i] = summarize(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetModel returns a stored model's payload.
func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.lookup(r.Context(), kind, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(rec.Payload)
}

// PutModel validates the body as a model of the given kind and stores it.
func (h *Handlers) PutModel(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}

	encode := func() (store.Record, error) {
		switch kind {
		case store.KindHMM:
			var m hmm.Model
			if err := json.Unmarshal(body, &m); err != nil {
				return store.Record{}, err
			}
			return store.EncodeHMM(name, &m)
		default:
			var m motif.WeightMatrix
			if err := json.Unmarshal(body, &m); err != nil {
				return store.Record{}, err
			}
			return store.EncodeWeightMatrix(name, &m)
		}
	}

	saved, err := h.save(r.Context(), encode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(saved))
}

// DeleteModel removes a stored model.
func (h *Handlers) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, errNoStore)
		return
	}
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Store.DeleteModel(r.Context(), kind, chi.URLParam(r, "name")); err != nil {
		writeError(w, backendErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
