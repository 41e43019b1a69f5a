// Package handlers provides HTTP handlers for the bioinfer API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/aria-lang/bioinfer-go/internal/bioerr"
	"github.com/aria-lang/bioinfer-go/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers serves the endpoints that may read or write stored models.
// Store may be nil, in which case requests naming a stored model fail.
type Handlers struct {
	Store store.Store
}

// New returns handlers backed by st.
func New(st store.Store) *Handlers {
	return &Handlers{Store: st}
}

type notFoundError struct {
	kind store.Kind
	name string
}

func (e *notFoundError) Error() string {
	return "no " + string(e.kind) + " model named " + e.name
}

var errNoStore = errors.New("model store is not configured")

// storeError is a failure of the model store backend.
type storeError struct {
	err error
}

func (e *storeError) Error() string { return "model store: " + e.err.Error() }

func (e *storeError) Unwrap() error { return e.err }

// backendErr wraps err as a store failure unless it reports a malformed
// record or a cancelled request.
func backendErr(err error) error {
	if err == nil || errors.Is(err, store.ErrInvalidRecord) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &storeError{err: err}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		invariant *bioerr.InvariantError
		notFound  *notFoundError
		backend   *storeError
	)
	switch {
	case errors.As(err, &invariant), errors.As(err, &backend):
		return http.StatusInternalServerError
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, errNoStore):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// finite returns nil for infinite or NaN values, which JSON cannot carry.
func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
