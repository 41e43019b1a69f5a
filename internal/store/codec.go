package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aria-lang/bioinfer-go/internal/hmm"
	"github.com/aria-lang/bioinfer-go/internal/motif"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var (
	ErrVersionMismatch = errors.New("record version mismatch")
	ErrKindMismatch    = errors.New("record kind mismatch")
	// ErrInvalidRecord marks a malformed record, as opposed to a failure of
	// the backend.
	ErrInvalidRecord = errors.New("invalid model record")
)

// EncodeHMM wraps m in a record named name.
func EncodeHMM(name string, m *hmm.Model) (Record, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return Record{}, err
	}
	return newRecord(KindHMM, name, payload), nil
}

// DecodeHMM returns the validated model held in rec.
func DecodeHMM(rec Record) (*hmm.Model, error) {
	if err := checkRecord(rec, KindHMM); err != nil {
		return nil, err
	}
	var m hmm.Model
	if err := json.Unmarshal(rec.Payload, &m); err != nil {
		return nil, fmt.Errorf("decode hmm %s: %w", rec.Name, err)
	}
	return &m, nil
}

// EncodeWeightMatrix wraps w in a record named name.
func EncodeWeightMatrix(name string, w *motif.WeightMatrix) (Record, error) {
	payload, err := json.Marshal(w)
	if err != nil {
		return Record{}, err
	}
	return newRecord(KindWeightMatrix, name, payload), nil
}

// DecodeWeightMatrix returns the normalized weight matrix held in rec.
func DecodeWeightMatrix(rec Record) (*motif.WeightMatrix, error) {
	if err := checkRecord(rec, KindWeightMatrix); err != nil {
		return nil, err
	}
	var w motif.WeightMatrix
	if err := json.Unmarshal(rec.Payload, &w); err != nil {
		return nil, fmt.Errorf("decode weight matrix %s: %w", rec.Name, err)
	}
	return &w, nil
}

func newRecord(kind Kind, name string, payload []byte) Record {
	return Record{
		Kind:          kind,
		Name:          name,
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Payload:       payload,
	}
}

func checkRecord(rec Record, kind Kind) error {
	if rec.Kind != kind {
		return fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, kind, rec.Kind)
	}
	if rec.SchemaVersion != CurrentSchemaVersion || rec.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

func validate(rec Record) error {
	if !rec.Kind.Valid() {
		return fmt.Errorf("%w: unknown model kind %q", ErrInvalidRecord, rec.Kind)
	}
	if rec.Name == "" {
		return fmt.Errorf("%w: model name is required", ErrInvalidRecord)
	}
	if len(rec.Payload) == 0 {
		return fmt.Errorf("%w: model payload is required", ErrInvalidRecord)
	}
	return nil
}
