// Package store persists trained HMMs and motif weight matrices by kind and
// name.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Kind names the type of model held in a record.
type Kind string

const (
	KindHMM          Kind = "hmm"
	KindWeightMatrix Kind = "wmm"
)

// Valid reports whether k is a known model kind.
func (k Kind) Valid() bool {
	return k == KindHMM || k == KindWeightMatrix
}

// Record is one stored model. Saving a record under an existing kind and
// name replaces the payload and keeps the original ID.
type Record struct {
	ID            string          `json:"id"`
	Kind          Kind            `json:"kind"`
	Name          string          `json:"name"`
	SchemaVersion int             `json:"schema_version"`
	CodecVersion  int             `json:"codec_version"`
	Payload       json.RawMessage `json:"payload"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Store defines persistence operations for model records.
type Store interface {
	Init(ctx context.Context) error
	SaveModel(ctx context.Context, rec Record) (Record, error)
	GetModel(ctx context.Context, kind Kind, name string) (Record, bool, error)
	ListModels(ctx context.Context, kind Kind) ([]Record, error)
	DeleteModel(ctx context.Context, kind Kind, name string) error
}
