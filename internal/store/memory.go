package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type modelKey struct {
	kind Kind
	name string
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	models      map[modelKey]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.models = make(map[modelKey]Record)
	return nil
}

func (s *MemoryStore) SaveModel(_ context.Context, rec Record) (Record, error) {
	if err := validate(rec); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return Record{}, errors.New("store is not initialized")
	}
	key := modelKey{kind: rec.Kind, name: rec.Name}
	if existing, ok := s.models[key]; ok {
		rec.ID = existing.ID
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = time.Now().UTC()
	rec.Payload = append([]byte(nil), rec.Payload...)
	s.models[key] = rec
	return rec, nil
}

func (s *MemoryStore) GetModel(_ context.Context, kind Kind, name string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.models[modelKey{kind: kind, name: name}]
	return rec, ok, nil
}

func (s *MemoryStore) ListModels(_ context.Context, kind Kind) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for key, rec := range s.models {
		if key.kind == kind {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) DeleteModel(_ context.Context, kind Kind, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.models, modelKey{kind: kind, name: name})
	return nil
}
