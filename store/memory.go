package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"questLog/api"
)

// memoryStore keeps every record as raw JSON in per-collection maps. It
// backs the service tests and local development; records round-trip through
// encoding/json, so the json tags on the entity types are what the filters
// see.
type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ Store = (*memoryStore)(nil)

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

type memoryDocument struct {
	id  string
	raw []byte
}

func (d memoryDocument) ID() string {
	return d.id
}

func (d memoryDocument) DataTo(dest any) error {
	return json.Unmarshal(d.raw, dest)
}

func (s *memoryStore) NewID(string) string {
	return uuid.NewString()
}

func (s *memoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, api.ErrNotFound)
	}
	return memoryDocument{id: id, raw: raw}, nil
}

func (s *memoryStore) Set(_ context.Context, collection, id string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = raw
	return nil
}

func (s *memoryStore) Merge(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := map[string]any{}
	if raw, ok := s.collections[collection][id]; ok {
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = raw
	return nil
}

func (s *memoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *memoryStore) Query(_ context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0)
	for id, raw := range s.collections[collection] {
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
		}
		if matchesAll(fields, filters) {
			docs = append(docs, memoryDocument{id: id, raw: raw})
		}
	}
	return docs, nil
}

func matchesAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(fields[f.Path], f) {
			return false
		}
	}
	return true
}

func matches(value any, f Filter) bool {
	switch f.Op {
	case OpEqual:
		return equalValue(value, f.Value)
	case OpArrayContains:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if equalValue(item, f.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// equalValue compares a decoded JSON value against a filter value. Numbers
// decode as float64, so numeric filter values are normalized before the
// comparison.
func equalValue(value, want any) bool {
	switch w := want.(type) {
	case int:
		f, ok := value.(float64)
		return ok && f == float64(w)
	case int64:
		f, ok := value.(float64)
		return ok && f == float64(w)
	case float64:
		f, ok := value.(float64)
		return ok && f == w
	default:
		return value == want
	}
}
