package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/knitout/pkg/ports"
)

// Store implements ports.ArtifactStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*ports.Artifact
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(map[string]*ports.Artifact),
	}
}

func clone(a *ports.Artifact) *ports.Artifact {
	c := *a
	c.Stats.ByOpcode = maps.Clone(a.Stats.ByOpcode)
	return &c
}

// Save keeps a copy of the artifact.
func (s *Store) Save(ctx context.Context, a *ports.Artifact) error {
	c := clone(a)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[a.ID] = c
	return nil
}

// Load returns a copy so callers cannot mutate what is stored.
func (s *Store) Load(ctx context.Context, id string) (*ports.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.data[id]
	if !ok {
		return nil, ports.ErrArtifactNotFound
	}
	return clone(a), nil
}

// Delete removes the artifact.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
