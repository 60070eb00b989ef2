package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/knitout/pkg/ports"
)

// mapStore is the smallest ArtifactStore: it checks the contract itself.
type mapStore struct {
	mu   sync.Mutex
	data map[string]ports.Artifact
}

func (m *mapStore) Save(_ context.Context, a *ports.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[a.ID] = *a
	return nil
}

func (m *mapStore) Load(_ context.Context, id string) (*ports.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data[id]
	if !ok {
		return nil, ports.ErrArtifactNotFound
	}
	return &a, nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *mapStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestArtifactStore_Contract(t *testing.T) {
	ports.RunArtifactStoreContract(t, &mapStore{data: make(map[string]ports.Artifact)})
}
