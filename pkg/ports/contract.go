package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/knitout/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArtifactStoreContract runs a suite of tests to verify that an ArtifactStore
// implementation adheres to the defined interface contract.
func RunArtifactStoreContract(t *testing.T, store ArtifactStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	artifact := func(id string) *Artifact {
		return &Artifact{
			ID:      id,
			Name:    "stockinette",
			Source:  "swatch:stockinette",
			Digest:  "abc123",
			Knitout: ";!knitout-2\ninhook 3\nknit + f0 3\n",
			Stats: generator.Stats{
				Instructions: 2,
				Passes:       1,
				ByOpcode:     map[string]int{"inhook": 1, "knit": 1},
			},
			CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		want := artifact(id)
		require.NoError(t, store.Save(ctx, want), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want.Knitout, loaded.Knitout)
		assert.Equal(t, want.Source, loaded.Source)
		assert.Equal(t, want.Stats, loaded.Stats)
		assert.True(t, want.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Save replaces", func(t *testing.T) {
		a := artifact(id)
		a.Name = "renamed"
		require.NoError(t, store.Save(ctx, a))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, artifact(id)))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrArtifactNotFound, "Load after Delete should return ErrArtifactNotFound")
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		require.NoError(t, store.Save(ctx, artifact(id1)))
		require.NoError(t, store.Save(ctx, artifact(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunLockerContract verifies mutual exclusion and release of a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("150405.000")

	t.Run("Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(short, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Independent keys", func(t *testing.T) {
		var wg sync.WaitGroup
		for _, k := range []string{key + "-a", key + "-b"} {
			wg.Add(1)
			go func(k string) {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, k, time.Second)
				if assert.NoError(t, err) {
					assert.NoError(t, unlock(ctx))
				}
			}(k)
		}
		wg.Wait()
	})
}
