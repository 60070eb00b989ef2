package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/knitout/internal/adapters/memory"
	"github.com/aretw0/knitout/internal/service"
	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/machine"
	"github.com/aretw0/knitout/pkg/observability"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/aretw0/knitout/pkg/schema"
	"github.com/aretw0/knitout/pkg/swatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, opts ...service.Option) *service.Compiler {
	t.Helper()
	c, err := service.New(opts...)
	require.NoError(t, err)
	return c
}

func TestCompiler_CompileSwatch(t *testing.T) {
	store := memory.New()
	c := newCompiler(t, service.WithStore(store))
	ctx := context.Background()

	res, err := c.CompileSwatch(ctx, "stockinette", map[string]any{"width": 4, "height": 4})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, "swatch:stockinette", res.Artifact.Source)
	assert.Equal(t, "stockinette", res.Artifact.Name)
	assert.Len(t, res.Artifact.Digest, 64)
	assert.Contains(t, res.Artifact.Knitout, ";!knitout-2")
	assert.Equal(t, 4, res.Artifact.Stats.ByOpcode["tuck"], "one interlock tuck per needle")

	stored, err := c.Artifact(ctx, res.Artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Artifact.Knitout, stored.Knitout)

	ids, err := c.Artifacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Artifact.ID}, ids)
}

func TestCompiler_CacheHit(t *testing.T) {
	c := newCompiler(t)
	ctx := context.Background()
	doc := &pattern.RowDocument{Width: 4, Rows: []string{"k*"}}

	first, err := c.CompilePattern(ctx, doc)
	require.NoError(t, err)
	second, err := c.CompilePattern(ctx, &pattern.RowDocument{Width: 4, Rows: []string{"k*"}})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Artifact.ID, second.Artifact.ID)
	assert.Same(t, first.Program, second.Program)
}

func TestCompiler_CacheDisabled(t *testing.T) {
	c := newCompiler(t, service.WithCacheSize(0))
	ctx := context.Background()
	doc := &pattern.RowDocument{Width: 3, Rows: []string{"p*"}}

	first, err := c.CompilePattern(ctx, doc)
	require.NoError(t, err)
	second, err := c.CompilePattern(ctx, doc)
	require.NoError(t, err)

	assert.False(t, second.Cached)
	assert.NotEqual(t, first.Artifact.ID, second.Artifact.ID)
	assert.Equal(t, first.Artifact.Digest, second.Artifact.Digest)
}

func TestCompiler_Errors(t *testing.T) {
	c := newCompiler(t)
	ctx := context.Background()

	t.Run("unknown swatch", func(t *testing.T) {
		_, err := c.CompileSwatch(ctx, "argyle", nil)
		assert.ErrorIs(t, err, swatch.ErrNotFound)
	})

	t.Run("bad params", func(t *testing.T) {
		_, err := c.CompileSwatch(ctx, "rib", map[string]any{"width": 0})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		var agg *schema.AggregateError
		assert.True(t, errors.As(err, &agg))
	})

	t.Run("unknown stitch", func(t *testing.T) {
		_, err := c.CompilePattern(ctx, &pattern.RowDocument{Width: 2, Rows: []string{"k zz"}})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		assert.ErrorIs(t, err, pattern.ErrUnknownStitch)
	})

	t.Run("machine too narrow", func(t *testing.T) {
		narrow := machine.DefaultConfig()
		narrow.Width = 2
		c := newCompiler(t, service.WithGeneratorOptions(generator.WithMachineConfig(narrow)))
		_, err := c.CompileSwatch(ctx, "stockinette", map[string]any{"width": 4})
		assert.ErrorIs(t, err, service.ErrGeneration)
		var gerr *generator.GenerationError
		assert.True(t, errors.As(err, &gerr))
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := c.Artifact(ctx, "nope")
		assert.ErrorIs(t, err, ports.ErrArtifactNotFound)
	})
}

func TestCompiler_Cancelled(t *testing.T) {
	c := newCompiler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CompileSwatch(ctx, "seed", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, service.ErrGeneration)
}

func TestCompiler_ConcurrentSameInput(t *testing.T) {
	store := memory.New()
	c := newCompiler(t, service.WithStore(store))
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.CompileSwatch(ctx, "lace", nil)
			if assert.NoError(t, err) {
				ids[i] = res.Artifact.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	stored, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCompiler_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	c := newCompiler(t, service.WithMetrics(m))
	ctx := context.Background()

	_, err := c.CompileSwatch(ctx, "stockinette", nil)
	require.NoError(t, err)
	_, err = c.CompileSwatch(ctx, "stockinette", nil)
	require.NoError(t, err)
	_, err = c.CompilePattern(ctx, &pattern.RowDocument{Width: 2, Rows: []string{"k3"}})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compiles.WithLabelValues("swatch", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compiles.WithLabelValues("rows", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLooks.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLooks.WithLabelValues("miss")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Courses))
}

func TestDigest_DependsOnSource(t *testing.T) {
	doc := &pattern.RowDocument{Width: 2, Rows: []string{"k*"}}
	a, err := service.Digest("rows", doc)
	require.NoError(t, err)
	b, err := service.Digest("swatch:stockinette", doc)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompiler_WithHooks(t *testing.T) {
	var courses int
	c := newCompiler(t, service.WithHooks(generator.Hooks{
		OnCourse: func(context.Context, *generator.CourseEvent) { courses++ },
	}))

	_, err := c.CompilePattern(context.Background(), &pattern.RowDocument{Width: 2, Rows: []string{"k*", "k*"}})
	require.NoError(t, err)
	assert.Equal(t, 3, courses)
}

type presigningStore struct {
	*memory.Store
}

func (presigningStore) ProgramURL(_ context.Context, id string, expiry time.Duration) (string, error) {
	return "https://bucket.example/" + id + "/program.k?ttl=" + expiry.String(), nil
}

func TestCompiler_ProgramURL(t *testing.T) {
	ctx := context.Background()

	plain := newCompiler(t)
	_, err := plain.ProgramURL(ctx, "any", time.Minute)
	assert.ErrorIs(t, err, service.ErrNotSupported)

	c := newCompiler(t, service.WithStore(presigningStore{memory.New()}))
	res, err := c.CompileSwatch(ctx, "seed", nil)
	require.NoError(t, err)

	u, err := c.ProgramURL(ctx, res.Artifact.ID, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/"+res.Artifact.ID+"/program.k?ttl=1m0s", u)

	_, err = c.ProgramURL(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, ports.ErrArtifactNotFound)
}
