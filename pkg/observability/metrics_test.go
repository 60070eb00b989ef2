package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/observability"
	"github.com/aretw0/knitout/pkg/swatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.Combine(m.Hooks(), observability.LoggingHooks(logger))

	g, err := swatch.Stockinette(4, 4).Graph()
	require.NoError(t, err)
	_, err = generator.New(g, generator.WithHooks(hooks)).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Passes.WithLabelValues("tuck")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Passes.WithLabelValues("knit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Courses), "cast-on included")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Transfers))
	assert.Contains(t, logs.String(), "msg=course")
	assert.Contains(t, logs.String(), "type=knit")
}

func TestMetrics_Compiles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveCompile("rows", 3*time.Millisecond, nil)
	m.ObserveCompile("rows", time.Millisecond, errors.New("bad row"))
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compiles.WithLabelValues("rows", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Compiles.WithLabelValues("rows", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLooks.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	count, err := testutil.GatherAndCount(reg, "knitout_compiles_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
