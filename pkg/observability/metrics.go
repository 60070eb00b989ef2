package observability

import (
	"context"
	"time"

	"github.com/aretw0/knitout/pkg/generator"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "knitout"

// Metrics are the compiler's Prometheus collectors.
type Metrics struct {
	Compiles   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Passes     *prometheus.CounterVec
	Courses    prometheus.Counter
	Transfers  prometheus.Counter
	CacheLooks *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compiles_total",
				Help:      "Total number of compilations by source and result",
			},
			[]string{"source", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compile_duration_seconds",
				Help:      "Duration of compilations",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"source"},
		),
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "carriage_passes_total",
				Help:      "Carriage passes written, by instruction type",
			},
			[]string{"type"},
		),
		Courses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "courses_total",
			Help:      "Courses compiled",
		}),
		Transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Loop transfers planned",
		}),
		CacheLooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Compile cache lookups by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Compiles, m.Duration, m.Passes, m.Courses, m.Transfers, m.CacheLooks)
	return m
}

// Hooks records passes, courses and transfers as a program is generated.
func (m *Metrics) Hooks() generator.Hooks {
	return generator.Hooks{
		OnPass: func(_ context.Context, e *generator.PassEvent) {
			m.Passes.WithLabelValues(e.Type.String()).Inc()
		},
		OnCourse: func(_ context.Context, e *generator.CourseEvent) {
			m.Courses.Inc()
			m.Transfers.Add(float64(e.Transfers))
		},
	}
}

// ObserveCompile records one compilation.
func (m *Metrics) ObserveCompile(source string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Compiles.WithLabelValues(source, result).Inc()
	m.Duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLooks.WithLabelValues(result).Inc()
}
