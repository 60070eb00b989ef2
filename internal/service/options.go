package service

import (
	"log/slog"
	"time"

	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/observability"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/aretw0/knitout/pkg/swatch"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithStore sets where artifacts are persisted. Defaults to memory.
func WithStore(store ports.ArtifactStore) Option {
	return func(c *Compiler) {
		c.store = store
	}
}

// WithLocker sets the locker guarding each input digest.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Compiler) {
		c.locker = locker
	}
}

// WithLockTTL bounds how long a compilation holds its lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(c *Compiler) {
		c.lockTTL = ttl
	}
}

// WithMetrics records compilations, cache lookups and passes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// WithCacheSize sets how many results are kept in memory. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *Compiler) {
		c.cacheSize = n
	}
}

// WithGeneratorOptions are applied to every generation.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(c *Compiler) {
		c.genOpts = append(c.genOpts, opts...)
	}
}

// WithRegistry sets the swatches CompileSwatch can build.
func WithRegistry(r *swatch.Registry) Option {
	return func(c *Compiler) {
		c.registry = r
	}
}

// WithHooks adds generation callbacks fired for every compilation.
func WithHooks(hooks generator.Hooks) Option {
	return func(c *Compiler) {
		c.hooks = append(c.hooks, hooks)
	}
}
