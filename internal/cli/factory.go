package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/knitout/internal/adapters/file"
	"github.com/aretw0/knitout/internal/adapters/memory"
	"github.com/aretw0/knitout/internal/adapters/redis"
	"github.com/aretw0/knitout/internal/adapters/s3"
	"github.com/aretw0/knitout/internal/config"
	"github.com/aretw0/knitout/internal/service"
	"github.com/aretw0/knitout/pkg/observability"
	"github.com/aretw0/knitout/pkg/persistence/middleware"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
)

// Backend is a compiler wired to the store the configuration names.
type Backend struct {
	Compiler *service.Compiler
	Store    ports.ArtifactStore
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	closers  []func() error
}

// Close releases the store's connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewBackend builds the compiler from cfg. extra options are applied last.
func NewBackend(cfg *config.Config, logger *slog.Logger, extra ...service.Option) (*Backend, error) {
	genOpts, err := cfg.GeneratorOptions()
	if err != nil {
		return nil, err
	}

	b := &Backend{Registry: prometheus.NewRegistry()}
	b.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	b.Metrics = observability.NewMetrics(b.Registry)

	store, locker, err := b.newStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.Store.EncryptionKey, cfg.Store.FallbackKeys...)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		encrypt, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		store = middleware.Chain(store, encrypt)
	}
	b.Store = store
	logger.Debug("artifact store ready", "kind", cfg.Store.Kind, "encrypted", cfg.Store.EncryptionKey != "")

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithStore(store),
		service.WithLocker(locker),
		service.WithLockTTL(cfg.Lock.TTL),
		service.WithMetrics(b.Metrics),
		service.WithCacheSize(cfg.Cache.Size),
		service.WithGeneratorOptions(genOpts...),
	}
	b.Compiler, err = service.New(append(opts, extra...)...)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) newStore(cfg *config.Config) (ports.ArtifactStore, ports.DistributedLocker, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return memory.New(), memory.NewLocker(), nil
	case config.StoreFile:
		return file.New(cfg.Store.Path), memory.NewLocker(), nil
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		b.closers = append(b.closers, client.Close)
		store := redis.NewFromClient(client, redis.WithTTL(cfg.Store.Redis.TTL))
		return store, redis.NewLocker(client, "knitout:"), nil
	case config.StoreS3:
		store, err := s3.New(cfg.Store.S3)
		if err != nil {
			return nil, nil, err
		}
		return store, memory.NewLocker(), nil
	}
	return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}
