package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/knitout/internal/adapters/memory"
	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/observability"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/aretw0/knitout/pkg/swatch"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrInvalidInput wraps failures to turn the input into a knit graph.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGeneration wraps failures of the generator itself.
	ErrGeneration = errors.New("generation failed")
	// ErrNotSupported is returned when the store cannot presign downloads.
	ErrNotSupported = errors.New("not supported by the artifact store")
)

// presigner is implemented by stores that can hand out download links.
type presigner interface {
	ProgramURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

const defaultCacheSize = 128

// Result is the outcome of one compilation.
type Result struct {
	Artifact *ports.Artifact
	Program  *generator.Program
	// Cached is set when the result was served without generating.
	Cached bool
}

// Compiler turns documents into stored knitout artifacts.
// It is safe for concurrent use.
type Compiler struct {
	store     ports.ArtifactStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	metrics   *observability.Metrics
	registry  *swatch.Registry
	genOpts   []generator.Option
	hooks     []generator.Hooks
	cacheSize int
	cache     *lru.Cache[string, *Result]
	logger    *slog.Logger
}

// New creates a compiler. Without options it keeps artifacts in memory
// and builds the default swatches.
func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{
		lockTTL:   30 * time.Second,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.store == nil {
		c.store = memory.New()
	}
	if c.locker == nil {
		c.locker = memory.NewLocker()
	}
	if c.registry == nil {
		c.registry = swatch.Default()
	}
	if c.cacheSize > 0 {
		cache, err := lru.New[string, *Result](c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Registry returns the swatches the compiler builds.
func (c *Compiler) Registry() *swatch.Registry { return c.registry }

// CompilePattern compiles a graph or row document.
func (c *Compiler) CompilePattern(ctx context.Context, doc pattern.Document) (*Result, error) {
	return c.compile(ctx, string(doc.Kind()), doc)
}

// CompileGraph compiles a graph document.
func (c *Compiler) CompileGraph(ctx context.Context, doc *pattern.GraphDocument) (*Result, error) {
	return c.compile(ctx, string(pattern.KindGraph), doc)
}

// CompileSwatch builds the named swatch with params and compiles it.
func (c *Compiler) CompileSwatch(ctx context.Context, name string, params map[string]any) (*Result, error) {
	doc, err := c.registry.Build(name, params)
	if err != nil {
		if errors.Is(err, swatch.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return c.compile(ctx, "swatch:"+name, doc)
}

// Artifact loads a stored artifact.
func (c *Compiler) Artifact(ctx context.Context, id string) (*ports.Artifact, error) {
	return c.store.Load(ctx, id)
}

// ProgramURL returns a time-limited link to an artifact's program.
func (c *Compiler) ProgramURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	p, ok := c.store.(presigner)
	if !ok {
		return "", ErrNotSupported
	}
	if _, err := c.store.Load(ctx, id); err != nil {
		return "", err
	}
	return p.ProgramURL(ctx, id, expiry)
}

// Artifacts lists the ids of stored artifacts.
func (c *Compiler) Artifacts(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// Digest fingerprints a document compiled from source.
func Digest(source string, doc pattern.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Compiler) lookup(digest string) (*Result, bool) {
	if c.cache == nil {
		return nil, false
	}
	r, ok := c.cache.Get(digest)
	if c.metrics != nil {
		c.metrics.ObserveCache(ok)
	}
	if !ok {
		return nil, false
	}
	return &Result{Artifact: r.Artifact, Program: r.Program, Cached: true}, true
}

func (c *Compiler) compile(ctx context.Context, source string, doc pattern.Document) (res *Result, err error) {
	start := time.Now()
	label := source
	if strings.HasPrefix(source, "swatch:") {
		label = "swatch"
	}
	logger := c.logger.With("source", source, "name", doc.Title())

	digest, err := Digest(source, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if r, ok := c.lookup(digest); ok {
		logger.Debug("compile cache hit", "digest", digest, "id", r.Artifact.ID)
		return r, nil
	}

	unlock, err := c.locker.Lock(ctx, "compile:"+digest, c.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", digest, err)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			logger.Warn("failed to release lock", "digest", digest, "err", uerr)
		}
	}()
	// another caller may have compiled it while we waited
	if c.cache != nil {
		if r, ok := c.cache.Get(digest); ok {
			return &Result{Artifact: r.Artifact, Program: r.Program, Cached: true}, nil
		}
	}

	if c.metrics != nil {
		defer func() { c.metrics.ObserveCompile(label, time.Since(start), err) }()
	}

	graph, err := doc.Graph()
	if err != nil {
		logger.Info("document rejected", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hooks := append([]generator.Hooks{observability.LoggingHooks(logger)}, c.hooks...)
	if c.metrics != nil {
		hooks = append(hooks, c.metrics.Hooks())
	}
	opts := append([]generator.Option{generator.WithLogger(logger)}, c.genOpts...)
	opts = append(opts, generator.WithHooks(observability.Combine(hooks...)))

	program, err := generator.New(graph, opts...).Generate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	artifact := &ports.Artifact{
		ID:        uuid.NewString(),
		Name:      doc.Title(),
		Source:    source,
		Digest:    digest,
		Knitout:   program.String(),
		Stats:     program.Stats(),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to save artifact: %w", err)
	}
	logger.Info("artifact compiled", "id", artifact.ID, "instructions", artifact.Stats.Instructions, "duration", time.Since(start))

	res = &Result{Artifact: artifact, Program: program}
	if c.cache != nil {
		c.cache.Add(digest, res)
	}
	return res, nil
}
