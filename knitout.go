package knitout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/knitout/pkg/generator"
	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/pattern"
)

// Engine is the high-level entry point of the library. It holds one
// document and compiles it to knitout on demand.
type Engine struct {
	doc     pattern.Document
	genOpts []generator.Option
	hooks   generator.Hooks
	logger  *slog.Logger
	Name    string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithDocument compiles doc instead of loading a file.
func WithDocument(doc pattern.Document) Option {
	return func(e *Engine) {
		e.doc = doc
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers generation callbacks.
func WithHooks(hooks generator.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithGeneratorOptions passes machine, carrier and finishing options to
// every compilation.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(e *Engine) {
		e.genOpts = append(e.genOpts, opts...)
	}
}

// New loads the pattern document at path. With WithDocument, path may be
// empty and is only used as the engine's name.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.doc == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no document is provided")
		}
		doc, err := pattern.Load(path)
		if err != nil {
			return nil, err
		}
		eng.doc = doc
	}

	switch {
	case path != "":
		eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	default:
		eng.Name = eng.doc.Title()
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("pattern", eng.Name)
	return eng, nil
}

// Document returns the document the engine compiles.
func (e *Engine) Document() pattern.Document { return e.doc }

// Inspect builds the knit graph and its course decomposition without
// generating instructions.
func (e *Engine) Inspect() (*knitgraph.Graph, *knitgraph.Courses, error) {
	g, err := e.doc.Graph()
	if err != nil {
		return nil, nil, err
	}
	courses, err := g.Courses()
	if err != nil {
		return nil, nil, err
	}
	return g, courses, nil
}

// Compile builds the graph and generates the program.
func (e *Engine) Compile(ctx context.Context) (*generator.Program, error) {
	g, err := e.doc.Graph()
	if err != nil {
		return nil, err
	}
	opts := append([]generator.Option{generator.WithLogger(e.logger), generator.WithHooks(e.hooks)}, e.genOpts...)
	return generator.New(g, opts...).Generate(ctx)
}
