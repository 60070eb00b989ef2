package swatch

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/knitout/pkg/machine"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/schema"
)

// ErrNotFound is returned for unregistered swatch names.
var ErrNotFound = errors.New("swatch not found")

// BuildFunc turns validated parameters into a document.
type BuildFunc func(params map[string]any) (pattern.Document, error)

// Swatch is a named, parameterised document generator.
type Swatch struct {
	Name        string
	Description string
	Params      schema.Schema
	build       BuildFunc
}

// Build validates params against the swatch's schema and builds it.
func (s Swatch) Build(params map[string]any) (pattern.Document, error) {
	values, err := s.Params.Apply(params)
	if err != nil {
		return nil, fmt.Errorf("swatch %s: %w", s.Name, err)
	}
	return s.build(values)
}

// Registry holds the available swatches.
type Registry struct {
	mu       sync.RWMutex
	swatches map[string]Swatch
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{swatches: make(map[string]Swatch)}
}

// Register adds a swatch. A swatch with the same name is overwritten.
func (r *Registry) Register(name, description string, params schema.Schema, build BuildFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swatches[name] = Swatch{Name: name, Description: description, Params: params, build: build}
}

// Lookup finds a swatch by name.
func (r *Registry) Lookup(name string) (Swatch, error) {
	r.mu.RLock()
	s, ok := r.swatches[name]
	r.mu.RUnlock()
	if !ok {
		return Swatch{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}

// Build looks up a swatch by name and builds it.
func (r *Registry) Build(name string, params map[string]any) (pattern.Document, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Build(params)
}

// List returns the registered swatches sorted by name.
func (r *Registry) List() []Swatch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Swatch, 0, len(r.swatches))
	for _, s := range r.swatches {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Swatch) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

func size(defaultWidth, defaultHeight, minHeight int) schema.Schema {
	return schema.Schema{
		"width":  {Type: schema.IntRange(1, machine.DefaultConfig().Width), Default: defaultWidth, Doc: "stitches per row"},
		"height": {Type: schema.IntRange(minHeight, 0), Default: defaultHeight, Doc: "courses, cast-on included"},
	}
}

func with(s schema.Schema, name string, p schema.Param) schema.Schema {
	s[name] = p
	return s
}

// Default returns a registry holding every built-in swatch.
func Default() *Registry {
	r := NewRegistry()
	w := func(p map[string]any) int { return schema.IntParam(p, "width") }
	h := func(p map[string]any) int { return schema.IntParam(p, "height") }

	r.Register("stockinette", "every stitch knit", size(4, 4, 1),
		func(p map[string]any) (pattern.Document, error) {
			return Stockinette(w(p), h(p)), nil
		})
	r.Register("rib", "columns of knits and purls",
		with(size(4, 4, 2), "rib_width", schema.Param{Type: schema.IntRange(1, 0), Default: 1, Doc: "stitches per column"}),
		func(p map[string]any) (pattern.Document, error) {
			return Rib(w(p), h(p), schema.IntParam(p, "rib_width"))
		})
	r.Register("seed", "checkered knits and purls", size(4, 4, 2),
		func(p map[string]any) (pattern.Document, error) {
			return Seed(w(p), h(p)), nil
		})
	r.Register("twisted-stripes", "1x1 twists between knit wales",
		with(size(4, 5, 2), "left_twists", schema.Param{Type: schema.Bool(), Default: true, Doc: "loop travelling left crosses in front"}),
		func(p map[string]any) (pattern.Document, error) {
			return TwistedStripes(w(p), h(p), p["left_twists"].(bool)), nil
		})
	r.Register("lace", "yarn-overs and k2togs between knit wales", size(4, 4, 2),
		func(p map[string]any) (pattern.Document, error) {
			return Lace(w(p), h(p)), nil
		})
	r.Register("lace-and-twist", "13 stitch sampler of decreases, yarn-overs and twists", schema.Schema{},
		func(map[string]any) (pattern.Document, error) {
			g, err := LaceAndTwist()
			if err != nil {
				return nil, err
			}
			return pattern.FromGraph("lace-and-twist", g), nil
		})
	return r
}
