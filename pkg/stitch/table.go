package stitch

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

// CurrentRow is the variable holding the row being compiled.
const CurrentRow = "current_row"

// MaxCableGroup is the largest group of loops a built-in cable crosses.
const MaxCableGroup = 3

// Table maps case-insensitive names to symbols.
type Table struct {
	symbols map[string]Symbol
}

// NewTable returns a table with the built-in stitches and cables.
func NewTable() *Table {
	t := &Table{symbols: make(map[string]Symbol)}
	t.Define("k", Knit())
	t.Define("p", Purl())
	t.Define("yo", YarnOver())
	t.Define("slip", Slip())
	t.Define(CurrentRow, Number(0))

	for _, n := range []int{2, 3} {
		t.Define(fmt.Sprintf("k%dtog", n), Tog(n, knitgraph.BtF))
		t.Define(fmt.Sprintf("p%dtog", n), Tog(n, knitgraph.FtB))
	}
	t.Define("skpo", SlipPass(1, knitgraph.BtF))
	t.Define("sppo", SlipPass(1, knitgraph.FtB))
	t.Define("s2kpo", SlipPass(2, knitgraph.BtF))
	t.Define("s2ppo", SlipPass(2, knitgraph.FtB))
	t.Define("sk2po", Centered(knitgraph.BtF))
	t.Define("sp2po", Centered(knitgraph.FtB))

	for l := 1; l <= MaxCableGroup; l++ {
		for r := 1; r <= MaxCableGroup; r++ {
			for _, lean := range []Lean{Left, Right} {
				for _, lp := range []knitgraph.PullDirection{knitgraph.BtF, knitgraph.FtB} {
					for _, rp := range []knitgraph.PullDirection{knitgraph.BtF, knitgraph.FtB} {
						c := Cable{Left: l, Right: r, LeftPull: lp, RightPull: rp, Lean: lean}
						t.Define(c.String(), c)
					}
				}
			}
		}
	}
	return t
}

// Define binds a name, replacing any earlier binding.
func (t *Table) Define(name string, s Symbol) {
	t.symbols[strings.ToLower(name)] = s
}

// Lookup resolves a name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	s, ok := t.symbols[strings.ToLower(name)]
	return s, ok
}

// Number resolves a numeric variable.
func (t *Table) Number(name string) (int, error) {
	s, ok := t.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	n, ok := s.(Number)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrWrongKind, name)
	}
	return int(n), nil
}

// Names returns every defined name, sorted.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.symbols))
}

// Describe renders a symbol for listings.
func Describe(s Symbol) string {
	switch s := s.(type) {
	case Stitch:
		switch {
		case s.Slip():
			return "slip"
		case s.YarnOver():
			return "yarn-over"
		case s.Consumes() > 1:
			return fmt.Sprintf("%s decrease of %d, offsets %v", s.Pull, s.Consumes(), s.Offsets)
		}
		return s.Pull.String() + " stitch"
	case Cable:
		return fmt.Sprintf("cable %d over %d, %s lean", s.Left, s.Right, s.Lean)
	case Number:
		return fmt.Sprintf("number %d", int(s))
	}
	return "unknown"
}
