package pattern

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/stitch"
	"github.com/mitchellh/mapstructure"
)

// DefaultYarn names the yarn of a row document that does not name one.
const DefaultYarn = "yarn"

// RowDocument describes fabric as a cast-on followed by rows of stitch tokens.
//
// Tokens are separated by commas or spaces. A token is a stitch name from
// the stitch table, optionally followed by a repeat: a count ("k3"), a
// variable in braces ("k{rib}") or "*" to repeat until the row is used up.
// Rows are reused cyclically until Height courses exist.
type RowDocument struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Width is the number of cast-on loops.
	Width int `yaml:"width" json:"width"`
	// Height counts courses including the cast-on. Zero means one course per row.
	Height  int    `yaml:"height,omitempty" json:"height,omitempty"`
	Yarn    string `yaml:"yarn,omitempty" json:"yarn,omitempty"`
	Carrier []int  `yaml:"carrier,omitempty" json:"carrier,omitempty"`
	// Variables are numbers usable as repeat counts.
	Variables map[string]any `yaml:"variables,omitempty" json:"variables,omitempty"`
	// FlipWrongSide swaps knit and purl on even rows, for patterns written
	// as seen from the right side of the fabric.
	FlipWrongSide bool     `yaml:"flip_wrong_side,omitempty" json:"flip_wrong_side,omitempty"`
	Rows          []string `yaml:"rows" json:"rows"`
}

func (d *RowDocument) Kind() Kind { return KindRows }

func (d *RowDocument) Title() string {
	if d.Name == "" {
		return "pattern"
	}
	return d.Name
}

// Courses is the number of courses the document produces.
func (d *RowDocument) Courses() int {
	if d.Height > 0 {
		return d.Height
	}
	return len(d.Rows) + 1
}

// Validate checks the document's shape without compiling it.
func (d *RowDocument) Validate() error {
	switch {
	case d.Width < 1:
		return fmt.Errorf("%w: width must be at least 1", ErrInvalidDocument)
	case d.Height < 0:
		return fmt.Errorf("%w: height must not be negative", ErrInvalidDocument)
	case d.Courses() > 1 && len(d.Rows) == 0:
		return fmt.Errorf("%w: no rows", ErrInvalidDocument)
	}
	return nil
}

// Graph compiles the document.
func (d *RowDocument) Graph() (*knitgraph.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	table, err := d.table()
	if err != nil {
		return nil, err
	}

	yarn := d.Yarn
	if yarn == "" {
		yarn = DefaultYarn
	}
	g := knitgraph.New()
	if err := g.AddYarn(knitgraph.NewYarn(yarn, d.Carrier...)); err != nil {
		return nil, err
	}

	c := &rowCompiler{graph: g, table: table, yarn: yarn, flip: d.FlipWrongSide, fresh: make(map[knitgraph.LoopID]bool)}
	prior := make([]knitgraph.LoopID, 0, d.Width)
	for i := 0; i < d.Width; i++ {
		l, err := g.NewLoop(yarn, false)
		if err != nil {
			return nil, err
		}
		prior = append(prior, l.ID())
		c.fresh[l.ID()] = true
	}

	for r := 1; r < d.Courses(); r++ {
		table.Define(stitch.CurrentRow, stitch.Number(r))
		working := slices.Clone(prior)
		slices.Reverse(working)
		next, err := c.row(r, Tokenize(d.Rows[(r-1)%len(d.Rows)]), working)
		if err != nil {
			return nil, err
		}
		prior = next
	}
	return g, nil
}

func (d *RowDocument) table() (*stitch.Table, error) {
	table := stitch.NewTable()
	var vars map[string]int
	if err := mapstructure.WeakDecode(d.Variables, &vars); err != nil {
		return nil, fmt.Errorf("%w: variables: %v", ErrInvalidDocument, err)
	}
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		if sym, ok := table.Lookup(name); ok {
			if _, isNumber := sym.(stitch.Number); !isNumber {
				return nil, fmt.Errorf("%w: %q", ErrVariableName, name)
			}
		}
		table.Define(name, stitch.Number(vars[name]))
	}
	return table, nil
}

// Tokenize splits a row into stitch tokens.
func Tokenize(row string) []string {
	return strings.FieldsFunc(row, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

type rowCompiler struct {
	graph *knitgraph.Graph
	table *stitch.Table
	yarn  string
	flip  bool
	// fresh holds the loops made by the previous row.
	fresh map[knitgraph.LoopID]bool
}

// row works the loops of working, in the order the carriage meets them, and
// returns the loops left on the needles in the same order.
func (c *rowCompiler) row(r int, tokens []string, working []knitgraph.LoopID) ([]knitgraph.LoopID, error) {
	sign := 1
	if r%2 == 1 {
		sign = -1
	}
	made := make(map[knitgraph.LoopID]bool)
	var next []knitgraph.LoopID
	cursor := 0

	newLoop := func(tok string, parents []knitgraph.LoopID) (knitgraph.LoopID, error) {
		if len(made) == 0 && !slices.ContainsFunc(parents, func(p knitgraph.LoopID) bool { return c.fresh[p] }) {
			return 0, &RowError{Row: r, Token: tok, Err: ErrRowStart}
		}
		l, err := c.graph.NewLoop(c.yarn, false)
		if err != nil {
			return 0, err
		}
		made[l.ID()] = true
		next = append(next, l.ID())
		return l.ID(), nil
	}
	pull := func(p knitgraph.PullDirection) knitgraph.PullDirection {
		if c.flip && r%2 == 0 {
			return p.Opposite()
		}
		return p
	}
	take := func(tok string, n int) ([]knitgraph.LoopID, error) {
		if cursor+n > len(working) {
			return nil, &RowError{Row: r, Token: tok, Err: fmt.Errorf("%w: %d loops left, %d needed", ErrRowLength, len(working)-cursor, n)}
		}
		loops := working[cursor : cursor+n]
		cursor += n
		return loops, nil
	}

	for _, tok := range tokens {
		sym, count, err := c.resolve(tok, len(working)-cursor)
		if err != nil {
			return nil, &RowError{Row: r, Token: tok, Err: err}
		}
		for i := 0; i < count; i++ {
			switch s := sym.(type) {
			case stitch.Stitch:
				parents, err := take(tok, s.Consumes())
				if err != nil {
					return nil, err
				}
				if s.Slip() {
					next = append(next, parents...)
					continue
				}
				child, err := newLoop(tok, parents)
				if err != nil {
					return nil, err
				}
				if len(parents) == 0 {
					continue
				}
				a := s.Anchor()
				if err := c.graph.ConnectLoops(parents[a], child, pull(s.Pull), knitgraph.Placement{}); err != nil {
					return nil, err
				}
				for j, p := range parents {
					if j == a {
						continue
					}
					placement := knitgraph.Placement{ParentOffset: -s.Offsets[j] * sign}
					if err := c.graph.ConnectLoops(p, child, pull(s.Pull), placement); err != nil {
						return nil, err
					}
				}

			case stitch.Cable:
				loops, err := take(tok, s.Consumes())
				if err != nil {
					return nil, err
				}
				// the right group is worked first and lands where the left group was
				groups := []struct {
					parents []knitgraph.LoopID
					offset  int
					pull    knitgraph.PullDirection
				}{
					{loops[s.Left:], -s.Left * sign, s.RightPull},
					{loops[:s.Left], s.Right * sign, s.LeftPull},
				}
				for _, grp := range groups {
					for _, p := range grp.parents {
						child, err := newLoop(tok, []knitgraph.LoopID{p})
						if err != nil {
							return nil, err
						}
						placement := knitgraph.Placement{ParentOffset: grp.offset, Depth: s.Depth(grp.offset)}
						if err := c.graph.ConnectLoops(p, child, pull(grp.pull), placement); err != nil {
							return nil, err
						}
					}
				}

			default:
				return nil, &RowError{Row: r, Token: tok, Err: fmt.Errorf("%w: %s is a number", stitch.ErrWrongKind, tok)}
			}
		}
	}

	if cursor != len(working) {
		return nil, &RowError{Row: r, Err: fmt.Errorf("%w: %d of %d loops worked", ErrRowLength, cursor, len(working))}
	}
	if len(made) == 0 {
		return nil, &RowError{Row: r, Err: ErrRowStart}
	}
	c.fresh = made
	return next, nil
}

// resolve splits a token into its symbol and repeat count. remaining is the
// number of loops still to be worked in the row.
func (c *rowCompiler) resolve(tok string, remaining int) (stitch.Symbol, int, error) {
	if sym, ok := c.table.Lookup(tok); ok {
		return sym, 1, nil
	}

	if base, ok := strings.CutSuffix(tok, "*"); ok {
		sym, ok := c.table.Lookup(base)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownStitch, base)
		}
		n := consumes(sym)
		if n == 0 {
			return nil, 0, fmt.Errorf("%s works no loops and cannot fill a row", base)
		}
		if remaining%n != 0 {
			return nil, 0, fmt.Errorf("%w: %d loops left, not a multiple of %d", ErrRowLength, remaining, n)
		}
		return sym, remaining / n, nil
	}

	if i := strings.IndexByte(tok, '{'); i > 0 && strings.HasSuffix(tok, "}") {
		sym, ok := c.table.Lookup(tok[:i])
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownStitch, tok[:i])
		}
		n, err := c.table.Number(tok[i+1 : len(tok)-1])
		if err != nil {
			return nil, 0, err
		}
		if n < 0 {
			return nil, 0, fmt.Errorf("negative repeat %d", n)
		}
		return sym, n, nil
	}

	for i := len(tok) - 1; i > 0 && tok[i] >= '0' && tok[i] <= '9'; i-- {
		if sym, ok := c.table.Lookup(tok[:i]); ok {
			n, err := strconv.Atoi(tok[i:])
			if err != nil {
				return nil, 0, err
			}
			return sym, n, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrUnknownStitch, tok)
}

func consumes(sym stitch.Symbol) int {
	switch s := sym.(type) {
	case stitch.Stitch:
		return s.Consumes()
	case stitch.Cable:
		return s.Consumes()
	}
	return 0
}
