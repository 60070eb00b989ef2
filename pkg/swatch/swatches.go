package swatch

import (
	"fmt"
	"strings"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/pattern"
)

// Stockinette is plain knitting: every stitch a knit.
func Stockinette(width, height int) *pattern.RowDocument {
	return &pattern.RowDocument{
		Name:   "stockinette",
		Width:  width,
		Height: height,
		Rows:   []string{"k*"},
	}
}

// Rib alternates columns of ribWidth knits and ribWidth purls, starting
// with knits. Columns keep their stitch from row to row.
func Rib(width, height, ribWidth int) (*pattern.RowDocument, error) {
	if ribWidth < 1 || ribWidth > width {
		return nil, fmt.Errorf("%w: rib width %d must be between 1 and the swatch width %d", pattern.ErrInvalidDocument, ribWidth, width)
	}
	first := make([]bool, width)
	for col := range first {
		first[col] = (col/ribWidth)%2 == 1
	}
	return &pattern.RowDocument{
		Name:   "rib",
		Width:  width,
		Height: height,
		Rows:   []string{row(first), row(wales(first, false))},
	}, nil
}

// Seed checkers knits and purls: every stitch is the opposite of the one
// below it and of its neighbours.
func Seed(width, height int) *pattern.RowDocument {
	first := make([]bool, width)
	for col := range first {
		first[col] = col%2 == 1
	}
	return &pattern.RowDocument{
		Name:   "seed",
		Width:  width,
		Height: height,
		Rows:   []string{row(first), row(wales(first, true))},
	}
}

// TwistedStripes crosses pairs of stitches every other row between
// single knit wales. leftTwists puts the loop travelling left in front.
func TwistedStripes(width, height int, leftTwists bool) *pattern.RowDocument {
	twist := "RC1|1"
	if leftTwists {
		twist = "LC1|1"
	}
	return &pattern.RowDocument{
		Name:   "twisted-stripes",
		Width:  width,
		Height: height,
		Rows:   []string{repeat(width, []string{"k", twist, "k"}, []string{"k", twist}), "k*"},
	}
}

// Lace works a yarn-over and a k2tog between knit wales every other row.
func Lace(width, height int) *pattern.RowDocument {
	return &pattern.RowDocument{
		Name:   "lace",
		Width:  width,
		Height: height,
		Rows:   []string{repeat(width, []string{"k", "yo", "k2tog", "k"}, []string{"k", "yo", "k2tog"}), "k*"},
	}
}

// repeat lays a four-column motif across width columns. Three leftover
// columns take the three-column tail; one or two are knit.
func repeat(width int, motif, tail []string) string {
	var tokens []string
	for col := 0; col < width; col += 4 {
		switch left := width - col; {
		case left >= 4:
			tokens = append(tokens, motif...)
		case left == 3:
			tokens = append(tokens, tail...)
		case left == 2:
			tokens = append(tokens, "k2")
		default:
			tokens = append(tokens, "k")
		}
	}
	return strings.Join(tokens, " ")
}

// wales maps the stitches of one row onto the next: the carriage walks back
// so column j of the next row sits over column width-1-j. invert purls what
// was knit and knits what was purled.
func wales(purls []bool, invert bool) []bool {
	out := make([]bool, len(purls))
	for j := range out {
		out[j] = purls[len(purls)-1-j] != invert
	}
	return out
}

// row writes a run-length coded row of knits (false) and purls (true).
func row(purls []bool) string {
	var tokens []string
	for i := 0; i < len(purls); {
		j := i
		for j < len(purls) && purls[j] == purls[i] {
			j++
		}
		name := "k"
		if purls[i] {
			name = "p"
		}
		if j-i == 1 {
			tokens = append(tokens, name)
		} else {
			tokens = append(tokens, fmt.Sprintf("%s%d", name, j-i))
		}
		i = j
	}
	return strings.Join(tokens, " ")
}

// LaceAndTwist is a 13-stitch sampler with three decreases of two and
// three loops, four yarn-overs and a left and a right twist, all in the
// first row, followed by a knit row.
func LaceAndTwist() (*knitgraph.Graph, error) {
	const width = 13
	g := knitgraph.New()
	if err := g.AddYarn(knitgraph.NewYarn(pattern.DefaultYarn)); err != nil {
		return nil, err
	}
	newRow := func() ([]knitgraph.LoopID, error) {
		ids := make([]knitgraph.LoopID, width)
		for i := range ids {
			l, err := g.NewLoop(pattern.DefaultYarn, false)
			if err != nil {
				return nil, err
			}
			ids[i] = l.ID()
		}
		return ids, nil
	}
	if _, err := newRow(); err != nil {
		return nil, err
	}
	// loops 13..25, right to left: loop 25-i sits on needle i
	if _, err := newRow(); err != nil {
		return nil, err
	}

	plain := knitgraph.Placement{}
	stitches := []struct {
		parent, child knitgraph.LoopID
		placement     knitgraph.Placement
	}{
		// edges
		{0, 25, plain},
		{12, 13, plain},
		// decreases, bottom of each stack first
		{1, 24, plain.AtStack(0)},
		{6, 19, plain.AtStack(0)},
		{11, 14, plain.AtStack(0)},
		{2, 24, knitgraph.Placement{ParentOffset: -1}.AtStack(1)},
		{5, 19, knitgraph.Placement{ParentOffset: 1}.AtStack(1)},
		{10, 14, knitgraph.Placement{ParentOffset: 1}.AtStack(1)},
		{7, 19, knitgraph.Placement{ParentOffset: -1}.AtStack(2)},
		// twists
		{3, 21, knitgraph.Placement{ParentOffset: 1, Depth: 1}},
		{4, 22, knitgraph.Placement{ParentOffset: -1, Depth: -1}},
		{8, 16, knitgraph.Placement{ParentOffset: 1, Depth: -1}},
		{9, 17, knitgraph.Placement{ParentOffset: -1, Depth: 1}},
	}
	for _, s := range stitches {
		if err := g.ConnectLoops(s.parent, s.child, knitgraph.BtF, s.placement); err != nil {
			return nil, err
		}
	}

	last, err := newRow()
	if err != nil {
		return nil, err
	}
	for i, child := range last {
		if err := g.Knit(knitgraph.LoopID(2*width-1-i), child); err != nil {
			return nil, err
		}
	}
	return g, nil
}
