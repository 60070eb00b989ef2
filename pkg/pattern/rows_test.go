package pattern_test

import (
	"errors"
	"testing"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/aretw0/knitout/pkg/stitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, doc *pattern.RowDocument) *knitgraph.Graph {
	t.Helper()
	g, err := doc.Graph()
	require.NoError(t, err)
	return g
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"k2", "p2", "LC1|1", "k*"}, pattern.Tokenize(" k2, p2 LC1|1,,k*\n"))
	assert.Empty(t, pattern.Tokenize(" , "))
}

func TestRows_Stockinette(t *testing.T) {
	g := compile(t, &pattern.RowDocument{Width: 4, Height: 4, Rows: []string{"k*"}})

	assert.Equal(t, 16, g.Len())
	assert.Equal(t, 12, g.EdgeCount())

	courses, err := g.Courses()
	require.NoError(t, err)
	require.Equal(t, 4, courses.Len())
	assert.Equal(t, []knitgraph.LoopID{7, 6, 5, 4}, courses.Loops[1])

	// each new row walks the last one in reverse
	for child, parent := range map[knitgraph.LoopID]knitgraph.LoopID{4: 3, 7: 0, 8: 7, 11: 4} {
		l, _ := g.Loop(child)
		assert.Equal(t, []knitgraph.LoopID{parent}, l.Parents(), "loop %d", child)
	}
}

func TestRows_DecreaseAndYarnOver(t *testing.T) {
	g := compile(t, &pattern.RowDocument{Width: 4, Rows: []string{"k yo k2tog k"}})

	courses, err := g.Courses()
	require.NoError(t, err)
	require.Equal(t, 2, courses.Len())
	assert.Equal(t, []knitgraph.LoopID{7, 6, 5, 4}, courses.Loops[1])

	dec, _ := g.Loop(6)
	assert.Equal(t, []knitgraph.LoopID{1, 2}, dec.Parents(), "the loop the stitch sits over is the bottom of the stack")

	e, ok := g.Edge(2, 6)
	require.True(t, ok)
	assert.Equal(t, -1, e.Placement.ParentOffset)
	e, _ = g.Edge(1, 6)
	assert.Equal(t, 0, e.Placement.ParentOffset)

	yo, _ := g.Loop(5)
	assert.False(t, yo.HasParents())
}

func TestRows_DecreaseOffsetsFollowRowDirection(t *testing.T) {
	// row 2 runs left to right, so the same decrease pulls from the left
	g := compile(t, &pattern.RowDocument{Width: 3, Rows: []string{"k*", "skpo k"}})

	l, _ := g.Loop(6)
	require.Equal(t, []knitgraph.LoopID{5, 4}, l.Parents())
	e, _ := g.Edge(4, 6)
	assert.Equal(t, -1, e.Placement.ParentOffset)
}

func TestRows_Cable(t *testing.T) {
	g := compile(t, &pattern.RowDocument{Width: 2, Rows: []string{"LC1|1P"}})

	first, ok := g.Edge(0, 2)
	require.True(t, ok)
	assert.Equal(t, 1, first.Placement.ParentOffset)
	assert.Equal(t, -1, first.Placement.Depth)
	assert.Equal(t, knitgraph.FtB, first.Pull, "right group is purled")

	second, ok := g.Edge(1, 3)
	require.True(t, ok)
	assert.Equal(t, -1, second.Placement.ParentOffset)
	assert.Equal(t, 1, second.Placement.Depth, "loop travelling left crosses in front")
	assert.Equal(t, knitgraph.BtF, second.Pull)
}

func TestRows_Repeats(t *testing.T) {
	doc := &pattern.RowDocument{
		Width:     6,
		Variables: map[string]any{"rib": "2"},
		Rows:      []string{"k{rib} p2 k{current_row} k"},
	}
	g := compile(t, doc)

	var purls int
	for _, id := range []knitgraph.LoopID{6, 7, 8, 9, 10, 11} {
		for _, e := range g.ParentEdges(id) {
			if e.Pull == knitgraph.FtB {
				purls++
			}
		}
	}
	assert.Equal(t, 2, purls)
}

func TestRows_FlipWrongSide(t *testing.T) {
	g := compile(t, &pattern.RowDocument{Width: 2, Height: 3, FlipWrongSide: true, Rows: []string{"k*"}})

	e, _ := g.Edge(0, 3)
	assert.Equal(t, knitgraph.BtF, e.Pull)
	e, _ = g.Edge(3, 4)
	assert.Equal(t, knitgraph.FtB, e.Pull)
}

func TestRows_Slip(t *testing.T) {
	g := compile(t, &pattern.RowDocument{Width: 3, Height: 3, Rows: []string{"k slip k", "k*"}})

	// the slipped cast-on loop is worked by the third row
	assert.Equal(t, []knitgraph.LoopID{6}, g.Children(1))
	courses, err := g.Courses()
	require.NoError(t, err)
	assert.Equal(t, 3, courses.Len())
}

func TestRows_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  pattern.RowDocument
		want error
	}{
		{name: "short row", doc: pattern.RowDocument{Width: 3, Rows: []string{"k2"}}, want: pattern.ErrRowLength},
		{name: "long row", doc: pattern.RowDocument{Width: 2, Rows: []string{"k3"}}, want: pattern.ErrRowLength},
		{name: "star remainder", doc: pattern.RowDocument{Width: 3, Rows: []string{"k2tog*"}}, want: pattern.ErrRowLength},
		{name: "unknown stitch", doc: pattern.RowDocument{Width: 2, Rows: []string{"k, bobble"}}, want: pattern.ErrUnknownStitch},
		{name: "leading yarn-over", doc: pattern.RowDocument{Width: 2, Rows: []string{"yo k2tog"}}, want: pattern.ErrRowStart},
		{name: "only slips", doc: pattern.RowDocument{Width: 2, Rows: []string{"slip*"}}, want: pattern.ErrRowStart},
		{name: "number token", doc: pattern.RowDocument{Width: 2, Variables: map[string]any{"n": 2}, Rows: []string{"n"}}, want: stitch.ErrWrongKind},
		{name: "undefined variable", doc: pattern.RowDocument{Width: 2, Rows: []string{"k{n}"}}, want: stitch.ErrUndefined},
		{name: "shadowed stitch", doc: pattern.RowDocument{Width: 2, Variables: map[string]any{"K": 1}, Rows: []string{"k*"}}, want: pattern.ErrVariableName},
		{name: "no width", doc: pattern.RowDocument{Rows: []string{"k*"}}, want: pattern.ErrInvalidDocument},
		{name: "no rows", doc: pattern.RowDocument{Width: 2, Height: 3}, want: pattern.ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Graph()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRows_ErrorLocatesRow(t *testing.T) {
	doc := &pattern.RowDocument{Width: 2, Height: 4, Rows: []string{"k*", "k bobble"}}
	_, err := doc.Graph()

	var rowErr *pattern.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "bobble", rowErr.Token)
	assert.Contains(t, err.Error(), `row 2, "bobble"`)
}
