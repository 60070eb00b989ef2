package knitgraph_test

import (
	"errors"
	"testing"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T) *knitgraph.Graph {
	t.Helper()
	g := knitgraph.New()
	require.NoError(t, g.AddYarn(knitgraph.NewYarn("yarn")))
	return g
}

func TestGraph_LoopIDsAreUniqueAndIncreasing(t *testing.T) {
	g := newGraph(t)
	var prev knitgraph.LoopID = -1
	for i := 0; i < 20; i++ {
		l, err := g.NewLoop("yarn", false)
		require.NoError(t, err)
		assert.Greater(t, l.ID(), prev)
		prev = l.ID()
	}
	assert.Equal(t, 20, g.Len())

	y, ok := g.Yarn("yarn")
	require.True(t, ok)
	assert.Equal(t, g.LoopIDs(), y.Loops())
}

func TestGraph_AddYarnTwiceFails(t *testing.T) {
	g := newGraph(t)
	err := g.AddYarn(knitgraph.NewYarn("yarn"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, knitgraph.ErrDuplicateYarn))
}

func TestGraph_AddLoopRequiresYarn(t *testing.T) {
	g := knitgraph.New()
	_, err := g.NewLoop("missing", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, knitgraph.ErrYarnNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestGraph_AddLoopAppendsToYarnOnce(t *testing.T) {
	g := newGraph(t)
	l, err := knitgraph.NewLoop(5, "yarn", true)
	require.NoError(t, err)
	require.NoError(t, g.AddLoop(l))

	y, _ := g.Yarn("yarn")
	assert.Equal(t, []knitgraph.LoopID{5}, y.Loops())

	next, err := g.NewLoop("yarn", false)
	require.NoError(t, err)
	assert.Equal(t, knitgraph.LoopID(6), next.ID())

	assert.ErrorIs(t, g.AddLoop(l), knitgraph.ErrDuplicateLoop)
}

func TestGraph_AddLoopRejectsEarlierID(t *testing.T) {
	g := newGraph(t)
	late, err := knitgraph.NewLoop(5, "yarn", false)
	require.NoError(t, err)
	require.NoError(t, g.AddLoop(late))

	early, err := knitgraph.NewLoop(2, "yarn", false)
	require.NoError(t, err)
	err = g.AddLoop(early)
	require.ErrorIs(t, err, knitgraph.ErrLoopOrder)

	assert.False(t, g.Contains(2), "a rejected loop is not added")
	y, _ := g.Yarn("yarn")
	assert.Equal(t, []knitgraph.LoopID{5}, y.Loops())
}

func TestNewLoop_RejectsNegativeID(t *testing.T) {
	_, err := knitgraph.NewLoop(-1, "yarn", false)
	assert.ErrorIs(t, err, knitgraph.ErrInvalidLoopID)
}

func TestGraph_ConnectLoopsRequiresBothLoops(t *testing.T) {
	g := newGraph(t)
	l, err := g.NewLoop("yarn", false)
	require.NoError(t, err)

	err = g.Knit(l.ID(), 42)
	assert.ErrorIs(t, err, knitgraph.ErrLoopNotFound)
	err = g.Knit(42, l.ID())
	assert.ErrorIs(t, err, knitgraph.ErrLoopNotFound)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_ParentStackOrder(t *testing.T) {
	g := newGraph(t)
	ids := make([]knitgraph.LoopID, 4)
	for i := range ids {
		l, err := g.NewLoop("yarn", false)
		require.NoError(t, err)
		ids[i] = l.ID()
	}
	child := ids[3]

	t.Run("append by default", func(t *testing.T) {
		require.NoError(t, g.Knit(ids[0], child))
		require.NoError(t, g.Knit(ids[1], child))
		c, _ := g.Loop(child)
		assert.Equal(t, []knitgraph.LoopID{ids[0], ids[1]}, c.Parents())
	})

	t.Run("insert at stack position", func(t *testing.T) {
		require.NoError(t, g.ConnectLoops(ids[2], child, knitgraph.BtF, knitgraph.Placement{}.AtStack(0)))
		c, _ := g.Loop(child)
		assert.Equal(t, []knitgraph.LoopID{ids[2], ids[0], ids[1]}, c.Parents())

		edges := g.ParentEdges(child)
		require.Len(t, edges, 3)
		assert.Equal(t, ids[2], edges[0].Parent)
		require.NotNil(t, edges[0].Placement.StackPosition)
		assert.Equal(t, 0, *edges[0].Placement.StackPosition)
	})

	t.Run("negative stack position", func(t *testing.T) {
		err := g.ConnectLoops(ids[2], child, knitgraph.BtF, knitgraph.Placement{}.AtStack(-1))
		assert.ErrorIs(t, err, knitgraph.ErrStackPosition)
	})
}

func TestGraph_EdgeCarriesPullDirection(t *testing.T) {
	g := newGraph(t)
	p, _ := g.NewLoop("yarn", false)
	c, _ := g.NewLoop("yarn", false)
	require.NoError(t, g.ConnectLoops(p.ID(), c.ID(), knitgraph.FtB, knitgraph.Placement{ParentOffset: 1, Depth: -1}))

	e, ok := g.Edge(p.ID(), c.ID())
	require.True(t, ok)
	assert.Equal(t, knitgraph.FtB, e.Pull)
	assert.Equal(t, 1, e.Placement.ParentOffset)
	assert.Equal(t, -1, e.Placement.Depth)
	assert.Equal(t, []knitgraph.LoopID{c.ID()}, g.Children(p.ID()))
}

func TestParsePullDirection(t *testing.T) {
	for in, want := range map[string]knitgraph.PullDirection{"": knitgraph.BtF, "knit": knitgraph.BtF, "FtB": knitgraph.FtB, "purl": knitgraph.FtB} {
		got, err := knitgraph.ParsePullDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := knitgraph.ParsePullDirection("sideways")
	assert.Error(t, err)
	assert.Equal(t, knitgraph.FtB, knitgraph.BtF.Opposite())
}

func TestYarn_Adjacency(t *testing.T) {
	g := newGraph(t)
	a, _ := g.NewLoop("yarn", false)
	b, _ := g.NewLoop("yarn", false)
	y, _ := g.Yarn("yarn")

	next, ok := y.Next(a.ID())
	require.True(t, ok)
	assert.Equal(t, b.ID(), next)
	prev, ok := y.Prev(b.ID())
	require.True(t, ok)
	assert.Equal(t, a.ID(), prev)
	_, ok = y.Next(b.ID())
	assert.False(t, ok)
	last, _ := y.Last()
	assert.Equal(t, b.ID(), last)
}
