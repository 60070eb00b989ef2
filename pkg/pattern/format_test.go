package pattern_test

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ribYAML = `
name: rib
width: 4
height: 3
carrier: [5]
variables:
  rib: 2
rows:
  - "k{rib} p{rib}"
  - "k{rib} p{rib}"
`

const graphJSON = `{
  "yarns": [{"name": "main", "carrier": [4]}],
  "loops": [
    {"id": 0, "yarn": "main"},
    {"id": 1, "yarn": "main"},
    {"id": 2, "yarn": "main"}
  ],
  "edges": [
    {"parent": 1, "child": 2},
    {"parent": 0, "child": 2, "pull": "purl", "offset": 1, "stack": 0}
  ]
}`

func TestParse_DetectsKind(t *testing.T) {
	doc, err := pattern.Parse([]byte(ribYAML), pattern.YAML)
	require.NoError(t, err)
	assert.Equal(t, pattern.KindRows, doc.Kind())
	assert.Equal(t, "rib", doc.Title())

	g, err := doc.Graph()
	require.NoError(t, err)
	assert.Equal(t, 12, g.Len())
	y, _ := g.Yarn(pattern.DefaultYarn)
	assert.Equal(t, []int{5}, y.Carrier)

	doc, err = pattern.Parse([]byte(graphJSON), pattern.JSON)
	require.NoError(t, err)
	assert.Equal(t, pattern.KindGraph, doc.Kind())

	g, err = doc.Graph()
	require.NoError(t, err)
	child, _ := g.Loop(2)
	assert.Equal(t, []knitgraph.LoopID{0, 1}, child.Parents())
	e, _ := g.Edge(0, 2)
	assert.Equal(t, knitgraph.FtB, e.Pull)
	assert.Equal(t, 1, e.Placement.ParentOffset)
}

func TestParse_Rejects(t *testing.T) {
	_, err := pattern.Parse([]byte("width: 3\n"), pattern.YAML)
	assert.ErrorIs(t, err, pattern.ErrUnknownDocument)

	_, err = pattern.Parse([]byte("width: 3\nrows: [k*]\ncolour: red\n"), pattern.YAML)
	assert.Error(t, err, "unknown fields are rejected")

	_, err = pattern.Parse([]byte("{"), pattern.JSON)
	assert.Error(t, err)
}

func TestGraphDocument_Errors(t *testing.T) {
	_, err := (&pattern.GraphDocument{}).Graph()
	assert.ErrorIs(t, err, pattern.ErrInvalidDocument)

	doc := &pattern.GraphDocument{
		Yarns: []pattern.YarnSpec{{Name: "y"}},
		Loops: []pattern.LoopSpec{{ID: 0, Yarn: "y"}},
		Edges: []pattern.EdgeSpec{{Parent: 0, Child: 9}},
	}
	_, err = doc.Graph()
	assert.ErrorIs(t, err, knitgraph.ErrLoopNotFound)

	doc.Edges[0] = pattern.EdgeSpec{Parent: 0, Child: 0, Pull: "sideways"}
	_, err = doc.Graph()
	assert.ErrorContains(t, err, "sideways")
}

func TestGraphDocument_LoopsFollowIDs(t *testing.T) {
	doc := &pattern.GraphDocument{
		Yarns: []pattern.YarnSpec{{Name: "y"}},
		Loops: []pattern.LoopSpec{{ID: 5, Yarn: "y"}, {ID: 2, Yarn: "y"}, {ID: 3, Yarn: "y"}},
		Edges: []pattern.EdgeSpec{{Parent: 2, Child: 5}},
	}
	g, err := doc.Graph()
	require.NoError(t, err)

	y, _ := g.Yarn("y")
	assert.Equal(t, []knitgraph.LoopID{2, 3, 5}, y.Loops())
	assert.Equal(t, []knitgraph.LoopID{2, 3, 5}, g.LoopIDs())
	assert.Equal(t, pattern.LoopSpec{ID: 5, Yarn: "y"}, doc.Loops[0], "the document is left as written")
}

func TestFromGraph_RoundTrip(t *testing.T) {
	src, err := pattern.Parse([]byte(graphJSON), pattern.JSON)
	require.NoError(t, err)
	g, err := src.Graph()
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"graph.yaml", "graph.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, pattern.Save(path, pattern.FromGraph("copy", g)))

			loaded, err := pattern.Load(path)
			require.NoError(t, err)
			assert.Equal(t, "copy", loaded.Title())

			back, err := loaded.Graph()
			require.NoError(t, err)
			assert.Equal(t, g.LoopIDs(), back.LoopIDs())
			assert.Equal(t, g.EdgeCount(), back.EdgeCount())
			child, _ := back.Loop(2)
			assert.Equal(t, []knitgraph.LoopID{0, 1}, child.Parents())
			e, _ := back.Edge(0, 2)
			assert.Equal(t, knitgraph.FtB, e.Pull)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, pattern.JSON, pattern.FormatOf("a/b.JSON"))
	assert.Equal(t, pattern.YAML, pattern.FormatOf("b.yml"))
	assert.Equal(t, pattern.YAML, pattern.FormatOf("b"))

	f, err := pattern.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, pattern.JSON, f)
	_, err = pattern.ParseFormat("toml")
	assert.Error(t, err)
}
