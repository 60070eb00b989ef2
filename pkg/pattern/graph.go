package pattern

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

// GraphDocument is an explicit knit graph.
type GraphDocument struct {
	Name  string     `yaml:"name,omitempty" json:"name,omitempty"`
	Yarns []YarnSpec `yaml:"yarns" json:"yarns"`
	Loops []LoopSpec `yaml:"loops" json:"loops"`
	Edges []EdgeSpec `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// YarnSpec declares a yarn and, optionally, the carrier feeding it.
type YarnSpec struct {
	Name    string `yaml:"name" json:"name"`
	Carrier []int  `yaml:"carrier,omitempty" json:"carrier,omitempty"`
}

// LoopSpec declares a loop. Loops are added in document order, which is
// the order they sit along their yarn.
type LoopSpec struct {
	ID      int    `yaml:"id" json:"id"`
	Yarn    string `yaml:"yarn" json:"yarn"`
	Twisted bool   `yaml:"twisted,omitempty" json:"twisted,omitempty"`
}

// EdgeSpec declares a stitch. Edges into the same child push parents onto
// its stack in document order unless Stack says otherwise.
type EdgeSpec struct {
	Parent int    `yaml:"parent" json:"parent"`
	Child  int    `yaml:"child" json:"child"`
	Pull   string `yaml:"pull,omitempty" json:"pull,omitempty"`
	Offset int    `yaml:"offset,omitempty" json:"offset,omitempty"`
	Depth  int    `yaml:"depth,omitempty" json:"depth,omitempty"`
	Stack  *int   `yaml:"stack,omitempty" json:"stack,omitempty"`
}

func (d *GraphDocument) Kind() Kind { return KindGraph }

func (d *GraphDocument) Title() string {
	if d.Name == "" {
		return "graph"
	}
	return d.Name
}

// Graph builds the knit graph the document describes.
func (d *GraphDocument) Graph() (*knitgraph.Graph, error) {
	if len(d.Yarns) == 0 {
		return nil, fmt.Errorf("%w: no yarns", ErrInvalidDocument)
	}
	g := knitgraph.New()
	for _, y := range d.Yarns {
		if err := g.AddYarn(knitgraph.NewYarn(y.Name, y.Carrier...)); err != nil {
			return nil, err
		}
	}
	// ids give the order loops were formed in
	loops := slices.Clone(d.Loops)
	slices.SortStableFunc(loops, func(a, b LoopSpec) int { return cmp.Compare(a.ID, b.ID) })
	for _, spec := range loops {
		l, err := knitgraph.NewLoop(knitgraph.LoopID(spec.ID), spec.Yarn, spec.Twisted)
		if err != nil {
			return nil, err
		}
		if err := g.AddLoop(l); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Edges {
		pull, err := knitgraph.ParsePullDirection(e.Pull)
		if err != nil {
			return nil, fmt.Errorf("edge %d -> %d: %w", e.Parent, e.Child, err)
		}
		placement := knitgraph.Placement{ParentOffset: e.Offset, Depth: e.Depth}
		if e.Stack != nil {
			placement = placement.AtStack(*e.Stack)
		}
		if err := g.ConnectLoops(knitgraph.LoopID(e.Parent), knitgraph.LoopID(e.Child), pull, placement); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromGraph describes g as a document. Edges are listed child by child in
// stack order, so rebuilding needs no stack positions.
func FromGraph(name string, g *knitgraph.Graph) *GraphDocument {
	doc := &GraphDocument{Name: name}
	for _, y := range g.Yarns() {
		doc.Yarns = append(doc.Yarns, YarnSpec{Name: y.Name(), Carrier: y.Carrier})
	}
	for _, id := range g.LoopIDs() {
		l, _ := g.Loop(id)
		doc.Loops = append(doc.Loops, LoopSpec{ID: int(id), Yarn: l.Yarn(), Twisted: l.Twisted()})
	}
	for _, id := range g.LoopIDs() {
		for _, e := range g.ParentEdges(id) {
			spec := EdgeSpec{
				Parent: int(e.Parent),
				Child:  int(e.Child),
				Offset: e.Placement.ParentOffset,
				Depth:  e.Placement.Depth,
			}
			if e.Pull != knitgraph.BtF {
				spec.Pull = e.Pull.String()
			}
			doc.Edges = append(doc.Edges, spec)
		}
	}
	return doc
}
