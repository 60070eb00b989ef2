package knitgraph

import (
	"maps"
	"slices"
)

// Graph is the knit graph: an arena of loops indexed by id, the stitch edges
// between them, and the yarns that formed them.
// A Graph is not safe for concurrent mutation.
type Graph struct {
	loops    map[LoopID]*Loop
	children map[LoopID][]LoopID
	edges    map[edgeKey]Edge
	yarns    map[string]*Yarn
	lastID   LoopID
}

// New creates an empty knit graph.
func New() *Graph {
	return &Graph{
		loops:    make(map[LoopID]*Loop),
		children: make(map[LoopID][]LoopID),
		edges:    make(map[edgeKey]Edge),
		yarns:    make(map[string]*Yarn),
		lastID:   -1,
	}
}

// AddYarn registers a yarn under its name. Registering a name twice is an error.
func (g *Graph) AddYarn(y *Yarn) error {
	if _, ok := g.yarns[y.name]; ok {
		return &ConstructionError{Op: "add_yarn", Yarn: y.name, Err: ErrDuplicateYarn}
	}
	if y.index == nil {
		y.index = make(map[LoopID]int)
	}
	g.yarns[y.name] = y
	return nil
}

// NewLoop creates a loop with the next free id at the working end of the named yarn.
func (g *Graph) NewLoop(yarn string, twisted bool) (*Loop, error) {
	l := &Loop{id: g.lastID + 1, yarn: yarn, twisted: twisted}
	if err := g.AddLoop(l); err != nil {
		return nil, err
	}
	return l, nil
}

// AddLoop adds a loop as a node of the graph. The loop's yarn must already be
// registered; the loop is appended to the strand if the yarn does not hold it
// yet, which requires an id above every id already in the graph.
func (g *Graph) AddLoop(l *Loop) error {
	if l.id < 0 {
		return &ConstructionError{Op: "add_loop", Loop: l.id, Err: ErrInvalidLoopID}
	}
	y, ok := g.yarns[l.yarn]
	if !ok {
		return &ConstructionError{Op: "add_loop", Loop: l.id, Yarn: l.yarn, Err: ErrYarnNotFound}
	}
	if _, ok := g.loops[l.id]; ok {
		return &ConstructionError{Op: "add_loop", Loop: l.id, Err: ErrDuplicateLoop}
	}
	appended := !y.Contains(l.id)
	if appended && l.id <= g.lastID {
		return &ConstructionError{Op: "add_loop", Loop: l.id, Yarn: l.yarn, Err: ErrLoopOrder}
	}
	g.loops[l.id] = l
	if l.id > g.lastID {
		g.lastID = l.id
	}
	if appended {
		y.appendLoop(l.id)
	}
	return nil
}

// ConnectLoops creates a stitch edge: child is pulled through parent.
// The parent is pushed onto the child's parent stack, or inserted at
// placement.StackPosition when set.
func (g *Graph) ConnectLoops(parent, child LoopID, pull PullDirection, placement Placement) error {
	if _, ok := g.loops[parent]; !ok {
		return &ConstructionError{Op: "connect_loops", Parent: parent, Loop: child, Err: ErrLoopNotFound}
	}
	c, ok := g.loops[child]
	if !ok {
		return &ConstructionError{Op: "connect_loops", Parent: parent, Loop: child, Err: ErrLoopNotFound}
	}
	if err := c.addParent(parent, placement.StackPosition); err != nil {
		return &ConstructionError{Op: "connect_loops", Parent: parent, Loop: child, Err: err}
	}
	g.edges[edgeKey{parent, child}] = Edge{Parent: parent, Child: child, Pull: pull, Placement: placement}
	g.children[parent] = append(g.children[parent], child)
	return nil
}

// Knit connects parent and child with a plain back-to-front stitch.
func (g *Graph) Knit(parent, child LoopID) error {
	return g.ConnectLoops(parent, child, BtF, Placement{})
}

// Contains reports whether the loop id is a node of the graph.
func (g *Graph) Contains(id LoopID) bool {
	_, ok := g.loops[id]
	return ok
}

// Loop returns the loop with the given id.
func (g *Graph) Loop(id LoopID) (*Loop, bool) {
	l, ok := g.loops[id]
	return l, ok
}

// Len returns the number of loops.
func (g *Graph) Len() int { return len(g.loops) }

// LoopIDs returns every loop id in creation order.
func (g *Graph) LoopIDs() []LoopID {
	return slices.Sorted(maps.Keys(g.loops))
}

// Yarn returns the named yarn.
func (g *Graph) Yarn(name string) (*Yarn, bool) {
	y, ok := g.yarns[name]
	return y, ok
}

// Yarns returns the yarns sorted by name.
func (g *Graph) Yarns() []*Yarn {
	names := slices.Sorted(maps.Keys(g.yarns))
	out := make([]*Yarn, 0, len(names))
	for _, n := range names {
		out = append(out, g.yarns[n])
	}
	return out
}

// Edge returns the stitch edge between parent and child.
func (g *Graph) Edge(parent, child LoopID) (Edge, bool) {
	e, ok := g.edges[edgeKey{parent, child}]
	return e, ok
}

// ParentEdges returns the edges into child ordered by the child's parent stack, bottom first.
func (g *Graph) ParentEdges(child LoopID) []Edge {
	c, ok := g.loops[child]
	if !ok {
		return nil
	}
	out := make([]Edge, 0, len(c.parents))
	for _, p := range c.parents {
		out = append(out, g.edges[edgeKey{p, child}])
	}
	return out
}

// Children returns the loops pulled through id, in connection order.
func (g *Graph) Children(id LoopID) []LoopID {
	return slices.Clone(g.children[id])
}

// EdgeCount returns the number of stitch edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
