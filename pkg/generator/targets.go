package generator

import (
	"fmt"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/machine"
)

// anchor is the parent edge that fixes where a loop is formed: the first
// parent without an offset, else the bottom of the stack.
func anchor(edges []knitgraph.Edge) knitgraph.Edge {
	for _, e := range edges {
		if e.Placement.ParentOffset == 0 {
			return e
		}
	}
	return edges[0]
}

// targets picks the needle each loop of the course is formed on.
// loops must be in needle order, left to right.
func (r *run) targets(c int, loops []knitgraph.LoopID) (map[knitgraph.LoopID]machine.Needle, error) {
	const unset = -1
	width := r.state.Width()
	out := make(map[knitgraph.LoopID]machine.Needle, len(loops))
	taken := make(map[int]knitgraph.LoopID, len(loops))
	pos := make([]int, len(loops))

	claim := func(i, p int, front bool) error {
		id := loops[i]
		if p < 0 || p >= width {
			return failLoop(c, id, fmt.Errorf("%w: position %d", ErrOutOfBed, p))
		}
		if other, ok := taken[p]; ok {
			return failLoop(c, id, fmt.Errorf("%w: position %d also needed by loop %d", ErrTargetConflict, p, other))
		}
		taken[p] = id
		pos[i] = p
		out[id] = machine.Needle{Front: front, Position: p}
		return nil
	}

	first := unset
	for i, id := range loops {
		pos[i] = unset
		edges := r.graph.ParentEdges(id)
		if len(edges) == 0 {
			continue
		}
		for _, e := range edges {
			if _, ok, err := r.state.NeedleOf(e.Parent); err != nil {
				return nil, failLoop(c, id, err)
			} else if !ok {
				return nil, failLoop(c, id, fmt.Errorf("%w: %d", ErrParentNotHeld, e.Parent))
			}
		}
		a := anchor(edges)
		held, _, _ := r.state.NeedleOf(a.Parent)
		if err := claim(i, held.Position+a.Placement.ParentOffset, a.Pull == knitgraph.BtF); err != nil {
			return nil, err
		}
		if first == unset {
			first = i
		}
	}

	if first == unset {
		// nothing to anchor to: lay the course out from the left edge
		for i := range loops {
			if err := claim(i, i, true); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	// yarn-overs before the first anchored loop fill leftwards
	for i := first - 1; i >= 0; i-- {
		p := pos[i+1] - 1
		for _, ok := taken[p]; ok && p >= 0; _, ok = taken[p] {
			p--
		}
		if p < 0 {
			return nil, failLoop(c, loops[i], ErrNoRoom)
		}
		if err := claim(i, p, true); err != nil {
			return nil, err
		}
	}
	// the rest fill rightwards up to the next anchored loop
	for i := first + 1; i < len(loops); i++ {
		if pos[i] != unset {
			continue
		}
		right := width
		for j := i + 1; j < len(loops); j++ {
			if pos[j] != unset {
				right = pos[j]
				break
			}
		}
		p := pos[i-1] + 1
		for _, ok := taken[p]; ok && p < right; _, ok = taken[p] {
			p++
		}
		if p >= right {
			return nil, failLoop(c, loops[i], ErrNoRoom)
		}
		if err := claim(i, p, true); err != nil {
			return nil, err
		}
	}
	return out, nil
}
