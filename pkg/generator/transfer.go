package generator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/knitout"
	"github.com/aretw0/knitout/pkg/machine"
)

// move brings one parent loop onto the needle its child is formed on.
type move struct {
	child  knitgraph.LoopID
	parent knitgraph.LoopID
	from   machine.Needle
	to     machine.Needle
	layer  int
	depth  int
}

func (m move) racking() int {
	if m.from.Front {
		return m.from.Position - m.to.Position
	}
	return m.to.Position - m.from.Position
}

// transfer stacks every parent of the course onto its child's target needle.
func (r *run) transfer(c int, loops []knitgraph.LoopID, targets map[knitgraph.LoopID]machine.Needle, ev *CourseEvent) error {
	moves, err := r.planMoves(c, loops, targets)
	if err != nil || len(moves) == 0 {
		return err
	}

	// park parents that move along their own bed on the opposite bed
	landing := make(map[machine.Needle]bool, len(targets))
	for _, n := range targets {
		landing[n] = true
	}
	park := make(map[int]map[machine.Needle]knitout.Params)
	parked := make(map[machine.Needle]bool)
	for i, m := range moves {
		if m.from.Front != m.to.Front {
			continue
		}
		dst, ok := r.parking(m, parked, landing)
		if !ok {
			return failLoop(c, m.parent, fmt.Errorf("%w: no parking needle at %s", ErrNeedleOccupied, m.from))
		}
		parked[dst] = true
		rk := move{from: m.from, to: dst}.racking()
		if park[rk] == nil {
			park[rk] = make(map[machine.Needle]knitout.Params)
		}
		park[rk][m.from] = knitout.Move(dst)
		moves[i].from = dst
	}
	rackings := make([]int, 0, len(park))
	for rk := range park {
		rackings = append(rackings, rk)
	}
	slices.SortFunc(rackings, func(a, b int) int {
		return cmp.Or(cmp.Compare(abs(a), abs(b)), cmp.Compare(a, b))
	})
	for _, rk := range rackings {
		if err := r.rackTo(c, rk, ev); err != nil {
			return err
		}
		if err := r.execute(c, knitout.Xfer, nil, park[rk], ""); err != nil {
			return err
		}
		ev.Transfers += len(park[rk])
	}

	slices.SortStableFunc(moves, func(a, b move) int {
		return cmp.Or(
			cmp.Compare(a.layer, b.layer),
			cmp.Compare(a.depth, b.depth),
			cmp.Compare(a.racking(), b.racking()),
		)
	})
	// a move waits until its target is vacated and the lower layers of
	// its stack have landed
	for len(moves) > 0 {
		first := -1
		for i, m := range moves {
			if r.ready(m, moves) {
				first = i
				break
			}
		}
		if first < 0 {
			for _, m := range moves {
				if err := r.checkTarget(c, m); err != nil {
					return err
				}
			}
			return failLoop(c, moves[0].child, fmt.Errorf("%w: no transfer order lands %s", ErrNeedleOccupied, moves[0].to))
		}
		key := moves[first]
		params := make(map[machine.Needle]knitout.Params)
		rest := moves[:0:0]
		for i, m := range moves {
			if i >= first && m.layer == key.layer && m.depth == key.depth &&
				m.racking() == key.racking() && r.ready(m, moves) {
				params[m.from] = knitout.Move(m.to)
				continue
			}
			rest = append(rest, m)
		}
		if err := r.rackTo(c, key.racking(), ev); err != nil {
			return err
		}
		if err := r.execute(c, knitout.Xfer, nil, params, ""); err != nil {
			return err
		}
		ev.Transfers += len(params)
		moves = rest
	}
	return r.rack(c, 0, 0, ev)
}

// parking picks a holding needle for a move along one bed: the opposite
// needle under the source or under the target, then their sliders. A needle
// another loop of the course lands on is never used, nor a slider whose main
// needle is one.
func (r *run) parking(m move, parked, landing map[machine.Needle]bool) (machine.Needle, bool) {
	candidates := []machine.Needle{
		m.from.Opposite(),
		m.to.Opposite(),
		m.from.OppositeSlider(),
		m.to.OppositeSlider(),
	}
	for _, n := range candidates {
		if n.Position < 0 || n.Position >= r.state.Width() {
			continue
		}
		if parked[n] || landing[n.Main()] || len(r.state.Loops(n)) > 0 {
			continue
		}
		if !n.Slider && !r.state.Clear(n) {
			continue
		}
		return n, true
	}
	return machine.Needle{}, false
}

// ready reports whether a move can run now.
func (r *run) ready(m move, pending []move) bool {
	for _, o := range pending {
		if o.child == m.child && o.layer < m.layer {
			return false
		}
	}
	l, _ := r.graph.Loop(m.child)
	parents := l.Parents()
	for _, held := range r.state.Loops(m.to) {
		if !slices.Contains(parents, held) {
			return false
		}
	}
	return r.state.Clear(m.to)
}

func (r *run) rackTo(c, racking int, ev *CourseEvent) error {
	return r.rack(c, racking, 0, ev)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (r *run) rack(c, front, back int, ev *CourseEvent) error {
	line, changed := knitout.Rack(r.state, front, back)
	if !changed {
		return nil
	}
	r.state.Emit(line)
	ev.Racks++
	return nil
}

// planMoves lists the parents that are not yet in place. Parents already
// stacked on the target in the right order stay; everything above them moves.
func (r *run) planMoves(c int, loops []knitgraph.LoopID, targets map[knitgraph.LoopID]machine.Needle) ([]move, error) {
	var moves []move
	for _, id := range loops {
		edges := r.graph.ParentEdges(id)
		if len(edges) == 0 {
			continue
		}
		to := targets[id]
		parents := make([]knitgraph.LoopID, len(edges))
		for i, e := range edges {
			parents[i] = e.Parent
		}

		stay := 0
		if held := r.state.Loops(to); len(held) > 0 && len(held) <= len(parents) && slices.Equal(held, parents[:len(held)]) {
			stay = len(held)
		}
		for k := stay; k < len(edges); k++ {
			from, _, err := r.state.NeedleOf(parents[k])
			if err != nil {
				return nil, failLoop(c, id, err)
			}
			if stack := r.state.Loops(from); len(stack) != 1 {
				return nil, failLoop(c, id, fmt.Errorf("%w: %s holds %v", ErrSharedStack, from, stack))
			}
			moves = append(moves, move{
				child:  id,
				parent: parents[k],
				from:   from,
				to:     to,
				layer:  k,
				depth:  edges[k].Placement.Depth,
			})
		}
	}
	return moves, nil
}

// checkTarget makes sure a move only lands on the child's own parents.
func (r *run) checkTarget(c int, m move) error {
	l, _ := r.graph.Loop(m.child)
	parents := l.Parents()
	for _, held := range r.state.Loops(m.to) {
		if !slices.Contains(parents, held) {
			return failLoop(c, m.child, fmt.Errorf("%w: %s holds loop %d", ErrNeedleOccupied, m.to, held))
		}
	}
	return nil
}
