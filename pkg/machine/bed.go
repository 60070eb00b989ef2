package machine

import (
	"maps"
	"slices"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

// Bed is one needle bed. Each position has a main stack and a slider stack;
// a loop id sits in at most one of them.
type Bed struct {
	front  bool
	main   [][]knitgraph.LoopID
	slider [][]knitgraph.LoopID
	where  map[knitgraph.LoopID]Needle
}

func newBed(front bool, width int) *Bed {
	return &Bed{
		front:  front,
		main:   make([][]knitgraph.LoopID, width),
		slider: make([][]knitgraph.LoopID, width),
		where:  make(map[knitgraph.LoopID]Needle),
	}
}

// Front reports whether this is the front bed.
func (b *Bed) Front() bool { return b.front }

// Width is the number of needle positions.
func (b *Bed) Width() int { return len(b.main) }

func (b *Bed) inRange(pos int) bool { return pos >= 0 && pos < len(b.main) }

func (b *Bed) stack(n Needle) []knitgraph.LoopID {
	if n.Slider {
		return b.slider[n.Position]
	}
	return b.main[n.Position]
}

// Loops returns the stack held on the needle, bottom first.
func (b *Bed) Loops(n Needle) []knitgraph.LoopID {
	if !b.inRange(n.Position) {
		return nil
	}
	return slices.Clone(b.stack(n))
}

// NeedleOf returns the needle holding the loop.
func (b *Bed) NeedleOf(id knitgraph.LoopID) (Needle, bool) {
	n, ok := b.where[id]
	return n, ok
}

// Held returns the number of loops on the bed.
func (b *Bed) Held() int { return len(b.where) }

// Occupied returns the positions whose main needle holds loops, ascending.
func (b *Bed) Occupied() []int {
	var out []int
	for pos, s := range b.main {
		if len(s) > 0 {
			out = append(out, pos)
		}
	}
	return out
}

func (b *Bed) push(n Needle, ids ...knitgraph.LoopID) {
	if n.Slider {
		b.slider[n.Position] = append(b.slider[n.Position], ids...)
	} else {
		b.main[n.Position] = append(b.main[n.Position], ids...)
	}
	for _, id := range ids {
		b.where[id] = n
	}
}

func (b *Bed) clear(n Needle) {
	for _, id := range b.stack(n) {
		delete(b.where, id)
	}
	if n.Slider {
		b.slider[n.Position] = nil
	} else {
		b.main[n.Position] = nil
	}
}

func (b *Bed) drop(pos int) {
	b.clear(Needle{Front: b.front, Position: pos})
	b.clear(Needle{Front: b.front, Position: pos, Slider: true})
}

// snapshot copies every stack of the bed.
func (b *Bed) snapshot() Bed {
	c := Bed{
		front:  b.front,
		main:   make([][]knitgraph.LoopID, len(b.main)),
		slider: make([][]knitgraph.LoopID, len(b.slider)),
		where:  maps.Clone(b.where),
	}
	for i := range b.main {
		c.main[i] = slices.Clone(b.main[i])
		c.slider[i] = slices.Clone(b.slider[i])
	}
	return c
}
