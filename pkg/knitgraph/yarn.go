package knitgraph

import "slices"

// Yarn is a continuous strand. Its loop order is the path the strand takes
// through the fabric, which is also the order the loops were formed in.
type Yarn struct {
	name string
	// Carrier lists the feeder ids that supply this yarn. Empty means the
	// generator chooses one. More than one id plates the yarns together.
	Carrier []int
	loops   []LoopID
	index   map[LoopID]int
}

// NewYarn creates an empty yarn.
func NewYarn(name string, carrier ...int) *Yarn {
	return &Yarn{
		name:    name,
		Carrier: carrier,
		index:   make(map[LoopID]int),
	}
}

// Name returns the yarn name.
func (y *Yarn) Name() string { return y.name }

// Loops returns the loops along the strand, in formation order.
func (y *Yarn) Loops() []LoopID { return slices.Clone(y.loops) }

// Len returns the number of loops on the yarn.
func (y *Yarn) Len() int { return len(y.loops) }

// Contains reports whether the loop lies on this yarn.
func (y *Yarn) Contains(id LoopID) bool {
	_, ok := y.index[id]
	return ok
}

// Last returns the loop at the working end of the strand.
func (y *Yarn) Last() (LoopID, bool) {
	if len(y.loops) == 0 {
		return 0, false
	}
	return y.loops[len(y.loops)-1], true
}

// Next returns the loop that follows id on the strand.
func (y *Yarn) Next(id LoopID) (LoopID, bool) {
	i, ok := y.index[id]
	if !ok || i+1 >= len(y.loops) {
		return 0, false
	}
	return y.loops[i+1], true
}

// Prev returns the loop that precedes id on the strand.
func (y *Yarn) Prev(id LoopID) (LoopID, bool) {
	i, ok := y.index[id]
	if !ok || i == 0 {
		return 0, false
	}
	return y.loops[i-1], true
}

// appendLoop extends the working end of the strand.
func (y *Yarn) appendLoop(id LoopID) {
	if y.index == nil {
		y.index = make(map[LoopID]int)
	}
	y.index[id] = len(y.loops)
	y.loops = append(y.loops, id)
}
