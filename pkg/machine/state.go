package machine

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

// Pass is a batch of instructions written in one carriage sweep.
type Pass interface {
	// Len is the number of needles the pass touches.
	Len() int
	// WriteInstructions applies the pass to the state and returns its knitout lines.
	WriteInstructions(firstComment, comment string) ([]string, error)
}

// State is the simulated machine. It is owned by a single compilation and is
// not safe for concurrent use.
type State struct {
	cfg         Config
	front, back *Bed
	racking     int
	last        PassDirection
	inHooks     map[int]bool
	inOperation map[int]bool
	positions   map[string]int
	log         []string
	passes      []Pass
}

// NewState creates an empty machine with the header already in the log.
// The carriage is assumed to have last travelled left to right.
func NewState(cfg Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &State{
		cfg:         cfg,
		front:       newBed(true, cfg.Width),
		back:        newBed(false, cfg.Width),
		last:        LeftToRight,
		inHooks:     make(map[int]bool),
		inOperation: make(map[int]bool),
		positions:   make(map[string]int),
		log:         cfg.Header(),
	}, nil
}

// Config returns the machine description.
func (s *State) Config() Config { return s.cfg }

// Width is the number of needles on each bed.
func (s *State) Width() int { return s.cfg.Width }

// Front returns the front bed.
func (s *State) Front() *Bed { return s.front }

// Back returns the back bed.
func (s *State) Back() *Bed { return s.back }

func (s *State) bed(n Needle) *Bed {
	if n.Front {
		return s.front
	}
	return s.back
}

// Racking is the current front minus back offset.
func (s *State) Racking() int { return s.racking }

// LastDirection is the direction of the most recent directed pass.
func (s *State) LastDirection() PassDirection { return s.last }

// SetLastDirection records the direction of a completed pass.
func (s *State) SetLastDirection(d PassDirection) { s.last = d }

// Loops returns the loops held on the needle, bottom first.
func (s *State) Loops(n Needle) []knitgraph.LoopID { return s.bed(n).Loops(n) }

// Clear reports whether the needle can take part in a transfer: a slider is
// always clear, a main needle is clear when its slider is empty.
func (s *State) Clear(n Needle) bool {
	if n.Slider {
		return true
	}
	return len(s.bed(n).stack(n.SliderOf())) == 0
}

func (s *State) checkRange(op string, n Needle) error {
	if !s.bed(n).inRange(n.Position) {
		return &TopologyError{Op: op, Needle: n, Err: ErrOutOfRange}
	}
	return nil
}

// NeedleOf finds the needle holding a loop. A loop on both beds is an error.
func (s *State) NeedleOf(id knitgraph.LoopID) (Needle, bool, error) {
	f, onFront := s.front.NeedleOf(id)
	b, onBack := s.back.NeedleOf(id)
	switch {
	case onFront && onBack:
		return f, true, &TopologyError{Op: "find", Needle: f, Target: &b, Loop: &id, Err: ErrLoopOnBothBeds}
	case onFront:
		return f, true, nil
	case onBack:
		return b, true, nil
	}
	return Needle{}, false, nil
}

// AddLoop places a loop on a needle. With dropPrior the needle's existing
// loops are dropped first, as a knit does; otherwise the loop is stacked on
// top, as a tuck does. A non-zero carrier must already be in operation.
func (s *State) AddLoop(id knitgraph.LoopID, n Needle, c Carrier, dropPrior bool) error {
	if err := s.checkRange("add", n); err != nil {
		return err
	}
	if dropPrior && n.Slider {
		return &TopologyError{Op: "knit", Needle: n, Loop: &id, Err: ErrSliderKnit}
	}
	if !c.IsZero() && !s.InOperation(c) {
		return &CarrierError{Op: "add", Carrier: c, Err: ErrCarrierNotInOperation}
	}
	if held, ok, err := s.NeedleOf(id); err != nil {
		return err
	} else if ok {
		return &TopologyError{Op: "add", Needle: n, Target: &held, Loop: &id, Err: ErrLoopHeld}
	}

	b := s.bed(n)
	if dropPrior {
		b.clear(n)
	}
	b.push(n, id)
	if !c.IsZero() {
		s.positions[c.Key()] = n.Position
	}
	return nil
}

// DropLoop clears the main and slider stacks at the needle's position.
func (s *State) DropLoop(n Needle) error {
	if err := s.checkRange("drop", n); err != nil {
		return err
	}
	s.bed(n).drop(n.Position)
	return nil
}

// XferLoops moves the whole stack on start onto end, keeping its order.
// The needles must face each other at the current racking, both must be
// clear, and start must hold at least one loop.
func (s *State) XferLoops(start, end Needle) error {
	if err := s.checkRange("xfer", start); err != nil {
		return err
	}
	if err := s.checkRange("xfer", end); err != nil {
		return err
	}
	fail := func(err error) error {
		return &TopologyError{Op: "xfer", Needle: start, Target: &end, Racking: s.racking, Err: err}
	}
	if start.Front == end.Front {
		return fail(ErrSameBed)
	}
	front, back := start, end
	if !start.Front {
		front, back = end, start
	}
	if !s.ValidRack(front.Position, back.Position) {
		return fail(ErrBadRacking)
	}
	if !s.Clear(start) {
		return fail(ErrNotClear)
	}
	from := s.bed(start)
	loops := slices.Clone(from.stack(start))
	if len(loops) == 0 {
		return fail(ErrEmptyNeedle)
	}
	if !s.Clear(end) {
		return fail(ErrNotClear)
	}

	from.clear(start)
	s.bed(end).push(end, loops...)
	return nil
}

// UpdateRack sets the racking that aligns front and back and reports whether
// it was already set.
func (s *State) UpdateRack(front, back int) (int, bool) {
	prior := s.racking
	s.racking = front - back
	return s.racking, prior == s.racking
}

// ValidRack reports whether the current racking aligns the two positions.
func (s *State) ValidRack(front, back int) bool { return s.racking == front-back }

func (s *State) checkCarrier(op string, c Carrier) error {
	if c.IsZero() {
		return &CarrierError{Op: op, Err: ErrNoCarrier}
	}
	for _, id := range c.ids {
		if id > s.cfg.Carriers {
			return &CarrierError{Op: op, Carrier: c, Err: fmt.Errorf("%w: %d", ErrCarrierRange, id)}
		}
	}
	return nil
}

// InHook latches every feeder of the carrier and puts it in operation.
func (s *State) InHook(c Carrier) error {
	if err := s.checkCarrier("inhook", c); err != nil {
		return err
	}
	for _, id := range c.ids {
		s.inHooks[id] = true
		s.inOperation[id] = true
	}
	return nil
}

// ReleaseHook unlatches the carrier. It stays in operation.
func (s *State) ReleaseHook(c Carrier) {
	for _, id := range c.ids {
		delete(s.inHooks, id)
	}
}

// OutHook takes every feeder of the carrier out of operation.
func (s *State) OutHook(c Carrier) error {
	if err := s.checkCarrier("outhook", c); err != nil {
		return err
	}
	if !s.InOperation(c) {
		return &CarrierError{Op: "outhook", Carrier: c, Err: ErrCarrierNotInOperation}
	}
	for _, id := range c.ids {
		delete(s.inOperation, id)
		delete(s.inHooks, id)
	}
	delete(s.positions, c.Key())
	return nil
}

// InOperation reports whether every feeder of the carrier is in operation.
func (s *State) InOperation(c Carrier) bool {
	for _, id := range c.ids {
		if !s.inOperation[id] {
			return false
		}
	}
	return !c.IsZero()
}

// NotInOperation returns the feeders of c that still need to be brought in.
func (s *State) NotInOperation(c Carrier) []Carrier {
	var out []Carrier
	for _, f := range c.Feeders() {
		if !s.inOperation[f.ids[0]] {
			out = append(out, f)
		}
	}
	return out
}

// InHooks returns the latched feeders, ascending.
func (s *State) InHooks() []Carrier {
	ids := slices.Sorted(maps.Keys(s.inHooks))
	out := make([]Carrier, len(ids))
	for i, id := range ids {
		out[i] = Carrier{ids: []int{id}}
	}
	return out
}

// Operating returns the feeders in operation, ascending.
func (s *State) Operating() []Carrier {
	ids := slices.Sorted(maps.Keys(s.inOperation))
	out := make([]Carrier, len(ids))
	for i, id := range ids {
		out[i] = Carrier{ids: []int{id}}
	}
	return out
}

// CarrierPosition is the last needle position the carrier fed.
func (s *State) CarrierPosition(c Carrier) (int, bool) {
	pos, ok := s.positions[c.Key()]
	return pos, ok
}

// Emit appends lines that are not part of a carriage pass, such as rack.
func (s *State) Emit(lines ...string) {
	s.log = append(s.log, lines...)
}

// Execute writes a pass and appends its lines to the log. Empty passes are
// skipped. On error nothing is appended and the beds, hooks and carriage
// direction are put back as they were before the pass.
func (s *State) Execute(p Pass, firstComment, comment string) error {
	if p.Len() == 0 {
		return nil
	}
	restore := s.checkpoint()
	lines, err := p.WriteInstructions(firstComment, comment)
	if err != nil {
		restore()
		return err
	}
	s.passes = append(s.passes, p)
	s.log = append(s.log, lines...)
	return nil
}

// checkpoint records everything a pass can change and returns a func that
// puts it back. Beds are restored in place so callers' *Bed stay valid.
func (s *State) checkpoint() func() {
	front, back := s.front.snapshot(), s.back.snapshot()
	racking, last := s.racking, s.last
	inHooks, inOperation := maps.Clone(s.inHooks), maps.Clone(s.inOperation)
	positions := maps.Clone(s.positions)
	return func() {
		*s.front, *s.back = front, back
		s.racking, s.last = racking, last
		s.inHooks, s.inOperation, s.positions = inHooks, inOperation, positions
	}
}

// Passes returns the executed passes in order.
func (s *State) Passes() []Pass { return slices.Clone(s.passes) }

// Instructions returns the log, header first.
func (s *State) Instructions() []string { return slices.Clone(s.log) }

// WriteTo writes the log, one instruction per line.
func (s *State) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range s.log {
		n, err := io.WriteString(w, line+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
