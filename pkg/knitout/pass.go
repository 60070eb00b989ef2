package knitout

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/knitout/pkg/machine"
)

// CarriagePass is a set of same-type operations done in one carriage sweep.
// Build it, execute it on the machine.State, then discard it.
type CarriagePass struct {
	kind      InstructionType
	direction machine.PassDirection
	directed  bool
	params    map[machine.Needle]Params
	state     *machine.State
}

var _ machine.Pass = (*CarriagePass)(nil)

// NewCarriagePass resolves the pass direction and checks the needle order.
//
// A nil dir lets the type decide: drops go left to right, knit, split, tuck
// and miss sweep opposite to the machine's last direction, and transfers
// stay undirected.
func NewCarriagePass(kind InstructionType, dir *machine.PassDirection, params map[machine.Needle]Params, state *machine.State) (*CarriagePass, error) {
	if kind < Knit || kind > Xfer {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInstruction, int(kind))
	}
	p := &CarriagePass{kind: kind, params: params, state: state}
	switch {
	case dir != nil:
		if kind.LeftToRightOnly() && *dir != machine.LeftToRight {
			return nil, &AssemblyError{Type: kind, Err: ErrDirection, Param: dir.String()}
		}
		p.direction, p.directed = *dir, true
	case kind.LeftToRightOnly():
		p.direction, p.directed = machine.LeftToRight, true
	case kind.DirectionSensitive():
		p.direction, p.directed = state.LastDirection().Opposite(), true
	}

	if kind.DirectionSensitive() {
		seen := make(map[int]machine.Needle, len(params))
		for n := range params {
			if prior, ok := seen[n.Position]; ok {
				return nil, &AssemblyError{Type: kind, Needle: n, Err: ErrNeedleOrder, Param: "also " + prior.String()}
			}
			seen[n.Position] = n
		}
	}
	return p, nil
}

// Type is the instruction type of every needle in the pass.
func (p *CarriagePass) Type() InstructionType { return p.kind }

// Direction returns the sweep direction; ok is false for undirected transfers.
func (p *CarriagePass) Direction() (machine.PassDirection, bool) { return p.direction, p.directed }

// Len is the number of needles in the pass.
func (p *CarriagePass) Len() int { return len(p.params) }

// Needles returns the needles in the order they are visited.
func (p *CarriagePass) Needles() []machine.Needle {
	out := make([]machine.Needle, 0, len(p.params))
	for n := range p.params {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b machine.Needle) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		// front first, then main before slider, so the order is total
		switch {
		case a.Front != b.Front:
			if a.Front {
				return -1
			}
			return 1
		case a.Slider != b.Slider:
			if a.Slider {
				return 1
			}
			return -1
		}
		return 0
	})
	if p.directed && p.direction == machine.RightToLeft {
		slices.Reverse(out)
	}
	return out
}

// Carriers returns the carriers the pass feeds, in visiting order.
func (p *CarriagePass) Carriers() []machine.Carrier {
	var out []machine.Carrier
	for _, n := range p.Needles() {
		c := p.params[n].Carrier
		if c.IsZero() || slices.ContainsFunc(out, c.Equal) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// WriteInstructions applies the pass to the state and returns its lines.
//
// Feeders not yet in operation are hooked in before the first needle. The
// firstComment goes on the first needle instruction and comment on the
// rest. After the sweep every latched feeder that was not hooked in by this
// pass is released. A failing needle leaves the earlier ones applied;
// machine.State.Execute rolls them back.
func (p *CarriagePass) WriteInstructions(firstComment, comment string) ([]string, error) {
	var lines []string
	hooked := make(map[string]bool)
	for _, c := range p.Carriers() {
		for _, f := range p.state.NotInOperation(c) {
			if hooked[f.Key()] {
				continue
			}
			if err := p.state.InHook(f); err != nil {
				return nil, err
			}
			hooked[f.Key()] = true
			lines = append(lines, "inhook "+f.String())
		}
	}

	for i, n := range p.Needles() {
		params := p.params[n]
		params.Comment = comment
		if i == 0 {
			params.Comment = firstComment
		}
		line, err := p.write(n, params)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if p.directed {
		p.state.SetLastDirection(p.direction)
	}

	for _, c := range p.state.InHooks() {
		if hooked[c.Key()] {
			continue
		}
		p.state.ReleaseHook(c)
		lines = append(lines, "releasehook "+c.String())
	}
	return lines, nil
}

func (p *CarriagePass) missing(n machine.Needle, param string) error {
	return &AssemblyError{Type: p.kind, Needle: n, Err: ErrMissingParameter, Param: param}
}

func (p *CarriagePass) write(n machine.Needle, params Params) (string, error) {
	needYarn := p.kind.UsesYarn() && params.Carrier.IsZero()
	switch p.kind {
	case Knit, Tuck:
		if params.Loop == nil {
			return "", p.missing(n, "loop")
		}
		if needYarn {
			return "", p.missing(n, "carrier")
		}
		if err := p.state.AddLoop(*params.Loop, n, params.Carrier, p.kind == Knit); err != nil {
			return "", err
		}
		return withComment(p.kind.String()+" "+p.direction.String()+" "+n.String()+" "+params.Carrier.String(), params.Comment), nil

	case Split:
		switch {
		case params.Target == nil:
			return "", p.missing(n, "target needle")
		case params.Loop == nil:
			return "", p.missing(n, "loop")
		case needYarn:
			return "", p.missing(n, "carrier")
		}
		if len(p.state.Loops(n)) > 0 {
			if err := p.state.XferLoops(n, *params.Target); err != nil {
				return "", err
			}
		}
		if err := p.state.AddLoop(*params.Loop, n, params.Carrier, false); err != nil {
			return "", err
		}
		return withComment("split "+p.direction.String()+" "+n.String()+" "+params.Target.String()+" "+params.Carrier.String(), params.Comment), nil

	case Miss:
		if needYarn {
			return "", p.missing(n, "carrier")
		}
		if !p.state.InOperation(params.Carrier) {
			return "", &machine.CarrierError{Op: "miss", Carrier: params.Carrier, Err: machine.ErrCarrierNotInOperation}
		}
		return withComment("miss "+p.direction.String()+" "+n.String()+" "+params.Carrier.String(), params.Comment), nil

	case Drop:
		if err := p.state.DropLoop(n); err != nil {
			return "", err
		}
		return withComment("drop "+n.String(), params.Comment), nil

	case Xfer:
		if params.Target == nil {
			return "", p.missing(n, "target needle")
		}
		if err := p.state.XferLoops(n, *params.Target); err != nil {
			return "", err
		}
		return withComment("xfer "+n.String()+" "+params.Target.String(), params.Comment), nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownInstruction, int(p.kind))
}

func withComment(line, comment string) string {
	if comment == "" {
		return line
	}
	return line + " ;" + comment
}

// Rack updates the racking to align front and back. It returns the rack line
// and false when the racking was already set.
func Rack(state *machine.State, front, back int) (string, bool) {
	r, same := state.UpdateRack(front, back)
	if same {
		return "", false
	}
	return "rack " + strconv.Itoa(r), true
}

// OutHook takes the carrier out of operation and returns its line.
func OutHook(state *machine.State, c machine.Carrier) (string, error) {
	if err := state.OutHook(c); err != nil {
		return "", err
	}
	return "outhook " + c.String(), nil
}
