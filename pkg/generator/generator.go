package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/knitout"
	"github.com/aretw0/knitout/pkg/machine"
)

// Generator compiles one knit graph. It may be reused; every call to
// Generate simulates a fresh machine.
type Generator struct {
	graph    *knitgraph.Graph
	config   machine.Config
	carrier  machine.Carrier
	outhook  bool
	drop     bool
	comments bool
	hooks    Hooks
	logger   *slog.Logger
}

// New creates a generator for the graph.
func New(graph *knitgraph.Graph, opts ...Option) *Generator {
	g := &Generator{
		graph:   graph,
		config:  machine.DefaultConfig(),
		carrier: machine.MustCarrier(machine.DefaultCarrier),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return g
}

// run is the state of one compilation.
type run struct {
	*Generator
	ctx      context.Context
	state    *machine.State
	courses  *knitgraph.Courses
	carriers map[string]machine.Carrier
	program  *Program
}

// Generate compiles the graph. The context is checked between courses.
func (g *Generator) Generate(ctx context.Context) (*Program, error) {
	start := time.Now()
	courses, err := g.graph.Courses()
	if err != nil {
		return nil, failCourse(-1, err)
	}
	state, err := machine.NewState(g.config)
	if err != nil {
		return nil, failCourse(-1, err)
	}
	carriers, err := g.assignCarriers()
	if err != nil {
		return nil, failCourse(-1, err)
	}

	r := &run{
		Generator: g,
		ctx:       ctx,
		state:     state,
		courses:   courses,
		carriers:  carriers,
		program: &Program{
			state:    state,
			Courses:  courses,
			Carriers: carriers,
			Formed:   make(map[knitgraph.LoopID]machine.Needle, g.graph.Len()),
		},
	}

	for c, loops := range courses.Loops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c == 0 {
			err = r.castOn(loops)
		} else {
			err = r.course(c, loops)
		}
		if err != nil {
			g.logger.Error("generation failed", "course", c, "err", err)
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}

	stats := r.program.Stats()
	g.logger.Info("program generated",
		"courses", courses.Len(),
		"loops", g.graph.Len(),
		"passes", stats.Passes,
		"xfers", stats.Xfers,
		"duration", time.Since(start),
	)
	return r.program, nil
}

// assignCarriers maps every yarn to a carrier. Yarns that name their feeders
// keep them; the others take the default carrier, then the next free feeders.
func (g *Generator) assignCarriers() (map[string]machine.Carrier, error) {
	out := make(map[string]machine.Carrier)
	used := make(map[int]bool)
	var pending []string
	for _, y := range g.graph.Yarns() {
		if len(y.Carrier) == 0 {
			pending = append(pending, y.Name())
			continue
		}
		c, err := machine.NewCarrier(y.Carrier...)
		if err != nil {
			return nil, fmt.Errorf("yarn %q: %w", y.Name(), err)
		}
		out[y.Name()] = c
		for _, id := range c.IDs() {
			used[id] = true
		}
	}

	next := g.carrier
	for _, name := range pending {
		for slices.ContainsFunc(next.IDs(), func(id int) bool { return used[id] }) {
			ids := next.IDs()
			id := ids[len(ids)-1] + 1
			if id > g.config.Carriers {
				return nil, fmt.Errorf("yarn %q: %w", name, ErrOutOfCarriers)
			}
			next = machine.MustCarrier(id)
		}
		out[name] = next
		for _, id := range next.IDs() {
			used[id] = true
		}
	}
	return out, nil
}

func (r *run) carrierOf(id knitgraph.LoopID) machine.Carrier {
	l, _ := r.graph.Loop(id)
	return r.carriers[l.Yarn()]
}

func (r *run) comment(c int) string {
	if !r.comments {
		return ""
	}
	if c == 0 {
		return "cast-on"
	}
	return "course " + strconv.Itoa(c)
}

// execute builds a pass, writes it, and records it.
func (r *run) execute(course int, kind knitout.InstructionType, dir *machine.PassDirection, params map[machine.Needle]knitout.Params, comment string) error {
	if len(params) == 0 {
		return nil
	}
	p, err := knitout.NewCarriagePass(kind, dir, params, r.state)
	if err != nil {
		return failCourse(course, err)
	}
	if err := r.state.Execute(p, comment, ""); err != nil {
		return failCourse(course, err)
	}

	ev := PassEvent{Course: course, Type: kind, Needles: p.Len(), Racking: r.state.Racking()}
	if d, ok := p.Direction(); ok {
		ev.Direction = d.String()
	}
	r.program.passes = append(r.program.passes, ev)
	if r.hooks.OnPass != nil {
		r.hooks.OnPass(r.ctx, &ev)
	}
	r.logger.Debug("pass written", "course", course, "type", kind.String(), "direction", ev.Direction, "needles", ev.Needles)
	return nil
}

// castOn forms course 0 on consecutive front needles: a right-to-left tuck
// pass over the odd positions, then a left-to-right pass over the even ones.
func (r *run) castOn(loops []knitgraph.LoopID) error {
	if len(loops) > r.state.Width() {
		return failCourse(0, fmt.Errorf("%w: cast-on of %d loops on %d needles", ErrOutOfBed, len(loops), r.state.Width()))
	}
	odd := make(map[machine.Needle]knitout.Params)
	even := make(map[machine.Needle]knitout.Params)
	for pos, id := range loops {
		n := machine.FrontNeedle(pos)
		if pos%2 == 1 {
			odd[n] = knitout.Make(id, r.carrierOf(id))
		} else {
			even[n] = knitout.Make(id, r.carrierOf(id))
		}
		r.program.Formed[id] = n
	}

	rtl, ltr := machine.RightToLeft, machine.LeftToRight
	first := r.comment(0)
	if len(odd) > 0 {
		if err := r.execute(0, knitout.Tuck, &rtl, odd, first); err != nil {
			return err
		}
		first = ""
	}
	if err := r.execute(0, knitout.Tuck, &ltr, even, first); err != nil {
		return err
	}
	r.courseDone(&CourseEvent{Course: 0, Loops: len(loops)})
	return nil
}

// course compiles one course after the cast-on.
func (r *run) course(c int, loops []knitgraph.LoopID) error {
	dir := machine.LeftToRight
	if c%2 == 1 {
		dir = machine.RightToLeft
	}

	targets, err := r.targets(c, loops)
	if err != nil {
		return err
	}
	ev := &CourseEvent{Course: c, Loops: len(loops)}
	if err := r.transfer(c, loops, targets, ev); err != nil {
		return err
	}

	knits := make(map[machine.Needle]knitout.Params)
	twisted := make(map[machine.Needle]knitout.Params)
	tucks := make(map[machine.Needle]knitout.Params)
	for _, id := range loops {
		l, _ := r.graph.Loop(id)
		n := targets[id]
		params := knitout.Make(id, r.carrierOf(id))
		switch {
		case l.HasParents() && l.Twisted():
			twisted[n] = params
		case l.HasParents():
			knits[n] = params
		default:
			if len(r.state.Loops(n)) > 0 {
				return failLoop(c, id, fmt.Errorf("%w: %s", ErrNeedleOccupied, n))
			}
			tucks[n] = params
		}
		r.program.Formed[id] = n
	}

	// twisted loops are pulled with the carrier travelling backwards
	back := dir.Opposite()
	first := r.comment(c)
	if err := r.execute(c, knitout.Knit, &dir, knits, first); err != nil {
		return err
	}
	if len(knits) > 0 {
		first = ""
	}
	if err := r.execute(c, knitout.Knit, &back, twisted, first); err != nil {
		return err
	}
	if len(twisted) > 0 {
		first = ""
	}
	if err := r.execute(c, knitout.Tuck, &dir, tucks, first); err != nil {
		return err
	}
	r.courseDone(ev)
	return nil
}

func (r *run) courseDone(ev *CourseEvent) {
	if r.hooks.OnCourse != nil {
		r.hooks.OnCourse(r.ctx, ev)
	}
	r.logger.Debug("course compiled", "course", ev.Course, "loops", ev.Loops, "transfers", ev.Transfers, "racks", ev.Racks)
}

// finish drops the fabric and takes the carriers out when asked to.
func (r *run) finish() error {
	last := r.courses.Len()
	if r.drop {
		params := make(map[machine.Needle]knitout.Params)
		for _, bed := range []*machine.Bed{r.state.Front(), r.state.Back()} {
			for _, pos := range bed.Occupied() {
				params[machine.Needle{Front: bed.Front(), Position: pos}] = knitout.Params{}
			}
		}
		if err := r.execute(last, knitout.Drop, nil, params, ""); err != nil {
			return err
		}
	}
	if r.outhook {
		seen := make(map[string]bool)
		names := make([]string, 0, len(r.carriers))
		for name := range r.carriers {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			c := r.carriers[name]
			if seen[c.Key()] || !r.state.InOperation(c) {
				continue
			}
			seen[c.Key()] = true
			line, err := knitout.OutHook(r.state, c)
			if err != nil {
				return failCourse(last, err)
			}
			r.state.Emit(line)
		}
	}
	return nil
}
