package generator

import (
	"context"
	"log/slog"

	"github.com/aretw0/knitout/pkg/knitout"
	"github.com/aretw0/knitout/pkg/machine"
)

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithMachineConfig sets the machine described in the header and simulated.
func WithMachineConfig(cfg machine.Config) Option {
	return func(g *Generator) {
		g.config = cfg
	}
}

// WithCarrier sets the carrier given to the first yarn without one.
// Further yarns take the next free feeders.
func WithCarrier(c machine.Carrier) Option {
	return func(g *Generator) {
		g.carrier = c
	}
}

// WithOuthook takes every carrier out once the last course is knitted.
func WithOuthook(enabled bool) Option {
	return func(g *Generator) {
		g.outhook = enabled
	}
}

// WithDropOnFinish drops every held loop off the beds at the end.
func WithDropOnFinish(enabled bool) Option {
	return func(g *Generator) {
		g.drop = enabled
	}
}

// WithComments marks the first instruction of each course with a comment.
func WithComments(enabled bool) Option {
	return func(g *Generator) {
		g.comments = enabled
	}
}

// WithHooks registers callbacks fired as courses and passes are written.
func WithHooks(hooks Hooks) Option {
	return func(g *Generator) {
		g.hooks = hooks
	}
}

// PassEvent describes an executed carriage pass.
type PassEvent struct {
	Course    int
	Type      knitout.InstructionType
	Direction string
	Needles   int
	Racking   int
}

// CourseEvent describes a compiled course.
type CourseEvent struct {
	Course    int
	Loops     int
	Transfers int
	Racks     int
}

// Hooks are generation callbacks. Nil callbacks are skipped.
type Hooks struct {
	OnPass   func(context.Context, *PassEvent)
	OnCourse func(context.Context, *CourseEvent)
}
