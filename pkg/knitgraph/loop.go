package knitgraph

import (
	"fmt"
	"slices"
)

// LoopID identifies a loop. Ids follow creation order, starting at 0.
type LoopID int

// Loop is a single stitch node.
// Its identity never changes; only the parent stack grows while the graph is built.
type Loop struct {
	id      LoopID
	yarn    string
	twisted bool
	// parents is the stack of loops this loop is pulled through.
	// Index 0 is the bottom of the stack.
	parents []LoopID
}

// NewLoop creates a detached loop. It is usually easier to call Graph.NewLoop.
func NewLoop(id LoopID, yarn string, twisted bool) (*Loop, error) {
	if id < 0 {
		return nil, &ConstructionError{Op: "new_loop", Loop: id, Err: ErrInvalidLoopID}
	}
	return &Loop{id: id, yarn: yarn, twisted: twisted}, nil
}

// ID returns the loop id.
func (l *Loop) ID() LoopID { return l.id }

// Yarn returns the name of the yarn that formed the loop.
func (l *Loop) Yarn() string { return l.yarn }

// Twisted reports whether the loop is twisted (formed by pulling the carrier backwards across the needle).
func (l *Loop) Twisted() bool { return l.twisted }

// Parents returns a copy of the parent stack, bottom first.
func (l *Loop) Parents() []LoopID { return slices.Clone(l.parents) }

// HasParents reports whether any loop has been pulled through by this one.
func (l *Loop) HasParents() bool { return len(l.parents) > 0 }

// addParent pushes the parent on top of the stack, or inserts it at position when given.
// Positions past the top of the stack append.
func (l *Loop) addParent(parent LoopID, position *int) error {
	if position == nil || *position >= len(l.parents) {
		l.parents = append(l.parents, parent)
		return nil
	}
	if *position < 0 {
		return fmt.Errorf("%w: %d", ErrStackPosition, *position)
	}
	l.parents = slices.Insert(l.parents, *position, parent)
	return nil
}

func (l *Loop) String() string {
	if l.twisted {
		return fmt.Sprintf("%d on yarn %s, twisted", l.id, l.yarn)
	}
	return fmt.Sprintf("%d on yarn %s", l.id, l.yarn)
}
