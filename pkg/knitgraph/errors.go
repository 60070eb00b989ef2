package knitgraph

import (
	"errors"
	"fmt"
)

// ErrLoopNotFound is returned when an operation references a loop id that is not in the graph.
var ErrLoopNotFound = errors.New("loop not found")

// ErrYarnNotFound is returned when a loop references a yarn that was never added.
var ErrYarnNotFound = errors.New("yarn not found")

// ErrDuplicateYarn is returned when a yarn name is registered twice.
var ErrDuplicateYarn = errors.New("yarn already exists")

// ErrDuplicateLoop is returned when a loop id is added twice.
var ErrDuplicateLoop = errors.New("loop already exists")

// ErrInvalidLoopID is returned for negative loop ids.
var ErrInvalidLoopID = errors.New("loop id must be non-negative")

// ErrLoopOrder is returned when a loop appended to a strand does not have the highest id so far.
var ErrLoopOrder = errors.New("loop id is not above the last loop id")

// ErrStackPosition is returned when a parent is inserted at a negative stack position.
var ErrStackPosition = errors.New("invalid stack position")

// ErrCourseOrder is returned when an edge points from a loop to one formed earlier on the strand.
var ErrCourseOrder = errors.New("parent loop is not in an earlier course")

// ConstructionError identifies the loop, yarn, or edge that violated a graph invariant.
type ConstructionError struct {
	Op     string
	Loop   LoopID
	Parent LoopID
	Yarn   string
	Err    error
}

func (e *ConstructionError) Error() string {
	switch {
	case e.Yarn != "" && e.Op == "add_yarn":
		return fmt.Sprintf("%s: yarn %q: %v", e.Op, e.Yarn, e.Err)
	case e.Yarn != "":
		return fmt.Sprintf("%s: loop %d on yarn %q: %v", e.Op, e.Loop, e.Yarn, e.Err)
	case e.Op == "connect_loops" || e.Op == "courses":
		return fmt.Sprintf("%s: %d -> %d: %v", e.Op, e.Parent, e.Loop, e.Err)
	default:
		return fmt.Sprintf("%s: loop %d: %v", e.Op, e.Loop, e.Err)
	}
}

func (e *ConstructionError) Unwrap() error { return e.Err }
