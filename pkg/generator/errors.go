package generator

import (
	"errors"
	"fmt"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

var (
	// ErrParentNotHeld is returned when a parent loop is no longer on any needle.
	ErrParentNotHeld = errors.New("parent loop is not held on a needle")
	// ErrTargetConflict is returned when two loops of a course need the same needle position.
	ErrTargetConflict = errors.New("needle position already taken in this course")
	// ErrOutOfBed is returned when a loop would be formed outside the needle bed.
	ErrOutOfBed = errors.New("needle position outside the bed")
	// ErrNoRoom is returned when a yarn-over has no free needle between its neighbours.
	ErrNoRoom = errors.New("no free needle for yarn-over")
	// ErrNeedleOccupied is returned when a target or parking needle holds unrelated loops.
	ErrNeedleOccupied = errors.New("needle holds unrelated loops")
	// ErrSharedStack is returned when a parent shares its needle with other loops.
	ErrSharedStack = errors.New("parent shares its needle with other loops")
	// ErrOutOfCarriers is returned when the yarns need more carriers than the machine has.
	ErrOutOfCarriers = errors.New("not enough carriers for the yarns")
)

// GenerationError locates a failure in the course and loop being compiled.
// Course is -1 for failures before the first course.
type GenerationError struct {
	Course int
	Loop   *knitgraph.LoopID
	Err    error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Course < 0:
		return fmt.Sprintf("generate: %v", e.Err)
	case e.Loop != nil:
		return fmt.Sprintf("generate course %d, loop %d: %v", e.Course, *e.Loop, e.Err)
	default:
		return fmt.Sprintf("generate course %d: %v", e.Course, e.Err)
	}
}

func (e *GenerationError) Unwrap() error { return e.Err }

func failCourse(course int, err error) error {
	return &GenerationError{Course: course, Err: err}
}

func failLoop(course int, id knitgraph.LoopID, err error) error {
	return &GenerationError{Course: course, Loop: &id, Err: err}
}
