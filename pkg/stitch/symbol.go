package stitch

import (
	"fmt"
	"slices"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

// Symbol is a Stitch, a Cable, or a Number.
type Symbol interface {
	symbol()
}

// Lean is the direction a cable crosses in front.
type Lean int

const (
	Center Lean = iota
	Left
	Right
)

func (l Lean) String() string {
	switch l {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "center"
	}
}

// Stitch forms at most one loop from a run of loops on the needles.
type Stitch struct {
	Pull knitgraph.PullDirection
	// Offsets places each consumed loop relative to the loop the new stitch
	// is formed over, in working order. Empty for a yarn-over.
	Offsets []int
	// Children is 1, or 0 for a slip that passes the loop through unworked.
	Children int
}

// Cable crosses Left loops with the Right loops that follow them.
type Cable struct {
	Left, Right         int
	LeftPull, RightPull knitgraph.PullDirection
	Lean                Lean
}

// Number is a numeric pattern variable.
type Number int

func (Stitch) symbol() {}
func (Cable) symbol()  {}
func (Number) symbol() {}

// Consumes is the number of loops the stitch works.
func (s Stitch) Consumes() int { return len(s.Offsets) }

// YarnOver reports whether the stitch forms a loop without parents.
func (s Stitch) YarnOver() bool { return s.Children > 0 && len(s.Offsets) == 0 }

// Slip reports whether the stitch passes its loop through.
func (s Stitch) Slip() bool { return s.Children == 0 }

// Anchor is the index, from the first consumed loop, of the loop the new
// stitch sits over.
func (s Stitch) Anchor() int {
	if len(s.Offsets) == 0 {
		return 0
	}
	return -slices.Min(s.Offsets)
}

// Consumes is the number of loops the cable works.
func (c Cable) Consumes() int { return c.Left + c.Right }

// Depth is the crossing depth of a loop moving by offset needles:
// the loops moving toward the lean cross in front.
func (c Cable) Depth(offset int) int {
	switch {
	case c.Lean == Left && offset < 0, c.Lean == Right && offset > 0:
		return 1
	case c.Lean == Center:
		return 0
	}
	return -1
}

func (c Cable) String() string {
	name := "LC"
	if c.Lean == Right {
		name = "RC"
	}
	left, right := fmt.Sprint(c.Left), fmt.Sprint(c.Right)
	if c.LeftPull == knitgraph.FtB {
		left += "P"
	}
	if c.RightPull == knitgraph.FtB {
		right += "P"
	}
	return name + left + "|" + right
}

// Knit is a single knit stitch.
func Knit() Stitch { return Stitch{Offsets: []int{0}, Children: 1} }

// Purl is a single purl stitch.
func Purl() Stitch { return Stitch{Pull: knitgraph.FtB, Offsets: []int{0}, Children: 1} }

// YarnOver forms a loop with no parents.
func YarnOver() Stitch { return Stitch{Offsets: []int{}, Children: 1} }

// Slip passes one loop through to the next row.
func Slip() Stitch { return Stitch{Offsets: []int{0}} }

// Tog knits or purls n loops together, leaning right: the new stitch forms
// over the last of them.
func Tog(n int, pull knitgraph.PullDirection) Stitch {
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = i - (n - 1)
	}
	return Stitch{Pull: pull, Offsets: offsets, Children: 1}
}

// SlipPass slips n loops, works the next and passes the slipped loops over,
// leaning left: the new stitch forms over the first loop.
func SlipPass(n int, pull knitgraph.PullDirection) Stitch {
	offsets := make([]int, n+1)
	for i := range offsets {
		offsets[i] = i
	}
	return Stitch{Pull: pull, Offsets: offsets, Children: 1}
}

// Centered is a centred double decrease over three loops.
func Centered(pull knitgraph.PullDirection) Stitch {
	return Stitch{Pull: pull, Offsets: []int{-1, 0, 1}, Children: 1}
}
