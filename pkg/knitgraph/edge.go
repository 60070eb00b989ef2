package knitgraph

import "fmt"

// PullDirection is the direction a child loop is pulled through its parent.
type PullDirection int

const (
	// BtF pulls the child from the back of the fabric to the front: a knit stitch.
	BtF PullDirection = iota
	// FtB pulls the child from the front of the fabric to the back: a purl stitch.
	FtB
)

// Opposite returns the other pull direction.
func (d PullDirection) Opposite() PullDirection {
	if d == BtF {
		return FtB
	}
	return BtF
}

func (d PullDirection) String() string {
	switch d {
	case BtF:
		return "BtF"
	case FtB:
		return "FtB"
	default:
		return fmt.Sprintf("PullDirection(%d)", int(d))
	}
}

// ParsePullDirection accepts "BtF"/"knit" and "FtB"/"purl". The empty string is BtF.
func ParsePullDirection(s string) (PullDirection, error) {
	switch s {
	case "", "BtF", "btf", "knit":
		return BtF, nil
	case "FtB", "ftb", "purl":
		return FtB, nil
	default:
		return BtF, fmt.Errorf("unknown pull direction %q", s)
	}
}

// Placement describes where a child sits relative to one of its parents.
type Placement struct {
	// ParentOffset shifts the child's needle relative to the parent's:
	// child position = parent position + ParentOffset.
	ParentOffset int
	// Depth orders crossing loops in a cable. Higher depth crosses in front.
	Depth int
	// StackPosition inserts the parent at this index of the child's parent
	// stack instead of pushing it on top. Nil pushes on top.
	StackPosition *int
}

// AtStack returns a copy of p that inserts the parent at stack position i.
func (p Placement) AtStack(i int) Placement {
	p.StackPosition = &i
	return p
}

// Edge is a stitch relation between a parent and a child loop.
type Edge struct {
	Parent    LoopID
	Child     LoopID
	Pull      PullDirection
	Placement Placement
}

type edgeKey struct {
	parent, child LoopID
}
