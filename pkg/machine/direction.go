package machine

import "fmt"

// PassDirection is the direction the carriage sweeps across the beds.
// Needle positions grow from left to right.
type PassDirection int

const (
	// LeftToRight is written "+".
	LeftToRight PassDirection = iota
	// RightToLeft is written "-".
	RightToLeft
)

// Opposite returns the other direction.
func (d PassDirection) Opposite() PassDirection {
	if d == LeftToRight {
		return RightToLeft
	}
	return LeftToRight
}

// Next returns the position after pos in the direction of travel.
func (d PassDirection) Next(pos int) int {
	if d == RightToLeft {
		return pos - 1
	}
	return pos + 1
}

// Prior returns the position before pos in the direction of travel.
func (d PassDirection) Prior(pos int) int {
	if d == RightToLeft {
		return pos + 1
	}
	return pos - 1
}

func (d PassDirection) String() string {
	switch d {
	case LeftToRight:
		return "+"
	case RightToLeft:
		return "-"
	default:
		return fmt.Sprintf("PassDirection(%d)", int(d))
	}
}

// ParsePassDirection accepts "+"/"-" and the long names.
func ParsePassDirection(s string) (PassDirection, error) {
	switch s {
	case "+", "ltr", "left_to_right", "LeftToRight":
		return LeftToRight, nil
	case "-", "rtl", "right_to_left", "RightToLeft":
		return RightToLeft, nil
	}
	return LeftToRight, fmt.Errorf("unknown pass direction %q", s)
}
