package knitout

import "fmt"

// InstructionType is the operation performed at every needle of a pass.
type InstructionType int

const (
	Knit InstructionType = iota
	Split
	Tuck
	Miss
	Drop
	Xfer
)

var instructionNames = [...]string{"knit", "split", "tuck", "miss", "drop", "xfer"}

func (t InstructionType) String() string {
	if t < 0 || int(t) >= len(instructionNames) {
		return fmt.Sprintf("InstructionType(%d)", int(t))
	}
	return instructionNames[t]
}

// DirectionSensitive reports whether the needles of the pass must be visited
// in a single direction.
func (t InstructionType) DirectionSensitive() bool {
	switch t {
	case Knit, Split, Tuck, Miss:
		return true
	}
	return false
}

// LeftToRightOnly reports whether the pass may only sweep left to right.
func (t InstructionType) LeftToRightOnly() bool { return t == Drop }

// UsesYarn reports whether the instruction feeds a carrier.
func (t InstructionType) UsesYarn() bool { return t != Drop && t != Xfer }

// ParseInstructionType maps a knitout opcode to its type.
func ParseInstructionType(s string) (InstructionType, error) {
	for i, name := range instructionNames {
		if name == s {
			return InstructionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInstruction, s)
}
