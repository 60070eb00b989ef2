package knitout

import (
	"errors"
	"fmt"

	"github.com/aretw0/knitout/pkg/machine"
)

var (
	// ErrMissingParameter is returned when an instruction lacks a needle, loop, or carrier it requires.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrDirection is returned for a pass direction the instruction type does not allow.
	ErrDirection = errors.New("invalid pass direction")
	// ErrNeedleOrder is returned when a directed pass visits a position twice.
	ErrNeedleOrder = errors.New("needles are not strictly ordered")
	// ErrUnknownInstruction is returned for an unrecognised instruction type.
	ErrUnknownInstruction = errors.New("unknown instruction")
)

// AssemblyError reports an instruction that could not be written.
type AssemblyError struct {
	Type   InstructionType
	Needle machine.Needle
	Param  string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Type, e.Needle, e.Err, e.Param)
	}
	return fmt.Sprintf("%s %s: %v", e.Type, e.Needle, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
