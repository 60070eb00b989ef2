package machine

import (
	"errors"
	"fmt"

	"github.com/aretw0/knitout/pkg/knitgraph"
)

var (
	// ErrBadRacking is returned when a transfer does not match the current racking.
	ErrBadRacking = errors.New("racking does not align needles")
	// ErrNotClear is returned when a transfer touches a needle whose slider holds loops.
	ErrNotClear = errors.New("needle is not clear")
	// ErrEmptyNeedle is returned when transferring from a needle that holds nothing.
	ErrEmptyNeedle = errors.New("needle holds no loops")
	// ErrSameBed is returned for transfers that do not cross between beds.
	ErrSameBed = errors.New("transfer must cross beds")
	// ErrSliderKnit is returned when knitting on a slider needle.
	ErrSliderKnit = errors.New("cannot knit on a slider needle")
	// ErrLoopOnBothBeds is returned when a loop is found on both beds.
	ErrLoopOnBothBeds = errors.New("loop held on both beds")
	// ErrLoopHeld is returned when placing a loop that is already on a needle.
	ErrLoopHeld = errors.New("loop is already held")
	// ErrOutOfRange is returned for needle positions outside the bed.
	ErrOutOfRange = errors.New("needle out of range")
)

var (
	// ErrCarrierNotInOperation is returned when a carrier is used or taken out before it is brought in.
	ErrCarrierNotInOperation = errors.New("carrier not in operation")
	// ErrCarrierRange is returned for feeder ids outside 1..MaxCarrier.
	ErrCarrierRange = errors.New("carrier id out of range")
	// ErrNoCarrier is returned when an operation needs a carrier and none was given.
	ErrNoCarrier = errors.New("no carrier")
)

// TopologyError reports an operation that would put the beds in an impossible state.
type TopologyError struct {
	Op      string
	Needle  Needle
	Target  *Needle
	Loop    *knitgraph.LoopID
	Racking int
	Err     error
}

func (e *TopologyError) Error() string {
	msg := e.Op + " " + e.Needle.String()
	if e.Target != nil {
		msg += " -> " + e.Target.String()
	}
	if e.Loop != nil {
		msg += fmt.Sprintf(" (loop %d)", *e.Loop)
	}
	if errors.Is(e.Err, ErrBadRacking) {
		msg += fmt.Sprintf(" at racking %d", e.Racking)
	}
	return msg + ": " + e.Err.Error()
}

func (e *TopologyError) Unwrap() error { return e.Err }

// CarrierError reports a yarn carrier protocol violation.
type CarrierError struct {
	Op      string
	Carrier Carrier
	Err     error
}

func (e *CarrierError) Error() string {
	if e.Carrier.IsZero() {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s carrier %s: %v", e.Op, e.Carrier, e.Err)
}

func (e *CarrierError) Unwrap() error { return e.Err }
