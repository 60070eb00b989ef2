package knitout

import (
	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/machine"
)

// Params holds what one instruction needs besides its type and direction.
// The needle the instruction starts on is the key of the pass map.
type Params struct {
	// Loop is the loop created by knit, tuck, or split.
	Loop *knitgraph.LoopID
	// Target is the second needle of xfer and split.
	Target *machine.Needle
	// Carrier feeds knit, tuck, split, and miss.
	Carrier machine.Carrier
	Comment string
}

// Make returns the parameters for an instruction that forms loop with carrier c.
func Make(loop knitgraph.LoopID, c machine.Carrier) Params {
	return Params{Loop: &loop, Carrier: c}
}

// Move returns the parameters for a transfer to target.
func Move(target machine.Needle) Params {
	return Params{Target: &target}
}

// SplitTo returns the parameters for a split that forms loop and sends the
// held loops to target.
func SplitTo(loop knitgraph.LoopID, target machine.Needle, c machine.Carrier) Params {
	return Params{Loop: &loop, Target: &target, Carrier: c}
}

// Feed returns the parameters for a miss with carrier c.
func Feed(c machine.Carrier) Params {
	return Params{Carrier: c}
}
