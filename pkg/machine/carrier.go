package machine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxCarrier is the highest feeder id on the machine. Feeders are numbered from 1.
const MaxCarrier = 10

// DefaultCarrier is the feeder used when a yarn has no carrier assigned.
const DefaultCarrier = 3

// Carrier is one feeder, or several feeders plated together.
// Carriers compare by their sorted feeder ids; use Key for map keys.
type Carrier struct {
	ids []int
}

// NewCarrier validates the feeder ids and returns the carrier that plates them.
func NewCarrier(ids ...int) (Carrier, error) {
	if len(ids) == 0 {
		return Carrier{}, &CarrierError{Op: "carrier", Err: ErrNoCarrier}
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for _, id := range sorted {
		if id < 1 || id > MaxCarrier {
			return Carrier{}, &CarrierError{Op: "carrier", Carrier: Carrier{ids: sorted}, Err: fmt.Errorf("%w: %d", ErrCarrierRange, id)}
		}
	}
	return Carrier{ids: sorted}, nil
}

// MustCarrier is NewCarrier for constant ids. It panics on an invalid id.
func MustCarrier(ids ...int) Carrier {
	c, err := NewCarrier(ids...)
	if err != nil {
		panic(err)
	}
	return c
}

// IDs returns the feeder ids, ascending.
func (c Carrier) IDs() []int { return slices.Clone(c.ids) }

// IsZero reports whether the carrier has no feeders.
func (c Carrier) IsZero() bool { return len(c.ids) == 0 }

// Plated reports whether more than one feeder is involved.
func (c Carrier) Plated() bool { return len(c.ids) > 1 }

// Equal compares feeder ids.
func (c Carrier) Equal(o Carrier) bool { return slices.Equal(c.ids, o.ids) }

// Key is a comparable form of the carrier.
func (c Carrier) Key() string { return c.String() }

// Feeders splits a plated carrier into its single feeders.
func (c Carrier) Feeders() []Carrier {
	out := make([]Carrier, len(c.ids))
	for i, id := range c.ids {
		out[i] = Carrier{ids: []int{id}}
	}
	return out
}

// String renders the ids separated by spaces, as written in knitout.
func (c Carrier) String() string {
	parts := make([]string, len(c.ids))
	for i, id := range c.ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
