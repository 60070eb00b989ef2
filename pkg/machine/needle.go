package machine

import "fmt"

// Needle addresses a needle on one of the beds.
// Needles are ordered by Position only.
type Needle struct {
	Front    bool
	Position int
	Slider   bool
}

// FrontNeedle returns the main needle at pos on the front bed.
func FrontNeedle(pos int) Needle { return Needle{Front: true, Position: pos} }

// BackNeedle returns the main needle at pos on the back bed.
func BackNeedle(pos int) Needle { return Needle{Position: pos} }

// Back reports whether the needle is on the back bed.
func (n Needle) Back() bool { return !n.Front }

// Opposite returns the main needle facing n on the other bed.
func (n Needle) Opposite() Needle { return Needle{Front: !n.Front, Position: n.Position} }

// OppositeSlider returns the slider facing n on the other bed.
func (n Needle) OppositeSlider() Needle {
	return Needle{Front: !n.Front, Position: n.Position, Slider: true}
}

// SliderOf returns the slider at n's position.
func (n Needle) SliderOf() Needle { return Needle{Front: n.Front, Position: n.Position, Slider: true} }

// Main returns the main needle at n's position.
func (n Needle) Main() Needle { return Needle{Front: n.Front, Position: n.Position} }

// Offset returns the needle d positions away on the same bed.
func (n Needle) Offset(d int) Needle {
	n.Position += d
	return n
}

// Less orders needles by position.
func (n Needle) Less(o Needle) bool { return n.Position < o.Position }

func (n Needle) String() string {
	bed := "b"
	if n.Front {
		bed = "f"
	}
	if n.Slider {
		bed += "s"
	}
	return fmt.Sprintf("%s%d", bed, n.Position+1)
}
