package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) *machine.State {
	t.Helper()
	cfg := machine.DefaultConfig()
	cfg.Width = 20
	s, err := machine.NewState(cfg)
	require.NoError(t, err)
	return s
}

func TestNeedle_String(t *testing.T) {
	assert.Equal(t, "f1", machine.FrontNeedle(0).String())
	assert.Equal(t, "b10", machine.BackNeedle(9).String())
	assert.Equal(t, "fs3", machine.FrontNeedle(2).SliderOf().String())
	assert.Equal(t, "bs3", machine.FrontNeedle(2).OppositeSlider().String())
	assert.Equal(t, machine.BackNeedle(4), machine.FrontNeedle(4).Opposite())
	assert.True(t, machine.BackNeedle(1).Less(machine.FrontNeedle(2)))
}

func TestNewState_Header(t *testing.T) {
	s, err := machine.NewState(machine.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{
		";!knitout-2",
		";;Machine: SWG091N2",
		";;Gauge: 5",
		";;Width: 250",
		";;Carriers: 1 2 3 4 5 6 7 8 9 10",
		";;Position: Center",
	}, s.Instructions())
	assert.Equal(t, machine.LeftToRight, s.LastDirection())
	assert.Equal(t, 0, s.Racking())
}

func TestNewState_RejectsBadConfig(t *testing.T) {
	cfg := machine.DefaultConfig()
	cfg.Width = 0
	_, err := machine.NewState(cfg)
	assert.Error(t, err)
}

func TestState_AddLoop(t *testing.T) {
	s := newState(t)
	c := machine.MustCarrier(3)

	err := s.AddLoop(0, machine.FrontNeedle(0), c, false)
	require.ErrorIs(t, err, machine.ErrCarrierNotInOperation, "carrier must be hooked in first")

	require.NoError(t, s.InHook(c))
	require.NoError(t, s.AddLoop(0, machine.FrontNeedle(0), c, false))
	require.NoError(t, s.AddLoop(1, machine.FrontNeedle(0), c, false))
	assert.Equal(t, []knitgraph.LoopID{0, 1}, s.Loops(machine.FrontNeedle(0)))

	t.Run("knit drops prior loops", func(t *testing.T) {
		require.NoError(t, s.AddLoop(2, machine.FrontNeedle(0), c, true))
		assert.Equal(t, []knitgraph.LoopID{2}, s.Loops(machine.FrontNeedle(0)))
		_, ok, err := s.NeedleOf(0)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("knit on slider", func(t *testing.T) {
		err := s.AddLoop(3, machine.FrontNeedle(1).SliderOf(), c, true)
		assert.ErrorIs(t, err, machine.ErrSliderKnit)
	})

	t.Run("loop already held", func(t *testing.T) {
		err := s.AddLoop(2, machine.BackNeedle(5), c, false)
		assert.ErrorIs(t, err, machine.ErrLoopHeld)
	})

	t.Run("out of range", func(t *testing.T) {
		err := s.AddLoop(9, machine.FrontNeedle(20), c, false)
		assert.ErrorIs(t, err, machine.ErrOutOfRange)
	})

	pos, ok := s.CarrierPosition(c)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestState_XferLoops(t *testing.T) {
	s := newState(t)
	c := machine.MustCarrier(3)
	require.NoError(t, s.InHook(c))
	require.NoError(t, s.AddLoop(0, machine.FrontNeedle(2), c, false))
	require.NoError(t, s.AddLoop(1, machine.FrontNeedle(2), c, false))

	require.NoError(t, s.XferLoops(machine.FrontNeedle(2), machine.BackNeedle(2)))
	assert.Empty(t, s.Loops(machine.FrontNeedle(2)))
	assert.Equal(t, []knitgraph.LoopID{0, 1}, s.Loops(machine.BackNeedle(2)), "stack order is preserved")

	n, ok, err := s.NeedleOf(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, machine.BackNeedle(2), n)

	t.Run("racked transfer", func(t *testing.T) {
		racking, same := s.UpdateRack(3, 2)
		assert.Equal(t, 1, racking)
		assert.False(t, same)
		require.NoError(t, s.XferLoops(machine.BackNeedle(2), machine.FrontNeedle(3)))
		assert.Equal(t, []knitgraph.LoopID{0, 1}, s.Loops(machine.FrontNeedle(3)))
		_, same = s.UpdateRack(0, 0)
		assert.False(t, same)
		_, same = s.UpdateRack(4, 4)
		assert.True(t, same)
	})

	t.Run("same bed", func(t *testing.T) {
		err := s.XferLoops(machine.FrontNeedle(3), machine.FrontNeedle(4))
		assert.ErrorIs(t, err, machine.ErrSameBed)
	})

	t.Run("empty start", func(t *testing.T) {
		err := s.XferLoops(machine.FrontNeedle(7), machine.BackNeedle(7))
		assert.ErrorIs(t, err, machine.ErrEmptyNeedle)
	})
}

func TestState_XferRackingGateDoesNotMutate(t *testing.T) {
	s := newState(t)
	c := machine.MustCarrier(3)
	require.NoError(t, s.InHook(c))
	require.NoError(t, s.AddLoop(0, machine.FrontNeedle(4), c, false))
	require.NoError(t, s.AddLoop(1, machine.BackNeedle(6), c, false))

	err := s.XferLoops(machine.FrontNeedle(4), machine.BackNeedle(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, machine.ErrBadRacking)

	var topo *machine.TopologyError
	require.ErrorAs(t, err, &topo)
	assert.Equal(t, machine.FrontNeedle(4), topo.Needle)
	assert.Contains(t, err.Error(), "f5 -> b6")

	assert.Equal(t, []knitgraph.LoopID{0}, s.Loops(machine.FrontNeedle(4)))
	assert.Empty(t, s.Loops(machine.BackNeedle(5)))
	assert.Equal(t, []knitgraph.LoopID{1}, s.Loops(machine.BackNeedle(6)))
	assert.Equal(t, 1, s.Front().Held())
	assert.Equal(t, 1, s.Back().Held())
}

func TestState_XferRequiresClearNeedles(t *testing.T) {
	s := newState(t)
	c := machine.MustCarrier(3)
	require.NoError(t, s.InHook(c))
	require.NoError(t, s.AddLoop(0, machine.FrontNeedle(1), c, false))
	require.NoError(t, s.AddLoop(1, machine.BackNeedle(1).SliderOf(), c, false))

	err := s.XferLoops(machine.FrontNeedle(1), machine.BackNeedle(1))
	assert.ErrorIs(t, err, machine.ErrNotClear)
	assert.Equal(t, []knitgraph.LoopID{0}, s.Loops(machine.FrontNeedle(1)))

	require.NoError(t, s.XferLoops(machine.BackNeedle(1).SliderOf(), machine.FrontNeedle(1).SliderOf()))
	assert.Equal(t, []knitgraph.LoopID{1}, s.Loops(machine.FrontNeedle(1).SliderOf()))

	err = s.XferLoops(machine.FrontNeedle(1), machine.BackNeedle(1))
	assert.ErrorIs(t, err, machine.ErrNotClear, "front slider now holds a loop")
}

func TestState_DropLoopClearsSlider(t *testing.T) {
	s := newState(t)
	c := machine.MustCarrier(3)
	require.NoError(t, s.InHook(c))
	require.NoError(t, s.AddLoop(0, machine.BackNeedle(3), c, false))
	require.NoError(t, s.AddLoop(1, machine.BackNeedle(3).SliderOf(), c, false))

	require.NoError(t, s.DropLoop(machine.BackNeedle(3)))
	assert.Empty(t, s.Loops(machine.BackNeedle(3)))
	assert.Empty(t, s.Loops(machine.BackNeedle(3).SliderOf()))
	assert.Equal(t, 0, s.Back().Held())
}

func TestState_Carriers(t *testing.T) {
	s := newState(t)
	plated := machine.MustCarrier(4, 3)
	assert.Equal(t, "3 4", plated.String())
	assert.True(t, plated.Plated())

	err := s.OutHook(plated)
	require.ErrorIs(t, err, machine.ErrCarrierNotInOperation)

	assert.Len(t, s.NotInOperation(plated), 2)
	require.NoError(t, s.InHook(machine.MustCarrier(3)))
	assert.Equal(t, []machine.Carrier{machine.MustCarrier(4)}, s.NotInOperation(plated))
	require.NoError(t, s.InHook(machine.MustCarrier(4)))
	assert.True(t, s.InOperation(plated))
	assert.Len(t, s.InHooks(), 2)

	s.ReleaseHook(machine.MustCarrier(3))
	assert.Equal(t, []machine.Carrier{machine.MustCarrier(4)}, s.InHooks())
	assert.True(t, s.InOperation(machine.MustCarrier(3)))

	require.NoError(t, s.OutHook(plated))
	assert.Empty(t, s.Operating())
	assert.Empty(t, s.InHooks())
}

func TestNewCarrier_Range(t *testing.T) {
	_, err := machine.NewCarrier(11)
	assert.ErrorIs(t, err, machine.ErrCarrierRange)
	_, err = machine.NewCarrier(0, 3)
	assert.ErrorIs(t, err, machine.ErrCarrierRange)
	_, err = machine.NewCarrier()
	assert.ErrorIs(t, err, machine.ErrNoCarrier)
	assert.True(t, machine.MustCarrier(3, 4).Equal(machine.MustCarrier(4, 3)))
}

type fakePass struct {
	lines []string
	err   error
}

func (p fakePass) Len() int { return len(p.lines) }

func (p fakePass) WriteInstructions(string, string) ([]string, error) { return p.lines, p.err }

func TestState_ExecuteAndWrite(t *testing.T) {
	s := newState(t)
	header := len(s.Instructions())

	require.NoError(t, s.Execute(fakePass{}, "", ""))
	require.NoError(t, s.Execute(fakePass{lines: []string{"tuck + f1 3"}}, "", ""))
	require.Error(t, s.Execute(fakePass{lines: []string{"knit + f1 3"}, err: machine.ErrSliderKnit}, "", ""))
	s.Emit("rack 1")

	assert.Len(t, s.Passes(), 1)
	assert.Len(t, s.Instructions(), header+2)

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(buf.String(), "tuck + f1 3\nrack 1\n"))
}

func TestPassDirection(t *testing.T) {
	assert.Equal(t, "+", machine.LeftToRight.String())
	assert.Equal(t, "-", machine.RightToLeft.String())
	assert.Equal(t, machine.RightToLeft, machine.LeftToRight.Opposite())
	assert.Equal(t, 4, machine.RightToLeft.Next(5))
	assert.Equal(t, 6, machine.LeftToRight.Next(5))
	d, err := machine.ParsePassDirection("-")
	require.NoError(t, err)
	assert.Equal(t, machine.RightToLeft, d)
}
