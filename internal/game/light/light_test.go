package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

func newLamp(t *testing.T) (*Lamp, *state.GameState, *world.Manager) {
	t.Helper()
	w := gametest.World(t)
	return New(w, DefaultConfig()), state.New("s", w), w
}

func TestTurnOnAndOff(t *testing.T) {
	lamp, gs, _ := newLamp(t)
	gs.AddItem("lamp")

	msg, ok := lamp.TurnOn(gs)
	assert.True(t, ok, msg)
	assert.True(t, gs.FlagSet("lamp_on"))
	assert.Equal(t, world.Value(1), gs.ObjectStates["lamp"][world.StateOn])

	_, ok = lamp.TurnOn(gs)
	assert.False(t, ok)

	_, ok = lamp.TurnOff(gs)
	assert.True(t, ok)
	assert.False(t, gs.FlagSet("lamp_on"))
	_, ok = lamp.TurnOff(gs)
	assert.False(t, ok)
}

func TestTurnOn_DeadBattery(t *testing.T) {
	lamp, gs, _ := newLamp(t)
	gs.SetFlag("lamp_battery", 0)
	_, ok := lamp.TurnOn(gs)
	assert.False(t, ok)
	assert.False(t, gs.FlagSet("lamp_on"))
}

func TestLit(t *testing.T) {
	lamp, gs, w := newLamp(t)
	attic, err := w.Room("attic")
	require.NoError(t, err)
	kitchen, err := w.Room("kitchen")
	require.NoError(t, err)

	gs.CurrentRoom = "attic"
	assert.True(t, lamp.Lit(kitchen, gs))
	assert.False(t, lamp.Lit(attic, gs))

	gs.Detach("lamp")
	gs.AddItem("lamp")
	lamp.TurnOn(gs)
	assert.True(t, lamp.Lit(attic, gs))

	// a lit lamp on the floor of the current room still lights it
	gs.RemoveItem("lamp")
	gs.PlaceInRoom("attic", "lamp")
	assert.True(t, lamp.Lit(attic, gs))

	// but not when left elsewhere
	gs.RemoveFromRoom("attic", "lamp")
	gs.PlaceInRoom("kitchen", "lamp")
	assert.False(t, lamp.Lit(attic, gs))
}

// Inventory holds the lamp, lamp_on=false, battery=200; after turning it on
// and 200 uncursed turns the battery is empty and the lamp has gone out.
func TestDrain_TwoHundredTurns(t *testing.T) {
	lamp, gs, _ := newLamp(t)
	gs.Detach("lamp")
	gs.AddItem("lamp")
	require.Equal(t, 200, lamp.Battery(gs))

	_, ok := lamp.TurnOn(gs)
	require.True(t, ok)

	var notes []string
	for i := 0; i < 200; i++ {
		require.True(t, lamp.IsOn(gs), "lamp went out early at turn %d", i)
		notes = append(notes, lamp.Drain(gs)...)
	}
	assert.Equal(t, 0, lamp.Battery(gs))
	assert.False(t, gs.FlagSet("lamp_on"))
	assert.Contains(t, notes, "Your lamp has gone out.")
	assert.Len(t, notes, 4, "three low-battery warnings and the final notice")
	assert.Nil(t, lamp.Drain(gs), "no drain once off")
}

func TestDrain_CursedDoubles(t *testing.T) {
	lamp, gs, _ := newLamp(t)
	lamp.TurnOn(gs)
	gs.SetFlag("cursed", 1)
	lamp.Drain(gs)
	assert.Equal(t, 198, lamp.Battery(gs))
}

func TestPropertyBatteryNeverNegative(t *testing.T) {
	w := gametest.World(t)
	lamp := New(w, DefaultConfig())
	rapid.Check(t, func(rt *rapid.T) {
		gs := state.New("s", w)
		gs.SetFlag("lamp_battery", world.Value(rapid.IntRange(0, 30).Draw(rt, "battery")))
		gs.SetFlag("lamp_on", 1)
		gs.SetFlag("cursed", world.Bool(rapid.Bool().Draw(rt, "cursed")))
		turns := rapid.IntRange(0, 40).Draw(rt, "turns")
		for i := 0; i < turns; i++ {
			lamp.Drain(gs)
			if lamp.Battery(gs) < 0 {
				rt.Fatalf("battery negative: %d", lamp.Battery(gs))
			}
			if lamp.Battery(gs) == 0 && lamp.IsOn(gs) {
				rt.Fatalf("lamp on with empty battery")
			}
		}
	})
}
