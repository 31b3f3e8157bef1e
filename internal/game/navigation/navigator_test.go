package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/light"
	"github.com/cory-johannsen/grue/internal/game/navigation"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

func setup(t *testing.T) (*navigation.Navigator, *state.GameState, *world.Manager) {
	t.Helper()
	w := gametest.World(t)
	nav := navigation.NewNavigator(w, light.New(w, light.DefaultConfig()), 0, zaptest.NewLogger(t))
	return nav, state.New("test", w), w
}

func TestMove_RoomAToB(t *testing.T) {
	zone := &world.Zone{
		ID: "z", Name: "Z", StartRoom: "A",
		Rooms: map[string]*world.Room{
			"A": {ID: "A", Title: "A", Description: "Room A.", Exits: map[world.Direction]string{world.North: "B"}},
			"B": {ID: "B", Title: "B", Description: "Room B."},
		},
	}
	w, err := world.NewManager([]*world.Zone{zone})
	require.NoError(t, err)
	nav := navigation.NewNavigator(w, light.New(w, light.DefaultConfig()), 0, zaptest.NewLogger(t))
	gs := state.New("s", w)

	res, err := nav.Move(world.North, gs)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.RoomChanged)
	assert.Equal(t, "B", res.NewRoom)
	assert.Equal(t, 1, gs.Turns)
	assert.Equal(t, 1, gs.Moves)
	assert.Equal(t, []string{"A"}, gs.History)

	gs.CurrentRoom = "A"
	before := gs.Clone()
	res, err = nav.Move(world.South, gs)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "You can't go that way.", res.Message)
	assert.Equal(t, before, gs)
}

func TestMove_FlagsRequired(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.CurrentRoom = "cellar"

	res, err := nav.Move(world.East, gs)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "prevents you from going east")
	assert.Equal(t, "cellar", gs.CurrentRoom)

	gs.SetFlag("troll_defeated", 1)
	res, err = nav.Move(world.East, gs)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "gallery", gs.CurrentRoom)
	assert.Contains(t, res.Message, "There is a painting here.")
}

func TestMove_GateBlocks(t *testing.T) {
	nav, gs, _ := setup(t)
	nav.AddGate(navigation.GateFunc(func(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (string, bool) {
		if to.ID == "river_bank" {
			return "The undergrowth is too thick.", false
		}
		return "", true
	}))
	gs.CurrentRoom = "north_of_house"
	before := gs.Clone()

	res, err := nav.Move(world.North, gs)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "The undergrowth is too thick.", res.Message)
	assert.Equal(t, before, gs)

	res, err = nav.Move(world.South, gs)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestMove_RequiresVehicle(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.CurrentRoom = "river_bank"

	res, err := nav.Move(world.East, gs)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "boat")

	gs.Vehicle = "boat"
	res, err = nav.Move(world.East, gs)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "river", gs.CurrentRoom)
	assert.Contains(t, gs.RoomItems("river"), "boat", "the vehicle travels with the player")
	assert.NotContains(t, gs.RoomItems("river_bank"), "boat")
	assert.Contains(t, res.Message, "You are in it.")
}

func TestMove_DarkRoomSanityAndDrain(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.CurrentRoom = "living_room"

	res, err := nav.Move(world.Down, gs)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "It is pitch black.", res.Message)
	assert.Equal(t, -5, res.SanityDelta)
	assert.Equal(t, 95, gs.Sanity)
	assert.Contains(t, res.Notifications, "A wave of dread washes over you.")

	gs.CurrentRoom = "living_room"
	gs.AddItem("lamp")
	gs.RemoveFromRoom("living_room", "lamp")
	gs.SetFlag("lamp_on", 1)
	res, err = nav.Move(world.Down, gs)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "Cellar\nYou are in a dark and damp cellar.")
	assert.Contains(t, res.Message, "There is a nasty troll here.")
	assert.Equal(t, world.Value(199), gs.Flag("lamp_battery"))
}

func TestMove_LowSanityDescription(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.CurrentRoom = "kitchen"
	gs.Sanity = 20
	res, err := nav.Move(world.West, gs)
	require.NoError(t, err)
	assert.Contains(t, res.Message, "The living room walls are bleeding.")
}

func TestMove_CorruptState(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.CurrentRoom = "nowhere"
	_, err := nav.Move(world.North, gs)
	assert.ErrorIs(t, err, world.ErrReferenceNotFound)
}

func TestBack(t *testing.T) {
	nav, gs, _ := setup(t)
	res, err := nav.Back(gs)
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = nav.Move(world.North, gs)
	require.NoError(t, err)
	_, err = nav.Move(world.East, gs)
	require.NoError(t, err)
	assert.Equal(t, []string{"west_of_house", "north_of_house"}, gs.History)

	res, err = nav.Back(gs)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "north_of_house", gs.CurrentRoom)
	assert.Equal(t, []string{"west_of_house"}, gs.History)
	assert.Equal(t, 3, gs.Moves)
}

func TestBack_NoExitToPrevious(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.History = []string{"attic"}
	before := gs.Clone()
	res, err := nav.Back(gs)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, before, gs)
}

func TestWait(t *testing.T) {
	nav, gs, _ := setup(t)
	gs.SetFlag("lamp_on", 1)
	res := nav.Wait(gs)
	assert.True(t, res.Success)
	assert.Equal(t, 1, gs.Turns)
	assert.Equal(t, 0, gs.Moves)
	assert.Equal(t, world.Value(199), gs.Flag("lamp_battery"))
}

func TestDescribe(t *testing.T) {
	nav, gs, _ := setup(t)
	desc, err := nav.Describe(gs)
	require.NoError(t, err)
	assert.Equal(t, "West of House\nYou are standing in an open field west of a white house.\nThere is a small mailbox here.\nExits: north.", desc)

	gs.SetObjectValue("mailbox", world.StateOpen, 1)
	desc, err = nav.Describe(gs)
	require.NoError(t, err)
	assert.Contains(t, desc, "The small mailbox contains: leaflet.")

	gs.CurrentRoom = "attic"
	desc, err = nav.Describe(gs)
	require.NoError(t, err)
	assert.Equal(t, "It is pitch black. You are likely to be eaten by a grue.", desc)
	assert.False(t, nav.Lit(gs))
}

func TestPropertyMoveSucceedsIffLegal(t *testing.T) {
	nav, base, w := setup(t)
	rooms := w.Rooms()
	rapid.Check(t, func(rt *rapid.T) {
		gs := base.Clone()
		gs.CurrentRoom = rapid.SampledFrom(rooms).Draw(rt, "room").ID
		gs.SetFlag("troll_defeated", world.Value(rapid.IntRange(0, 1).Draw(rt, "troll")))
		if rapid.Bool().Draw(rt, "boat") {
			gs.Vehicle = "boat"
		}
		dir := rapid.SampledFrom(world.StandardDirections).Draw(rt, "dir")

		from, _ := w.Room(gs.CurrentRoom)
		legal := false
		if target, ok := from.ExitForDirection(dir); ok {
			to, _ := w.Room(target)
			legal = true
			for k, v := range to.FlagsRequired {
				if gs.Flag(k) != v {
					legal = false
				}
			}
			if to.RequiresVehicle && gs.Vehicle == "" {
				legal = false
			}
		}

		before := gs.Clone()
		res, err := nav.Move(dir, gs)
		if err != nil {
			rt.Fatalf("Move: %v", err)
		}
		if res.Success != legal {
			rt.Fatalf("move %s from %s: success=%v legal=%v", dir, before.CurrentRoom, res.Success, legal)
		}
		if legal {
			if gs.Turns != before.Turns+1 || gs.Moves != before.Moves+1 {
				rt.Fatalf("counters not incremented by one")
			}
			if gs.CurrentRoom != from.Exits[dir] {
				rt.Fatalf("expected room %s, got %s", from.Exits[dir], gs.CurrentRoom)
			}
		} else if !assert.ObjectsAreEqual(before, gs) {
			rt.Fatalf("failed move changed state")
		}
	})
}
