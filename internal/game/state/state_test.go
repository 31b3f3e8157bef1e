package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/world"
)

func TestNew_SeedsFromWorld(t *testing.T) {
	w := gametest.World(t)
	gs := New("s1", w)

	assert.Equal(t, "s1", gs.SessionID)
	assert.Equal(t, "west_of_house", gs.CurrentRoom)
	assert.Equal(t, MaxSanity, gs.Sanity)
	assert.Empty(t, gs.Inventory)
	assert.Equal(t, world.Value(200), gs.Flag("lamp_battery"))
	assert.False(t, gs.FlagSet("lamp_on"))
	assert.Equal(t, []string{"mailbox"}, gs.RoomItems("west_of_house"))
	assert.Equal(t, []string{"leaflet"}, gs.ContainerContents("mailbox"))
	assert.Nil(t, gs.Pending)
	assert.False(t, gs.CreatedAt.IsZero())
}

func TestReset_KeepsIdentity(t *testing.T) {
	w := gametest.World(t)
	gs := New("s1", w)
	created := gs.CreatedAt
	gs.Version = 7
	gs.AddItem("leaflet")
	gs.RemoveFromContainer("mailbox", "leaflet")
	gs.Score = 9
	gs.SetFlag("cursed", 1)
	gs.Pending = &PendingDisambiguation{Verb: "take", Query: "knife", Candidates: []string{"a", "b"}}

	gs.Reset(w)
	assert.Equal(t, "s1", gs.SessionID)
	assert.Equal(t, int64(7), gs.Version)
	assert.Equal(t, created, gs.CreatedAt)
	assert.Empty(t, gs.Inventory)
	assert.Equal(t, []string{"leaflet"}, gs.ContainerContents("mailbox"))
	assert.Zero(t, gs.Score)
	assert.False(t, gs.FlagSet("cursed"))
	assert.Nil(t, gs.Pending)
}

func TestClone_IsDeep(t *testing.T) {
	gs := New("s1", gametest.World(t))
	gs.AddItem("lamp")
	gs.SetObjectValue("mailbox", world.StateOpen, 1)
	gs.Pending = &PendingDisambiguation{Candidates: []string{"a"}}

	c := gs.Clone()
	c.AddItem("sword")
	c.SetObjectValue("mailbox", world.StateOpen, 0)
	c.RemoveFromRoom("west_of_house", "mailbox")
	c.SetFlag("x", 1)
	c.Pending.Candidates[0] = "z"

	assert.Equal(t, []string{"lamp"}, gs.Inventory)
	assert.Equal(t, world.Value(1), gs.ObjectStates["mailbox"][world.StateOpen])
	assert.Equal(t, []string{"mailbox"}, gs.RoomItems("west_of_house"))
	assert.False(t, gs.FlagSet("x"))
	assert.Equal(t, "a", gs.Pending.Candidates[0])
}

func TestObjectValue_Fallback(t *testing.T) {
	w := gametest.World(t)
	gs := New("s1", w)
	chest, err := w.Object("chest")
	require.NoError(t, err)
	troll, err := w.Object("troll")
	require.NoError(t, err)

	assert.True(t, gs.ObjectFlag(chest, world.StateLocked), "authored default")
	assert.Equal(t, world.Value(10), gs.ObjectValue(troll, world.StateHealth), "health falls back to the object's health")
	assert.Equal(t, world.Value(0), gs.ObjectValue(troll, world.StateBroken), "unknown keys default to zero")

	gs.SetObjectValue("chest", world.StateLocked, 0)
	assert.False(t, gs.ObjectFlag(chest, world.StateLocked), "session override wins")

	gs.MergeObjectState("troll", world.StateMap{world.StateHealth: 3})
	assert.Equal(t, world.Value(3), gs.ObjectValue(troll, world.StateHealth))
}

func TestAdjustSanity_ClampsAndIncapacitates(t *testing.T) {
	gs := New("s1", gametest.World(t))

	assert.Equal(t, 0, gs.AdjustSanity(10))
	assert.Equal(t, MaxSanity, gs.Sanity)

	assert.Equal(t, -30, gs.AdjustSanity(-30))
	assert.Equal(t, 70, gs.Sanity)
	assert.False(t, gs.FlagSet(FlagIncapacitated))

	assert.Equal(t, -70, gs.AdjustSanity(-500))
	assert.Equal(t, MinSanity, gs.Sanity)
	assert.True(t, gs.FlagSet(FlagIncapacitated))
}

func TestPropertySanityStaysInBounds(t *testing.T) {
	w := gametest.World(t)
	rapid.Check(t, func(rt *rapid.T) {
		gs := New("s", w)
		deltas := rapid.SliceOf(rapid.IntRange(-150, 150)).Draw(rt, "deltas")
		for _, d := range deltas {
			gs.AdjustSanity(d)
			if gs.Sanity < MinSanity || gs.Sanity > MaxSanity {
				rt.Fatalf("sanity %d out of bounds", gs.Sanity)
			}
		}
	})
}

func TestHistory(t *testing.T) {
	gs := New("s1", gametest.World(t))
	_, ok := gs.PreviousRoom()
	assert.False(t, ok)

	gs.PushHistory("a")
	gs.PushHistory("b")
	prev, ok := gs.PreviousRoom()
	assert.True(t, ok)
	assert.Equal(t, "b", prev)
	gs.PopHistory()
	prev, _ = gs.PreviousRoom()
	assert.Equal(t, "a", prev)
	gs.PopHistory()
	gs.PopHistory()
	assert.Empty(t, gs.History)
}

func TestWornAndScored(t *testing.T) {
	gs := New("s1", gametest.World(t))
	gs.AddItem("cloak")
	gs.SetWorn("cloak", true)
	gs.SetWorn("cloak", true)
	assert.Equal(t, []string{"cloak"}, gs.Worn)

	gs.RemoveItem("cloak")
	assert.False(t, gs.IsWorn("cloak"), "dropping an item takes it off")

	assert.True(t, gs.MarkScored("egg"))
	assert.False(t, gs.MarkScored("egg"))
	assert.True(t, gs.HasScored("egg"))
}

func TestJSONRoundTripPreservesPending(t *testing.T) {
	gs := New("s1", gametest.World(t))
	gs.Pending = &PendingDisambiguation{Verb: "take", Query: "knife", Candidates: []string{"rusty_knife", "nasty_knife"}}
	gs.SetObjectValue("rug", world.StateMoved, 1)

	data, err := json.Marshal(gs)
	require.NoError(t, err)
	var back GameState
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, gs.Pending, back.Pending)
	assert.Equal(t, world.Value(1), back.ObjectStates["rug"][world.StateMoved])
	assert.Equal(t, gs.Rooms, back.Rooms)
}
