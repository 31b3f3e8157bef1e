package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/inventory"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

func setup(t *testing.T, cfg inventory.Config) (*inventory.Rules, *state.GameState) {
	t.Helper()
	w := gametest.World(t)
	return inventory.NewRules(w, cfg, zaptest.NewLogger(t)), state.New("test", w)
}

func ok(t *testing.T) func(action.Result, error) action.Result {
	return func(res action.Result, err error) action.Result {
		t.Helper()
		require.NoError(t, err)
		require.True(t, res.Success, "expected success, got %q", res.Message)
		return res
	}
}

func failed(t *testing.T) func(action.Result, error) action.Result {
	return func(res action.Result, err error) action.Result {
		t.Helper()
		require.NoError(t, err)
		require.False(t, res.Success, "expected failure")
		return res
	}
}

// carry moves objects into the inventory regardless of where they lie.
func carry(gs *state.GameState, ids ...string) {
	for _, id := range ids {
		gs.Detach(id)
		gs.AddItem(id)
	}
}

func TestTakeAndDrop(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	gs.CurrentRoom = "living_room"

	res := ok(t)(r.Take("lamp", gs))
	assert.Equal(t, "Taken.", res.Message)
	assert.True(t, res.InventoryChanged)
	assert.Equal(t, []string{"lamp"}, gs.Inventory)
	assert.NotContains(t, gs.RoomItems("living_room"), "lamp")

	res = failed(t)(r.Take("lamp", gs))
	assert.Equal(t, "You already have the brass lantern.", res.Message)
	res = failed(t)(r.Take("rug", gs))
	assert.Equal(t, "You can't take the oriental rug.", res.Message)

	gs.CurrentRoom = "kitchen"
	ok(t)(r.Drop("lamp", gs))
	assert.Empty(t, gs.Inventory)
	assert.Contains(t, gs.RoomItems("kitchen"), "lamp")

	res = failed(t)(r.Drop("lamp", gs))
	assert.Equal(t, "You don't have the brass lantern.", res.Message)
}

func TestTake_NotInCurrentRoom(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	before := gs.Clone()
	failed(t)(r.Take("lamp", gs))
	assert.Equal(t, before, gs)
}

func TestTake_FromContainerNeedsVisibility(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())

	res := failed(t)(r.Take("leaflet", gs))
	assert.Contains(t, res.Message, "don't see")
	res = failed(t)(r.TakeFrom("leaflet", "mailbox", gs))
	assert.Equal(t, "The small mailbox is closed.", res.Message)

	gs.SetObjectValue("mailbox", world.StateOpen, 1)
	ok(t)(r.TakeFrom("leaflet", "mailbox", gs))
	assert.True(t, gs.HasItem("leaflet"))
	assert.Empty(t, gs.ContainerContents("mailbox"))

	res = failed(t)(r.TakeFrom("leaflet", "mailbox", gs))
	assert.Equal(t, "The leaflet isn't in the small mailbox.", res.Message)
	res = failed(t)(r.TakeFrom("leaflet", "house", gs))
	assert.Contains(t, res.Message, "can't hold anything")
}

func TestTake_CarryLimit(t *testing.T) {
	cfg := inventory.DefaultConfig()
	cfg.MaxCarry = 4
	r, gs := setup(t, cfg)
	gs.CurrentRoom = "living_room"

	ok(t)(r.Take("lamp", gs))
	res := failed(t)(r.Take("sword", gs))
	assert.Equal(t, "Your load is too heavy.", res.Message)
	assert.Equal(t, 2, r.Carried(gs))
}

func TestPut_CapacityAndVisibility(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	gs.CurrentRoom = "kitchen"
	carry(gs, "leaflet", "brass_key")

	res := ok(t)(r.Put("leaflet", "bottle", gs))
	assert.Equal(t, "You put the leaflet in the glass bottle.", res.Message)
	res = failed(t)(r.Put("brass_key", "bottle", gs))
	assert.Equal(t, "The glass bottle is full.", res.Message)
	assert.True(t, gs.HasItem("brass_key"))

	res = failed(t)(r.Put("brass_key", "sack", gs))
	assert.Equal(t, "The brown sack is closed.", res.Message)
	res = failed(t)(r.Put("brass_key", "brass_key", gs))
	assert.Contains(t, res.Message, "inside itself")
	res = failed(t)(r.Put("brass_key", "lamp", gs))
	assert.Contains(t, res.Message, "can't put anything")
	res = failed(t)(r.Put("sword", "bottle", gs))
	assert.Contains(t, res.Message, "don't have")
}

func TestPut_ContainerIntoItsOwnContents(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	gs.CurrentRoom = "kitchen"
	gs.SetObjectValue("sack", world.StateOpen, 1)
	carry(gs, "sack", "bottle")

	ok(t)(r.Put("bottle", "sack", gs))
	res := failed(t)(r.Put("sack", "bottle", gs))
	assert.Equal(t, "You can't put the brown sack inside the glass bottle.", res.Message)
	assert.True(t, gs.HasItem("sack"))
	assert.Equal(t, []string{"coins", "bottle"}, gs.ContainerContents("sack"))
	assert.Empty(t, gs.ContainerContents("bottle"))
}

func TestScoring_OnceAndWinFlag(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	require.Equal(t, 12, r.WinThreshold())
	gs.CurrentRoom = "living_room"
	gs.SetObjectValue("trophy_case", world.StateOpen, 1)
	carry(gs, "coins", "egg", "painting")

	res := ok(t)(r.Put("coins", "trophy_case", gs))
	assert.Equal(t, 3, gs.Score)
	assert.Contains(t, res.Deltas, action.Delta{Kind: action.DeltaScore, Target: "coins", Value: 3})
	assert.Contains(t, res.Notifications, "Your score has gone up by 3 points.")

	ok(t)(r.TakeFrom("coins", "trophy_case", gs))
	res = ok(t)(r.Put("coins", "trophy_case", gs))
	assert.Equal(t, 3, gs.Score, "a treasure scores at most once")
	assert.Empty(t, res.Notifications)

	ok(t)(r.Put("egg", "trophy_case", gs))
	assert.False(t, gs.FlagSet("won"))
	res = ok(t)(r.Put("painting", "trophy_case", gs))
	assert.Equal(t, 12, gs.Score)
	assert.True(t, gs.FlagSet("won"))
	assert.Contains(t, res.Deltas, action.Delta{Kind: action.DeltaFlag, Target: "won", Value: 1})
}

func TestScoring_OtherContainerDoesNotScore(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	gs.CurrentRoom = "kitchen"
	gs.SetObjectValue("sack", world.StateOpen, 1)
	carry(gs, "egg")
	ok(t)(r.Put("egg", "sack", gs))
	assert.Zero(t, gs.Score)
	assert.False(t, gs.HasScored("egg"))
}

func TestWearAndRemove(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	failed(t)(r.Wear("cloak", gs))
	carry(gs, "cloak", "lamp")

	ok(t)(r.Wear("cloak", gs))
	assert.True(t, gs.IsWorn("cloak"))
	res := failed(t)(r.Wear("cloak", gs))
	assert.Contains(t, res.Message, "already wearing")
	res = failed(t)(r.Wear("lamp", gs))
	assert.Equal(t, "You can't wear the brass lantern.", res.Message)

	ok(t)(r.Remove("cloak", gs))
	assert.False(t, gs.IsWorn("cloak"))
	assert.True(t, gs.HasItem("cloak"))
	failed(t)(r.Remove("cloak", gs))
}

func TestList(t *testing.T) {
	r, gs := setup(t, inventory.DefaultConfig())
	assert.Equal(t, "You are empty-handed.", r.List(gs, nil))

	carry(gs, "lamp", "cloak", "sack")
	gs.SetWorn("cloak", true)
	gs.SetObjectValue("sack", world.StateOpen, 1)
	lit := func(id string) bool { return id == "lamp" }
	assert.Equal(t, "You are carrying:\n  a brass lantern (providing light)\n  a velvet cloak (being worn)\n  a brown sack\n    a bag of coins", r.List(gs, lit))
}

func TestPropertyTakeThenDropIsIdentity(t *testing.T) {
	r, base := setup(t, inventory.DefaultConfig())
	base.CurrentRoom = "living_room"
	rapid.Check(t, func(rt *rapid.T) {
		gs := base.Clone()
		id := rapid.SampledFrom([]string{"lamp", "sword"}).Draw(rt, "obj")
		if res, err := r.Take(id, gs); err != nil || !res.Success {
			rt.Fatalf("take %s: %v %q", id, err, res.Message)
		}
		if res, err := r.Drop(id, gs); err != nil || !res.Success {
			rt.Fatalf("drop %s: %v %q", id, err, res.Message)
		}
		if gs.HasItem(id) {
			rt.Fatalf("%s still held", id)
		}
		if loc := gs.LocationOf(id); loc.Kind != state.InRoom || loc.ID != "living_room" {
			rt.Fatalf("%s at %+v", id, loc)
		}
	})
}

func TestPropertyInventoryIsTakenMinusDropped(t *testing.T) {
	r, base := setup(t, inventory.DefaultConfig())
	base.CurrentRoom = "north_of_house"
	rapid.Check(t, func(rt *rapid.T) {
		gs := base.Clone()
		held := map[string]bool{}
		steps := rapid.IntRange(0, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom([]string{"cloak", "brass_key", "mailbox"}).Draw(rt, "obj")
			if rapid.Bool().Draw(rt, "take") {
				res, err := r.Take(id, gs)
				if err != nil {
					rt.Fatalf("take: %v", err)
				}
				if res.Success {
					held[id] = true
				}
			} else {
				res, err := r.Drop(id, gs)
				if err != nil {
					rt.Fatalf("drop: %v", err)
				}
				if res.Success {
					delete(held, id)
				}
			}
		}
		if len(held) != len(gs.Inventory) {
			rt.Fatalf("inventory %v, expected %v", gs.Inventory, held)
		}
		for _, id := range gs.Inventory {
			if !held[id] {
				rt.Fatalf("unexpected %s in inventory", id)
			}
		}
	})
}

func TestPropertyContainerNeverOverCapacity(t *testing.T) {
	r, base := setup(t, inventory.DefaultConfig())
	base.CurrentRoom = "kitchen"
	base.SetObjectValue("sack", world.StateOpen, 1)
	rapid.Check(t, func(rt *rapid.T) {
		gs := base.Clone()
		carry(gs, "leaflet", "brass_key", "egg", "cloak", "lamp", "sword")
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			id := rapid.SampledFrom([]string{"leaflet", "brass_key", "egg", "cloak", "lamp", "sword"}).Draw(rt, "obj")
			held := gs.HasItem(id)
			res, err := r.Put(id, "sack", gs)
			if err != nil {
				rt.Fatalf("put: %v", err)
			}
			if !res.Success && held && !gs.HasItem(id) {
				rt.Fatalf("failed put removed %s from inventory", id)
			}
			if used := r.Used("sack", gs); used > 4 {
				rt.Fatalf("sack holds %d > capacity 4", used)
			}
		}
	})
}

func TestPropertyScoreIsSumOfDistinctTreasures(t *testing.T) {
	r, base := setup(t, inventory.DefaultConfig())
	base.CurrentRoom = "living_room"
	base.SetObjectValue("trophy_case", world.StateOpen, 1)
	values := map[string]int{"coins": 3, "egg": 5, "painting": 4}
	rapid.Check(t, func(rt *rapid.T) {
		gs := base.Clone()
		scored := map[string]bool{}
		wins := 0
		n := rapid.IntRange(0, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			id := rapid.SampledFrom([]string{"coins", "egg", "painting"}).Draw(rt, "treasure")
			carry(gs, id)
			res, err := r.Put(id, "trophy_case", gs)
			if err != nil || !res.Success {
				rt.Fatalf("put %s: %v %q", id, err, res.Message)
			}
			scored[id] = true
			for _, d := range res.Deltas {
				if d.Kind == action.DeltaFlag && d.Target == "won" {
					wins++
				}
			}
		}
		want := 0
		for id := range scored {
			want += values[id]
		}
		if gs.Score != want {
			rt.Fatalf("score %d, want %d", gs.Score, want)
		}
		if (want >= 12) != (wins == 1) || wins > 1 {
			rt.Fatalf("win flag set %d times at score %d", wins, want)
		}
	})
}
