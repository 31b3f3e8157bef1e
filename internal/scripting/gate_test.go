package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/grue/internal/game/dice"
	"github.com/cory-johannsen/grue/internal/game/engine"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
	"github.com/cory-johannsen/grue/internal/scripting"
)

const gateScript = `
function can_move(from, dir, to)
	if to == "north_of_house" and not engine.has_item("leaflet") then
		return "A voice whispers: read the leaflet first."
	end
	if dir == "south" then
		return false
	end
	return true
end
`

func TestManager_AllowInterpretsHookResult(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadZone("house", writeTempLua(t, "gate.lua", gateScript), 0))
	w := gametest.World(t)
	gs := state.New("s", w)
	from := &world.Room{ID: "west_of_house", ZoneID: "house"}

	reason, ok := mgr.Allow(from, world.North, &world.Room{ID: "north_of_house"}, gs)
	assert.False(t, ok)
	assert.Equal(t, "A voice whispers: read the leaflet first.", reason)

	reason, ok = mgr.Allow(from, world.South, &world.Room{ID: "anywhere"}, gs)
	assert.False(t, ok)
	assert.Equal(t, scripting.BlockedMessage, reason)

	gs.AddItem("leaflet")
	_, ok = mgr.Allow(from, world.North, &world.Room{ID: "north_of_house"}, gs)
	assert.True(t, ok)
}

func TestManager_AllowWithoutScriptsPermits(t *testing.T) {
	mgr, _ := newTestManager(t)
	from := &world.Room{ID: "west_of_house", ZoneID: "house"}
	_, ok := mgr.Allow(from, world.North, &world.Room{ID: "north_of_house"}, nil)
	assert.True(t, ok)
}

func TestManager_GateBlocksEngineMovement(t *testing.T) {
	w := gametest.World(t)
	mgr := scripting.NewManager(w, dice.NewSequence(0), zaptest.NewLogger(t))
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.LoadZone("house", writeTempLua(t, "gate.lua", gateScript), 0))

	e := engine.New(w, engine.DefaultConfig(), flavor.FirstSelector{}, zaptest.NewLogger(t))
	e.AddGate(mgr)
	gs := e.NewGame("s")

	res := e.ExecuteText("north", gs)
	assert.False(t, res.Success)
	assert.Equal(t, "A voice whispers: read the leaflet first.", res.Message)
	assert.Equal(t, "west_of_house", gs.CurrentRoom)

	e.ExecuteText("open mailbox", gs)
	e.ExecuteText("take leaflet", gs)
	res = e.ExecuteText("north", gs)
	assert.True(t, res.Success)
	assert.Equal(t, "north_of_house", gs.CurrentRoom)
}
