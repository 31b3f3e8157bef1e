package engine

import (
	"fmt"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/command"
	"github.com/cory-johannsen/grue/internal/game/navigation"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// Object IDs and flags of the hardcoded house puzzles. A puzzle whose objects
// are absent from the loaded world never fires.
const (
	rugID            = "rug"
	trapDoorID       = "trap_door"
	kitchenWindowID  = "kitchen_window"
	flagTrapRevealed = "trap_door_revealed"
)

// passage is an exit that only opens while a door object is open.
type passage struct {
	room string
	dir  world.Direction
	door string
	// hiddenUntil, when set, names a flag that must be set before the exit
	// exists at all.
	hiddenUntil string
}

var passages = []passage{
	{room: "living_room", dir: world.Down, door: trapDoorID, hiddenUntil: flagTrapRevealed},
	{room: "behind_house", dir: world.West, door: kitchenWindowID},
	{room: "kitchen", dir: world.East, door: kitchenWindowID},
}

func (e *Engine) passageGate(p passage) navigation.Gate {
	return navigation.GateFunc(func(from *world.Room, dir world.Direction, _ *world.Room, gs *state.GameState) (string, bool) {
		if from.ID != p.room || dir != p.dir {
			return "", true
		}
		door, err := e.world.Object(p.door)
		if err != nil {
			return "", true
		}
		if p.hiddenUntil != "" && !gs.FlagSet(p.hiddenUntil) {
			return "You can't go that way.", false
		}
		if !gs.ObjectFlag(door, world.StateOpen) {
			return fmt.Sprintf("The %s is closed.", door.Name), false
		}
		return "", true
	})
}

// puzzle inspects a completed command and may extend its result.
type puzzle func(e *Engine, tc *turnContext, res *action.Result)

var puzzles = []puzzle{
	revealTrapDoor,
	openKitchenWindow,
}

func (e *Engine) runPuzzles(tc *turnContext, res *action.Result) {
	if tc.object == nil || !res.Success {
		return
	}
	for _, p := range puzzles {
		p(e, tc, res)
	}
}

// revealTrapDoor places the trap door under the rug once the rug is moved.
func revealTrapDoor(e *Engine, tc *turnContext, res *action.Result) {
	gs := tc.gs
	if tc.cmd.Verb != command.VerbMove || tc.object.ID != rugID || gs.FlagSet(flagTrapRevealed) {
		return
	}
	if !gs.ObjectFlag(tc.object, world.StateMoved) {
		return
	}
	door, err := e.world.Object(trapDoorID)
	if err != nil {
		return
	}
	gs.PlaceInRoom(gs.CurrentRoom, door.ID)
	gs.SetFlag(flagTrapRevealed, 1)
	res.AddDelta(action.DeltaFlag, flagTrapRevealed, "", 1)
	res.Append(fmt.Sprintf("With the rug moved, the dusty cover of a closed %s appears.", door.Name))
	e.logger.Debug("trap door revealed")
}

func openKitchenWindow(_ *Engine, tc *turnContext, res *action.Result) {
	if tc.cmd.Verb != command.VerbOpen || tc.object.ID != kitchenWindowID {
		return
	}
	res.Message = "With great effort, you open the window far enough to allow entry."
}
