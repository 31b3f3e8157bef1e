// Package navigation moves the player between rooms and renders what they see.
package navigation

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/light"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// DefaultMoodThreshold is the sanity swing on entry that produces a mood notification.
const DefaultMoodThreshold = 5

// DefaultDarkDescription is shown in an unlit dark room with no authored dark text.
const DefaultDarkDescription = "It is pitch black. You are likely to be eaten by a grue."

// Gate decides whether a single exit may be used.
type Gate interface {
	// Allow returns ok=false and the reason when the move from -> to via dir is blocked.
	Allow(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (reason string, ok bool)
}

// GateFunc adapts a function to Gate.
type GateFunc func(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (string, bool)

// Allow calls f.
func (f GateFunc) Allow(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (string, bool) {
	return f(from, dir, to, gs)
}

// Navigator is the room-navigation state machine.
type Navigator struct {
	world         world.Reader
	lamp          *light.Lamp
	gates         []Gate
	moodThreshold int
	logger        *zap.Logger
}

// NewNavigator creates a Navigator. A moodThreshold <= 0 uses DefaultMoodThreshold.
//
// Precondition: w, lamp and logger must be non-nil.
func NewNavigator(w world.Reader, lamp *light.Lamp, moodThreshold int, logger *zap.Logger) *Navigator {
	if moodThreshold <= 0 {
		moodThreshold = DefaultMoodThreshold
	}
	return &Navigator{world: w, lamp: lamp, moodThreshold: moodThreshold, logger: logger}
}

// AddGate registers a gate consulted on every move, after the room's flag requirements.
func (n *Navigator) AddGate(g Gate) {
	n.gates = append(n.gates, g)
}

// Move walks through the exit in direction dir.
//
// Precondition: gs.CurrentRoom names a room in the world.
// Postcondition: On success the player is in the destination, the origin is
// pushed to history, Turns and Moves each increase by one, the destination's
// sanity effect is applied and the light source drains one turn. On failure
// gs is unchanged. The error is non-nil only for a corrupt state or world.
func (n *Navigator) Move(dir world.Direction, gs *state.GameState) (action.Result, error) {
	from, err := n.world.Room(gs.CurrentRoom)
	if err != nil {
		return action.Result{}, fmt.Errorf("current room: %w", err)
	}
	targetID, ok := from.ExitForDirection(dir)
	if !ok {
		return action.Fail("You can't go that way."), nil
	}
	to, err := n.world.Room(targetID)
	if err != nil {
		return action.Result{}, fmt.Errorf("exit %s of %q: %w", dir, from.ID, err)
	}
	if reason, ok := n.allowed(from, dir, to, gs); !ok {
		n.logger.Debug("move blocked",
			zap.String("from", from.ID),
			zap.String("direction", string(dir)),
			zap.String("to", to.ID),
		)
		return action.Fail(reason), nil
	}

	res := action.Result{Success: true, RoomChanged: true, NewRoom: to.ID}
	gs.PushHistory(from.ID)
	gs.CurrentRoom = to.ID
	gs.Turns++
	gs.Moves++
	res.AddDelta(action.DeltaRoom, to.ID, "", 0)
	if gs.Vehicle != "" && gs.RemoveFromRoom(from.ID, gs.Vehicle) {
		gs.PlaceInRoom(to.ID, gs.Vehicle)
	}

	if to.SanityEffect != 0 {
		applied := gs.AdjustSanity(to.SanityEffect)
		res.SanityDelta = applied
		if applied != 0 {
			res.AddDelta(action.DeltaSanity, "", "", applied)
		}
		res.Notify(n.mood(applied))
	}

	desc, err := n.Describe(gs)
	if err != nil {
		return action.Result{}, err
	}
	res.Message = desc
	n.drain(&res, gs)

	n.logger.Debug("moved",
		zap.String("from", from.ID),
		zap.String("direction", string(dir)),
		zap.String("to", to.ID),
		zap.Int("turns", gs.Turns),
	)
	return res, nil
}

func (n *Navigator) allowed(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (string, bool) {
	names := make([]string, 0, len(to.FlagsRequired))
	for name := range to.FlagsRequired {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if gs.Flag(name) != to.FlagsRequired[name] {
			return fmt.Sprintf("Something prevents you from going %s.", dir), false
		}
	}
	for _, g := range n.gates {
		if reason, ok := g.Allow(from, dir, to, gs); !ok {
			if reason == "" {
				reason = "You can't go that way."
			}
			return reason, false
		}
	}
	if to.RequiresVehicle && gs.Vehicle == "" {
		return "You would need a boat to go there.", false
	}
	return "", true
}

func (n *Navigator) mood(applied int) string {
	switch {
	case applied <= -n.moodThreshold:
		return "A wave of dread washes over you."
	case applied >= n.moodThreshold:
		return "You feel a little more at ease."
	}
	return ""
}

// Back returns to the room the player most recently left, provided an exit
// of the current room leads there.
//
// Postcondition: On success the history entry is consumed rather than grown.
func (n *Navigator) Back(gs *state.GameState) (action.Result, error) {
	prev, ok := gs.PreviousRoom()
	if !ok {
		return action.Fail("You haven't been anywhere else yet."), nil
	}
	room, err := n.world.Room(gs.CurrentRoom)
	if err != nil {
		return action.Result{}, fmt.Errorf("current room: %w", err)
	}
	for _, dir := range room.ExitDirections() {
		if room.Exits[dir] != prev {
			continue
		}
		res, err := n.Move(dir, gs)
		if err != nil || !res.Success {
			return res, err
		}
		gs.PopHistory()
		gs.PopHistory()
		return res, nil
	}
	return action.Fail("You can't find the way back from here."), nil
}

// Wait lets one turn pass.
func (n *Navigator) Wait(gs *state.GameState) action.Result {
	gs.Turns++
	res := action.OK("Time passes.")
	n.drain(&res, gs)
	return res
}

func (n *Navigator) drain(res *action.Result, gs *state.GameState) {
	wasOn := n.lamp.IsOn(gs)
	for _, note := range n.lamp.Drain(gs) {
		res.Notify(note)
	}
	if wasOn {
		res.AddDelta(action.DeltaFlag, n.lamp.BatteryFlag(), "", n.lamp.Battery(gs))
	}
}

// Lit reports whether the player can see in the current room.
func (n *Navigator) Lit(gs *state.GameState) bool {
	room, err := n.world.Room(gs.CurrentRoom)
	if err != nil {
		return false
	}
	return n.lamp.Lit(room, gs)
}

// Describe renders the current room: title, sanity-dependent description,
// visible items and exits, or the dark description when the room is unlit.
func (n *Navigator) Describe(gs *state.GameState) (string, error) {
	room, err := n.world.Room(gs.CurrentRoom)
	if err != nil {
		return "", fmt.Errorf("current room: %w", err)
	}
	if !n.lamp.Lit(room, gs) {
		if room.DarkDescription != "" {
			return room.DarkDescription, nil
		}
		return DefaultDarkDescription, nil
	}
	desc, err := n.world.RoomDescription(room.ID, gs.Sanity)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(room.Title)
	b.WriteString("\n")
	b.WriteString(desc)
	for _, id := range gs.RoomItems(room.ID) {
		obj, err := n.world.Object(id)
		if err != nil || obj.Kind == world.KindScenery {
			continue
		}
		fmt.Fprintf(&b, "\nThere is a %s here.", obj.Name)
		if gs.Vehicle == obj.ID {
			b.WriteString(" You are in it.")
		}
		if line := n.contentsLine(obj, gs); line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	if dirs := room.ExitDirections(); len(dirs) > 0 {
		words := make([]string, len(dirs))
		for i, d := range dirs {
			words[i] = string(d)
		}
		fmt.Fprintf(&b, "\nExits: %s.", strings.Join(words, ", "))
	}
	return b.String(), nil
}

func (n *Navigator) contentsLine(obj *world.GameObject, gs *state.GameState) string {
	if !obj.IsContainer() || !(obj.Transparent || gs.ObjectFlag(obj, world.StateOpen)) {
		return ""
	}
	contents := gs.ContainerContents(obj.ID)
	if len(contents) == 0 {
		return ""
	}
	names := make([]string, 0, len(contents))
	for _, id := range contents {
		if c, err := n.world.Object(id); err == nil {
			names = append(names, c.Name)
		}
	}
	return fmt.Sprintf("The %s contains: %s.", obj.Name, strings.Join(names, ", "))
}
