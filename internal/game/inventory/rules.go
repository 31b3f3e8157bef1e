// Package inventory implements taking, dropping, containers, wearables and
// treasure scoring over a game state.
package inventory

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// Config holds the carrying and scoring rules.
type Config struct {
	// MaxCarry limits the summed size of carried objects; 0 means unlimited.
	MaxCarry int `mapstructure:"max_carry"`
	// ScoringContainer is the container whose treasures add to the score.
	ScoringContainer string `mapstructure:"scoring_container"`
	// WinThreshold is the score that sets WinFlag; 0 means the world's maximum score.
	WinThreshold int `mapstructure:"win_threshold"`
	// WinFlag is set once when the score reaches WinThreshold.
	WinFlag string `mapstructure:"win_flag"`
}

// DefaultConfig returns the rules used when none are configured.
func DefaultConfig() Config {
	return Config{ScoringContainer: "trophy_case", WinFlag: "won"}
}

// Rules applies Config to game states.
type Rules struct {
	world  world.Reader
	cfg    Config
	logger *zap.Logger
}

// NewRules creates Rules.
//
// Precondition: w and logger must be non-nil.
func NewRules(w world.Reader, cfg Config, logger *zap.Logger) *Rules {
	if cfg.WinThreshold <= 0 {
		cfg.WinThreshold = w.MaxScore()
	}
	return &Rules{world: w, cfg: cfg, logger: logger}
}

// WinThreshold returns the effective score needed to win.
func (r *Rules) WinThreshold() int { return r.cfg.WinThreshold }

// WinFlag returns the flag set on winning.
func (r *Rules) WinFlag() string { return r.cfg.WinFlag }

// Visible reports whether a container's contents can be seen and reached:
// it is a container and it is open or transparent.
func (r *Rules) Visible(containerID string, gs *state.GameState) bool {
	obj, err := r.world.Object(containerID)
	if err != nil || !obj.IsContainer() {
		return false
	}
	return obj.Transparent || gs.ObjectFlag(obj, world.StateOpen)
}

// Carried returns the summed size of every object in the inventory.
func (r *Rules) Carried(gs *state.GameState) int {
	total := 0
	for _, id := range gs.Inventory {
		if obj, err := r.world.Object(id); err == nil {
			total += obj.Size
		}
	}
	return total
}

// Used returns the summed size of a container's contents.
func (r *Rules) Used(containerID string, gs *state.GameState) int {
	total := 0
	for _, id := range gs.ContainerContents(containerID) {
		if obj, err := r.world.Object(id); err == nil {
			total += obj.Size
		}
	}
	return total
}

// Take moves an object from the current room, or from a visible container,
// into the inventory.
//
// Postcondition: On failure gs is unchanged.
func (r *Rules) Take(objectID string, gs *state.GameState) (action.Result, error) {
	obj, err := r.world.Object(objectID)
	if err != nil {
		return action.Result{}, err
	}
	if gs.HasItem(obj.ID) {
		return action.Fail(fmt.Sprintf("You already have the %s.", obj.Name)), nil
	}
	if !obj.Takeable {
		return action.Fail(fmt.Sprintf("You can't take the %s.", obj.Name)), nil
	}
	loc := gs.LocationOf(obj.ID)
	switch {
	case loc.Kind == state.InRoom && loc.ID == gs.CurrentRoom:
	case loc.Kind == state.InContainer && r.reachable(loc.ID, gs):
	default:
		return action.Fail(fmt.Sprintf("You don't see the %s here.", obj.Name)), nil
	}
	if r.cfg.MaxCarry > 0 && r.Carried(gs)+obj.Size > r.cfg.MaxCarry {
		return action.Fail("Your load is too heavy."), nil
	}

	gs.Detach(obj.ID)
	gs.AddItem(obj.ID)
	res := action.OK("Taken.")
	res.InventoryChanged = true
	res.AddDelta(action.DeltaInventory, obj.ID, "add", 1)
	r.logger.Debug("taken", zap.String("object", obj.ID), zap.String("from", loc.ID))
	return res, nil
}

// reachable reports whether a container's contents can be taken: the
// container is visible and lies in the current room or the inventory, or in a
// container that itself lies there.
func (r *Rules) reachable(containerID string, gs *state.GameState) bool {
	if !r.Visible(containerID, gs) {
		return false
	}
	loc := gs.LocationOf(containerID)
	switch loc.Kind {
	case state.InInventory:
		return true
	case state.InRoom:
		return loc.ID == gs.CurrentRoom
	case state.InContainer:
		return r.Visible(loc.ID, gs)
	}
	return false
}

// TakeFrom takes an object out of a specific container.
func (r *Rules) TakeFrom(objectID, containerID string, gs *state.GameState) (action.Result, error) {
	container, err := r.world.Object(containerID)
	if err != nil {
		return action.Result{}, err
	}
	if !container.IsContainer() {
		return action.Fail(fmt.Sprintf("The %s can't hold anything.", container.Name)), nil
	}
	if !r.Visible(container.ID, gs) {
		return action.Fail(fmt.Sprintf("The %s is closed.", container.Name)), nil
	}
	if loc := gs.LocationOf(objectID); loc.Kind != state.InContainer || loc.ID != container.ID {
		name := objectID
		if obj, err := r.world.Object(objectID); err == nil {
			name = obj.Name
		}
		return action.Fail(fmt.Sprintf("The %s isn't in the %s.", name, container.Name)), nil
	}
	return r.Take(objectID, gs)
}

// Drop moves an object from the inventory to the current room.
//
// Postcondition: On failure gs is unchanged.
func (r *Rules) Drop(objectID string, gs *state.GameState) (action.Result, error) {
	obj, err := r.world.Object(objectID)
	if err != nil {
		return action.Result{}, err
	}
	if !gs.HasItem(obj.ID) {
		return action.Fail(fmt.Sprintf("You don't have the %s.", obj.Name)), nil
	}
	gs.RemoveItem(obj.ID)
	gs.PlaceInRoom(gs.CurrentRoom, obj.ID)
	res := action.OK("Dropped.")
	res.InventoryChanged = true
	res.AddDelta(action.DeltaInventory, obj.ID, "remove", 1)
	return res, nil
}

// Put moves an object from the inventory into a container. The container
// must be open or transparent, have room for the object and not lie inside
// it. Putting an
// unscored treasure into the scoring container adds its value to the score.
//
// Postcondition: On failure gs is unchanged and the object stays in the inventory.
func (r *Rules) Put(objectID, containerID string, gs *state.GameState) (action.Result, error) {
	obj, err := r.world.Object(objectID)
	if err != nil {
		return action.Result{}, err
	}
	container, err := r.world.Object(containerID)
	if err != nil {
		return action.Result{}, err
	}
	switch {
	case !gs.HasItem(obj.ID):
		return action.Fail(fmt.Sprintf("You don't have the %s.", obj.Name)), nil
	case obj.ID == container.ID:
		return action.Fail(fmt.Sprintf("You can't put the %s inside itself.", obj.Name)), nil
	case gs.Encloses(obj.ID, container.ID):
		return action.Fail(fmt.Sprintf("You can't put the %s inside the %s.", obj.Name, container.Name)), nil
	case !container.IsContainer():
		return action.Fail(fmt.Sprintf("You can't put anything in the %s.", container.Name)), nil
	case !r.Visible(container.ID, gs):
		return action.Fail(fmt.Sprintf("The %s is closed.", container.Name)), nil
	case r.Used(container.ID, gs)+obj.Size > container.Capacity:
		return action.Fail(fmt.Sprintf("The %s is full.", container.Name)), nil
	}

	gs.RemoveItem(obj.ID)
	gs.PlaceInContainer(container.ID, obj.ID)
	res := action.OK(fmt.Sprintf("You put the %s in the %s.", obj.Name, container.Name))
	res.InventoryChanged = true
	res.AddDelta(action.DeltaInventory, obj.ID, "remove", 1)
	if container.ID == r.cfg.ScoringContainer {
		r.score(obj, gs, &res)
	}
	return res, nil
}

func (r *Rules) score(obj *world.GameObject, gs *state.GameState, res *action.Result) {
	if !obj.Treasure || !gs.MarkScored(obj.ID) {
		return
	}
	gs.Score += obj.Value
	res.AddDelta(action.DeltaScore, obj.ID, "", obj.Value)
	res.Notify(fmt.Sprintf("Your score has gone up by %d points.", obj.Value))
	r.logger.Info("treasure scored",
		zap.String("session", gs.SessionID),
		zap.String("object", obj.ID),
		zap.Int("score", gs.Score),
	)
	if r.cfg.WinFlag != "" && !gs.FlagSet(r.cfg.WinFlag) && gs.Score >= r.cfg.WinThreshold {
		gs.SetFlag(r.cfg.WinFlag, 1)
		res.AddDelta(action.DeltaFlag, r.cfg.WinFlag, "", 1)
		res.Notify("An almost inaudible voice whispers in your ear: \"All the treasures are home. You have won.\"")
	}
}

// Wear puts on a carried wearable object.
func (r *Rules) Wear(objectID string, gs *state.GameState) (action.Result, error) {
	obj, err := r.world.Object(objectID)
	if err != nil {
		return action.Result{}, err
	}
	switch {
	case !gs.HasItem(obj.ID):
		return action.Fail(fmt.Sprintf("You don't have the %s.", obj.Name)), nil
	case !obj.Wearable:
		return action.Fail(fmt.Sprintf("You can't wear the %s.", obj.Name)), nil
	case gs.IsWorn(obj.ID):
		return action.Fail(fmt.Sprintf("You are already wearing the %s.", obj.Name)), nil
	}
	gs.SetWorn(obj.ID, true)
	return action.OK(fmt.Sprintf("You are now wearing the %s.", obj.Name)), nil
}

// Remove takes off a worn object. It stays in the inventory.
func (r *Rules) Remove(objectID string, gs *state.GameState) (action.Result, error) {
	obj, err := r.world.Object(objectID)
	if err != nil {
		return action.Result{}, err
	}
	if !gs.IsWorn(obj.ID) {
		return action.Fail(fmt.Sprintf("You aren't wearing the %s.", obj.Name)), nil
	}
	gs.SetWorn(obj.ID, false)
	return action.OK(fmt.Sprintf("You take off the %s.", obj.Name)), nil
}

// List renders the inventory, including the visible contents of carried containers.
func (r *Rules) List(gs *state.GameState, lightOn func(objectID string) bool) string {
	if len(gs.Inventory) == 0 {
		return "You are empty-handed."
	}
	var b strings.Builder
	b.WriteString("You are carrying:")
	for _, id := range gs.Inventory {
		obj, err := r.world.Object(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n  a %s", obj.Name)
		switch {
		case gs.IsWorn(id):
			b.WriteString(" (being worn)")
		case lightOn != nil && lightOn(id):
			b.WriteString(" (providing light)")
		}
		if !r.Visible(id, gs) {
			continue
		}
		for _, cid := range gs.ContainerContents(id) {
			if c, err := r.world.Object(cid); err == nil {
				fmt.Fprintf(&b, "\n    a %s", c.Name)
			}
		}
	}
	return b.String()
}
