package engine

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/command"
	"github.com/cory-johannsen/grue/internal/game/condition"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/resolve"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// handlerFunc is the signature of every verb handler.
type handlerFunc func(e *Engine, tc *turnContext) (action.Result, error)

// Handlers returns the verb to handler map.
// Exported so tests can verify every verb of the vocabulary is wired.
func Handlers() map[command.Verb]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for command dispatch.
// To add a verb: add it to command.BuiltinCommands AND add an entry here.
var handlerMap = map[command.Verb]handlerFunc{
	command.VerbGo:        handleGo,
	command.VerbBack:      handleBack,
	command.VerbLook:      handleLook,
	command.VerbExamine:   handleExamine,
	command.VerbRead:      handleRead,
	command.VerbInventory: handleInventory,
	command.VerbScore:     handleScore,
	command.VerbDiagnose:  handleDiagnose,
	command.VerbWait:      handleWait,
	command.VerbRestart:   handleRestart,
	command.VerbHelp:      handleHelp,
	command.VerbTake:      handleTake,
	command.VerbDrop:      handleDrop,
	command.VerbPut:       handlePut,
	command.VerbOpen:      handleOpen,
	command.VerbClose:     handleClose,
	command.VerbLock:      handleLock,
	command.VerbUnlock:    handleUnlock,
	command.VerbTurnOn:    handleTurnOn,
	command.VerbTurnOff:   handleTurnOff,
	command.VerbAttack:    handleAttack,
	command.VerbWear:      handleWear,
	command.VerbRemove:    handleRemove,
	command.VerbEnter:     handleEnter,
	command.VerbExit:      handleExit,
	command.VerbClimb:     handleClimb,
	command.VerbMove:      generic(flavor.CantDoThat),
	command.VerbPush:      generic(flavor.NothingHappens),
	command.VerbPull:      generic(flavor.NothingHappens),
	command.VerbEat:       generic(flavor.CantDoThat),
	command.VerbDrink:     generic(flavor.CantDoThat),
	command.VerbUse:       generic(flavor.NothingHappens),
	command.VerbGive:      generic(flavor.CantDoThat),
	command.VerbTouch:     generic(flavor.NothingHappens),
	command.VerbRing:      generic(flavor.NothingHappens),
	command.VerbBreak:     generic(flavor.CantDoThat),
	command.VerbTie:       generic(flavor.CantDoThat),
	command.VerbWave:      generic(flavor.NothingHappens),
	command.VerbBurn:      generic(flavor.CantDoThat),
	command.VerbSearch:    generic(flavor.NothingHappens),
	command.VerbPray:      generic(flavor.Pray),
	command.VerbListen:    generic(flavor.Listen),
	command.VerbSmell:     generic(flavor.Smell),
	command.VerbJump:      generic(flavor.Jump),
	command.VerbYell:      generic(flavor.Yell),
}

// interact fires an authored interaction for the command's object when one
// matches, otherwise the verb's default behaviour. Puzzles run after either.
func (e *Engine) interact(tc *turnContext, fallback func() (action.Result, error)) (action.Result, error) {
	var res action.Result
	fired := false
	if tc.object != nil {
		res, fired = e.executor.Apply(tc.cmd.Verb, tc.object.ID, tc.gs)
	}
	if !fired {
		var err error
		if res, err = fallback(); err != nil {
			return action.Result{}, err
		}
	}
	e.runPuzzles(tc, &res)
	return res, nil
}

func (e *Engine) cantDoThat() (action.Result, error) {
	return action.Fail(flavor.Text(e.selector, flavor.CantDoThat)), nil
}

// generic handles verbs whose only effects are authored interactions. Without
// an object the verb produces a line of cat; with one and no matching
// interaction it fails.
func generic(cat flavor.Category) handlerFunc {
	return func(e *Engine, tc *turnContext) (action.Result, error) {
		return e.interact(tc, func() (action.Result, error) {
			if tc.object == nil {
				return action.OK(flavor.Text(e.selector, cat)), nil
			}
			return action.Fail(flavor.Text(e.selector, cat)), nil
		})
	}
}

func handleGo(e *Engine, tc *turnContext) (action.Result, error) {
	return e.nav.Move(tc.cmd.Direction, tc.gs)
}

func handleBack(e *Engine, tc *turnContext) (action.Result, error) {
	return e.nav.Back(tc.gs)
}

func handleClimb(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		room, err := e.world.Room(tc.gs.CurrentRoom)
		if err != nil {
			return action.Result{}, err
		}
		if _, ok := room.ExitForDirection(world.Up); ok {
			return e.nav.Move(world.Up, tc.gs)
		}
		return e.cantDoThat()
	})
}

func handleLook(e *Engine, tc *turnContext) (action.Result, error) {
	if tc.object == nil && tc.target != nil {
		tc.object = tc.target
	}
	if tc.object != nil {
		return handleExamine(e, tc)
	}
	desc, err := e.nav.Describe(tc.gs)
	if err != nil {
		return action.Result{}, err
	}
	return action.OK(desc), nil
}

func handleExamine(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return action.OK(e.describeObject(tc.object, tc.gs)), nil
	})
}

func (e *Engine) describeObject(obj *world.GameObject, gs *state.GameState) string {
	lines := []string{obj.Description}
	if obj.Description == "" {
		lines[0] = fmt.Sprintf("You see nothing special about the %s.", obj.Name)
	}
	if condition.Openable(obj) {
		if gs.ObjectFlag(obj, world.StateOpen) {
			lines = append(lines, fmt.Sprintf("The %s is open.", obj.Name))
		} else {
			lines = append(lines, fmt.Sprintf("The %s is closed.", obj.Name))
		}
	}
	if obj.IsContainer() && e.items.Visible(obj.ID, gs) {
		contents := gs.ContainerContents(obj.ID)
		if len(contents) == 0 {
			lines = append(lines, fmt.Sprintf("The %s is empty.", obj.Name))
		} else {
			lines = append(lines, fmt.Sprintf("The %s contains: %s.", obj.Name, strings.Join(e.names(contents), ", ")))
		}
	}
	if e.lamp.IsSource(obj.ID) {
		if e.lamp.IsOn(gs) {
			lines = append(lines, fmt.Sprintf("The %s is on.", obj.Name))
		} else {
			lines = append(lines, fmt.Sprintf("The %s is off.", obj.Name))
		}
	}
	if obj.Kind == world.KindCreature {
		lines = append(lines, fmt.Sprintf("It looks %s.", healthWord(int(gs.ObjectValue(obj, world.StateHealth)), obj.Health)))
	}
	return strings.Join(lines, "\n")
}

func healthWord(health, full int) string {
	switch {
	case full <= 0 || health >= full:
		return "unhurt"
	case health*2 >= full:
		return "wounded"
	default:
		return "badly wounded"
	}
}

func (e *Engine) names(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if obj, err := e.world.Object(id); err == nil {
			out = append(out, obj.Name)
		}
	}
	return out
}

func handleRead(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		if tc.object.Text == "" {
			return action.Fail(fmt.Sprintf("There is nothing written on the %s.", tc.object.Name)), nil
		}
		return action.OK(tc.object.Text), nil
	})
}

func handleInventory(e *Engine, tc *turnContext) (action.Result, error) {
	gs := tc.gs
	lit := func(id string) bool {
		if e.lamp.IsSource(id) {
			return e.lamp.IsOn(gs)
		}
		obj, err := e.world.Object(id)
		return err == nil && obj.Kind == world.KindLight && gs.ObjectFlag(obj, world.StateOn)
	}
	return action.OK(e.items.List(gs, lit)), nil
}

func handleScore(e *Engine, tc *turnContext) (action.Result, error) {
	gs := tc.gs
	maxScore := e.world.MaxScore()
	msg := fmt.Sprintf("Your score is %d of a possible %d, in %d moves.\nThis gives you the rank of %s.",
		gs.Score, maxScore, gs.Moves, rank(gs.Score, maxScore))
	return action.OK(msg), nil
}

func rank(score, maxScore int) string {
	switch {
	case maxScore <= 0 || score <= 0:
		return "Beginner"
	case score >= maxScore:
		return "Master Adventurer"
	case score*4 >= maxScore*3:
		return "Adventurer"
	case score*2 >= maxScore:
		return "Junior Adventurer"
	case score*4 >= maxScore:
		return "Novice Adventurer"
	default:
		return "Amateur Adventurer"
	}
}

func handleDiagnose(e *Engine, tc *turnContext) (action.Result, error) {
	gs := tc.gs
	var msg string
	switch s := gs.Sanity; {
	case s >= 80:
		msg = "Your mind is clear and steady."
	case s >= 50:
		msg = "You feel a little uneasy."
	case s >= world.LowSanityThreshold:
		msg = "Your hands are shaking and the shadows seem to move."
	case s > state.MinSanity:
		msg = "You are on the verge of madness."
	default:
		msg = "Your mind has given way."
	}
	res := action.OK(fmt.Sprintf("%s (sanity %d/%d)", msg, gs.Sanity, state.MaxSanity))
	if gs.FlagSet(e.cfg.CurseFlag) {
		res.Append("A curse weighs upon you.")
	}
	return res, nil
}

func handleWait(e *Engine, tc *turnContext) (action.Result, error) {
	return e.nav.Wait(tc.gs), nil
}

func handleRestart(e *Engine, tc *turnContext) (action.Result, error) {
	tc.gs.Reset(e.world)
	res := action.OK("The world shimmers and begins anew.")
	desc, err := e.nav.Describe(tc.gs)
	if err != nil {
		return action.Result{}, err
	}
	res.Append(desc)
	res.RoomChanged = true
	res.NewRoom = tc.gs.CurrentRoom
	res.InventoryChanged = true
	res.AddDelta(action.DeltaRoom, tc.gs.CurrentRoom, "", 0)
	return res, nil
}

var helpCategories = []string{
	command.CategoryMovement,
	command.CategoryObservation,
	command.CategoryObjects,
	command.CategoryCombat,
	command.CategorySystem,
}

func handleHelp(e *Engine, tc *turnContext) (action.Result, error) {
	byCat := e.registry.CommandsByCategory()
	var b strings.Builder
	b.WriteString("You can type commands such as:")
	for _, cat := range helpCategories {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:", strings.ToUpper(cat[:1])+cat[1:])
		for _, c := range cmds {
			fmt.Fprintf(&b, "\n  %-10s %s (e.g. %q)", c.Name(), c.Help, c.Usage)
		}
	}
	b.WriteString("\nDirections may be abbreviated: n, s, e, w, ne, nw, se, sw, u, d.")
	return action.OK(b.String()), nil
}

func handleTake(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		if tc.target != nil {
			return e.items.TakeFrom(tc.object.ID, tc.target.ID, tc.gs)
		}
		return e.items.Take(tc.object.ID, tc.gs)
	})
}

func handleDrop(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.items.Drop(tc.object.ID, tc.gs)
	})
}

func handlePut(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.items.Put(tc.object.ID, tc.target.ID, tc.gs)
	})
}

func handleOpen(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setOpen(tc, true)
	})
}

func handleClose(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setOpen(tc, false)
	})
}

func (e *Engine) setOpen(tc *turnContext, open bool) (action.Result, error) {
	obj := tc.object
	if !condition.Openable(obj) {
		return e.cantDoThat()
	}
	v := world.Value(0)
	res := action.OK("Closed.")
	if open {
		v = 1
		res = action.OK("Opened.")
		if contents := tc.gs.ContainerContents(obj.ID); obj.IsContainer() && len(contents) > 0 {
			res = action.OK(fmt.Sprintf("Opening the %s reveals %s.", obj.Name, resolve.JoinNames(e.articled(contents), "and")))
		}
	}
	tc.gs.SetObjectValue(obj.ID, world.StateOpen, v)
	res.AddDelta(action.DeltaObjectState, obj.ID, string(world.StateOpen), int(v))
	return res, nil
}

func (e *Engine) articled(ids []string) []string {
	names := e.names(ids)
	for i, n := range names {
		names[i] = "a " + n
	}
	return names
}

func handleLock(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setLocked(tc, true)
	})
}

func handleUnlock(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setLocked(tc, false)
	})
}

// setLocked locks or unlocks the object with its key. The key is taken from
// the instrument, or from the inventory when no instrument was named.
func (e *Engine) setLocked(tc *turnContext, locked bool) (action.Result, error) {
	obj := tc.object
	verb := "unlock"
	if locked {
		verb = "lock"
	}
	if obj.Key == "" {
		return action.Fail(fmt.Sprintf("You can't %s the %s.", verb, obj.Name)), nil
	}
	key := tc.instrument
	if key == nil {
		if !tc.gs.HasItem(obj.Key) {
			return action.Fail(fmt.Sprintf("You need a key to %s the %s.", verb, obj.Name)), nil
		}
		var err error
		if key, err = e.world.Object(obj.Key); err != nil {
			return action.Result{}, err
		}
	}
	if !tc.gs.HasItem(key.ID) {
		return action.Fail(fmt.Sprintf("You don't have the %s.", key.Name)), nil
	}
	if key.ID != obj.Key {
		return action.Fail(fmt.Sprintf("The %s doesn't fit the %s.", key.Name, obj.Name)), nil
	}

	v := world.Value(0)
	res := action.OK(fmt.Sprintf("You unlock the %s with the %s.", obj.Name, key.Name))
	if locked {
		v = 1
		res = action.OK(fmt.Sprintf("You lock the %s with the %s.", obj.Name, key.Name))
	}
	tc.gs.SetObjectValue(obj.ID, world.StateLocked, v)
	res.AddDelta(action.DeltaObjectState, obj.ID, string(world.StateLocked), int(v))
	return res, nil
}

func handleTurnOn(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setOn(tc, true)
	})
}

func handleTurnOff(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.setOn(tc, false)
	})
}

func (e *Engine) setOn(tc *turnContext, on bool) (action.Result, error) {
	obj, gs := tc.object, tc.gs
	if e.lamp.IsSource(obj.ID) {
		wasLit := e.nav.Lit(gs)
		var (
			msg string
			ok  bool
		)
		if on {
			msg, ok = e.lamp.TurnOn(gs)
		} else {
			msg, ok = e.lamp.TurnOff(gs)
		}
		if !ok {
			return action.Fail(msg), nil
		}
		res := action.OK(msg)
		res.AddDelta(action.DeltaFlag, e.cfg.Light.OnFlag, "", boolInt(on))
		if lit := e.nav.Lit(gs); lit != wasLit {
			desc, err := e.nav.Describe(gs)
			if err != nil {
				return action.Result{}, err
			}
			res.Append(desc)
		}
		return res, nil
	}
	if obj.Kind != world.KindLight && obj.Kind != world.KindDevice {
		return e.cantDoThat()
	}
	if gs.ObjectFlag(obj, world.StateOn) == on {
		return action.Fail(fmt.Sprintf("The %s is already %s.", obj.Name, onWord(on))), nil
	}
	gs.SetObjectValue(obj.ID, world.StateOn, world.Value(boolInt(on)))
	res := action.OK(fmt.Sprintf("The %s is now %s.", obj.Name, onWord(on)))
	res.AddDelta(action.DeltaObjectState, obj.ID, string(world.StateOn), boolInt(on))
	return res, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func onWord(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func handleAttack(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		weapon := ""
		if tc.instrument != nil {
			weapon = tc.instrument.ID
		}
		return e.combat.Attack(tc.object.ID, weapon, tc.gs)
	})
}

func handleWear(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.items.Wear(tc.object.ID, tc.gs)
	})
}

func handleRemove(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		return e.items.Remove(tc.object.ID, tc.gs)
	})
}

func handleEnter(e *Engine, tc *turnContext) (action.Result, error) {
	return e.interact(tc, func() (action.Result, error) {
		obj, gs := tc.object, tc.gs
		if obj.Kind != world.KindVehicle {
			return action.Fail(fmt.Sprintf("You can't get into the %s.", obj.Name)), nil
		}
		if gs.Vehicle == obj.ID {
			return action.Fail(fmt.Sprintf("You are already in the %s.", obj.Name)), nil
		}
		if loc := gs.LocationOf(obj.ID); loc.Kind != state.InRoom || loc.ID != gs.CurrentRoom {
			return action.Fail(fmt.Sprintf("The %s must be on the ground to board it.", obj.Name)), nil
		}
		gs.Vehicle = obj.ID
		return action.OK(fmt.Sprintf("You are now in the %s.", obj.Name)), nil
	})
}

func handleExit(e *Engine, tc *turnContext) (action.Result, error) {
	gs := tc.gs
	room, err := e.world.Room(gs.CurrentRoom)
	if err != nil {
		return action.Result{}, err
	}
	if gs.Vehicle == "" {
		if _, ok := room.ExitForDirection(world.Out); ok {
			return e.nav.Move(world.Out, gs)
		}
		return action.Fail("You aren't in anything."), nil
	}
	vehicle, err := e.world.Object(gs.Vehicle)
	if err != nil {
		return action.Result{}, err
	}
	if room.RequiresVehicle {
		return action.Fail(fmt.Sprintf("Leaving the %s here would be fatal.", vehicle.Name)), nil
	}
	gs.Vehicle = ""
	return action.OK(fmt.Sprintf("You climb out of the %s.", vehicle.Name)), nil
}
