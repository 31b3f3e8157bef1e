// Package condition checks object prerequisites and verb-specific state
// invariants before any command mutates the game state.
package condition

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/grue/internal/game/command"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// FailedError reports an unmet prerequisite. Message is shown to the player;
// Hint, when set, is an optional nudge toward the solution.
type FailedError struct {
	Message string
	Hint    string
}

func (e *FailedError) Error() string {
	return e.Message
}

// Checker evaluates prerequisites against a game state. It never mutates state.
type Checker struct {
	world world.Reader
}

// NewChecker creates a Checker.
//
// Precondition: w must be non-nil.
func NewChecker(w world.Reader) *Checker {
	return &Checker{world: w}
}

// Check reports whether verb may act on objectID.
//
// Precondition: objectID names an object in the world.
// Postcondition: Returns nil when every prerequisite holds, a *FailedError
// when one does not, or an error wrapping world.ErrReferenceNotFound.
func (c *Checker) Check(verb command.Verb, objectID string, gs *state.GameState) error {
	obj, err := c.world.Object(objectID)
	if err != nil {
		return err
	}
	if err := c.checkPrerequisites(verb, obj, gs); err != nil {
		return err
	}
	return checkVerbState(verb, obj, gs)
}

func (c *Checker) checkPrerequisites(verb command.Verb, obj *world.GameObject, gs *state.GameState) error {
	p := obj.Prerequisites
	if p == nil || !p.AppliesTo(string(verb)) {
		return nil
	}
	fail := func(def string) error {
		msg := p.Message
		if msg == "" {
			msg = def
		}
		return &FailedError{Message: msg, Hint: p.Hint}
	}

	for _, name := range sortedFlags(p.Flags) {
		if gs.Flag(name) != p.Flags[name] {
			return fail("You can't do that yet.")
		}
	}
	for _, id := range p.Items {
		if gs.HasItem(id) {
			continue
		}
		name := id
		if item, err := c.world.Object(id); err == nil {
			name = item.Name
		}
		return fail(fmt.Sprintf("You need the %s for that.", name))
	}
	if p.Room != "" && p.Room != gs.CurrentRoom {
		return fail("You can't do that here.")
	}
	return nil
}

// Openable reports whether obj carries open/closed state.
func Openable(obj *world.GameObject) bool {
	if obj.IsContainer() || obj.Key != "" {
		return true
	}
	_, ok := obj.DefaultState[world.StateOpen]
	return ok
}

func checkVerbState(verb command.Verb, obj *world.GameObject, gs *state.GameState) error {
	if !Openable(obj) {
		return nil
	}
	open := gs.ObjectFlag(obj, world.StateOpen)
	locked := gs.ObjectFlag(obj, world.StateLocked)
	switch verb {
	case command.VerbOpen:
		if open {
			return &FailedError{Message: fmt.Sprintf("The %s is already open.", obj.Name)}
		}
		if locked {
			return &FailedError{Message: fmt.Sprintf("The %s is locked.", obj.Name)}
		}
	case command.VerbClose:
		if !open {
			return &FailedError{Message: fmt.Sprintf("The %s is already closed.", obj.Name)}
		}
	case command.VerbLock:
		if locked {
			return &FailedError{Message: fmt.Sprintf("The %s is already locked.", obj.Name)}
		}
		if open {
			return &FailedError{Message: fmt.Sprintf("You'll have to close the %s first.", obj.Name)}
		}
	case command.VerbUnlock:
		if !locked {
			return &FailedError{Message: fmt.Sprintf("The %s isn't locked.", obj.Name)}
		}
	}
	return nil
}

func sortedFlags(m map[string]world.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
