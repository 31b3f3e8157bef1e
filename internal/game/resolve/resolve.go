// Package resolve maps free-text object references to canonical object IDs
// among the objects the player can currently perceive.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// NotFoundError indicates no object in scope matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("you don't see any %s here", e.Name)
}

// Message is the sentence shown to the player.
func (e *NotFoundError) Message() string {
	return fmt.Sprintf("You don't see any %s here.", e.Name)
}

// AmbiguousError indicates several objects in scope matched a name.
type AmbiguousError struct {
	Name string
	// Candidates are the matching object IDs.
	Candidates []string
	// Names are the display names of Candidates, in the same order.
	Names []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous %s: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// Message asks the player to choose among the candidates.
func (e *AmbiguousError) Message() string {
	return fmt.Sprintf("Which %s do you mean, %s?", e.Name, JoinNames(e.Names, "or"))
}

// Lighting reports whether the player can see in a room.
type Lighting interface {
	Lit(room *world.Room, gs *state.GameState) bool
}

// Resolver finds objects by name within the player's scope.
type Resolver struct {
	world world.Reader
	light Lighting
}

// New creates a Resolver. A nil light treats every room as lit.
//
// Precondition: w must be non-nil.
func New(w world.Reader, light Lighting) *Resolver {
	return &Resolver{world: w, light: light}
}

// Scope returns the object IDs the player can refer to: items in the current
// room, the room's global items, the inventory, and the contents of any open
// or transparent container among those. Containers inside containers are not
// expanded. Room items and globals are out of scope while the room is dark.
//
// Postcondition: Result holds no duplicates.
func (r *Resolver) Scope(gs *state.GameState) []string {
	var scope []string
	add := func(ids ...string) {
		for _, id := range ids {
			if !slices.Contains(scope, id) {
				scope = append(scope, id)
			}
		}
	}

	if room, err := r.world.Room(gs.CurrentRoom); err == nil {
		if r.light == nil || r.light.Lit(room, gs) {
			add(gs.RoomItems(room.ID)...)
			add(room.GlobalItems...)
		}
	}
	add(gs.Inventory...)

	top := slices.Clone(scope)
	for _, id := range top {
		if r.Visible(id, gs) {
			add(gs.ContainerContents(id)...)
		}
	}
	return scope
}

// Visible reports whether a container's contents can be seen: it is open or transparent.
func (r *Resolver) Visible(containerID string, gs *state.GameState) bool {
	obj, err := r.world.Object(containerID)
	if err != nil || !obj.IsContainer() {
		return false
	}
	return obj.Transparent || gs.ObjectFlag(obj, world.StateOpen)
}

// FindMatches returns every in-scope object matching name.
func (r *Resolver) FindMatches(name string, gs *state.GameState) []string {
	return r.world.MatchObjects(name, r.Scope(gs))
}

// Resolve maps name to exactly one in-scope object ID.
//
// Postcondition: Returns the ID, a *NotFoundError when nothing matches, or an
// *AmbiguousError listing every candidate when several match.
func (r *Resolver) Resolve(name string, gs *state.GameState) (string, error) {
	return r.ResolveAmong(name, r.Scope(gs))
}

// ResolveAmong resolves name against an explicit candidate list.
func (r *Resolver) ResolveAmong(name string, candidates []string) (string, error) {
	matches := r.world.MatchObjects(name, candidates)
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Name: name, Candidates: matches, Names: r.Names(matches)}
	}
}

// Names returns the display names of ids, prefixed with "the".
func (r *Resolver) Names(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if obj, err := r.world.Object(id); err == nil {
			names = append(names, "the "+obj.Name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

// JoinNames joins names as "a, b or c" using conj as the final separator.
func JoinNames(names []string, conj string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " " + conj + " " + names[len(names)-1]
}
