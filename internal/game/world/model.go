// Package world provides the static game world: zones, rooms, exits, directions and objects.
package world

import (
	"errors"
	"fmt"
	"sort"
)

// Direction represents a compass direction or vertical/threshold movement.
type Direction string

// Standard compass directions, vertical movements and thresholds.
const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
	Up        Direction = "up"
	Down      Direction = "down"
	In        Direction = "in"
	Out       Direction = "out"
)

// StandardDirections contains every direction an exit may use, in display order.
var StandardDirections = []Direction{
	North, South, East, West,
	Northeast, Northwest, Southeast, Southwest,
	Up, Down, In, Out,
}

var directionAbbrev = map[string]Direction{
	"n": North, "s": South, "e": East, "w": West,
	"ne": Northeast, "nw": Northwest, "se": Southeast, "sw": Southwest,
	"u": Up, "d": Down,
}

// IsStandard reports whether d is one of the standard directions.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Opposite returns the opposite of a standard direction.
// For unknown directions, it returns an empty string.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Northeast:
		return Southwest
	case Southwest:
		return Northeast
	case Northwest:
		return Southeast
	case Southeast:
		return Northwest
	case Up:
		return Down
	case Down:
		return Up
	case In:
		return Out
	case Out:
		return In
	default:
		return ""
	}
}

// ParseDirection maps a direction word or its abbreviation to a Direction.
//
// Postcondition: Returns (dir, true) for a recognised word, ("", false) otherwise.
func ParseDirection(word string) (Direction, bool) {
	if d, ok := directionAbbrev[word]; ok {
		return d, true
	}
	d := Direction(word)
	if d.IsStandard() {
		return d, true
	}
	return "", false
}

// Room represents a location in the game world.
type Room struct {
	// ID uniquely identifies this room across all zones.
	ID string
	// ZoneID identifies the zone this room belongs to.
	ZoneID string
	// Title is the short display name of the room.
	Title string
	// Description is the room description shown when lit and the player is sane.
	Description string
	// LowSanityDescription replaces Description when sanity falls below LowSanityThreshold.
	LowSanityDescription string
	// DarkDescription is shown when the room is dark and no light source is active.
	DarkDescription string
	// Exits maps a direction to the destination room ID.
	Exits map[Direction]string
	// Items lists the object IDs initially lying in the room.
	Items []string
	// GlobalItems lists scenery object IDs that are always visible here and never move.
	GlobalItems []string
	// FlagsRequired lists flags that must hold these exact values for the room to be entered.
	FlagsRequired map[string]Value
	// SanityEffect is added to the player's sanity on entry.
	SanityEffect int
	// Dark marks the room as unlit.
	Dark bool
	// RequiresVehicle marks the room as reachable only while in a vehicle.
	RequiresVehicle bool
}

// ExitForDirection returns the destination of the exit in the given direction.
//
// Postcondition: Returns (roomID, true) if found, or ("", false) otherwise.
func (r *Room) ExitForDirection(dir Direction) (string, bool) {
	target, ok := r.Exits[dir]
	return target, ok
}

// ExitDirections returns the room's exit directions in StandardDirections order.
func (r *Room) ExitDirections() []Direction {
	dirs := make([]Direction, 0, len(r.Exits))
	for _, d := range StandardDirections {
		if _, ok := r.Exits[d]; ok {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// HasGlobal reports whether objectID is one of the room's global items.
func (r *Room) HasGlobal(objectID string) bool {
	for _, id := range r.GlobalItems {
		if id == objectID {
			return true
		}
	}
	return false
}

// Zone groups related rooms and objects into a themed area.
type Zone struct {
	// ID uniquely identifies this zone.
	ID string
	// Name is the display name of the zone.
	Name string
	// Description summarizes the zone's theme.
	Description string
	// StartRoom is the ID of the default entry room.
	StartRoom string
	// InitialFlags seeds global flags for new sessions.
	InitialFlags map[string]Value
	// ScriptDir is the path to Lua scripts for this zone. Empty = no scripts.
	ScriptDir string
	// ScriptInstructionLimit overrides the default instruction limit for this zone's VM.
	ScriptInstructionLimit int
	// Rooms contains all rooms in this zone, keyed by room ID.
	Rooms map[string]*Room
	// Objects contains all objects defined by this zone, keyed by object ID.
	Objects map[string]*GameObject
}

// Validate checks zone invariants that can be verified without other zones.
//
// Postcondition: Returns nil if valid, or an error joining every violation found.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone ID must not be empty")
	}
	var errs []error
	if z.Name == "" {
		errs = append(errs, fmt.Errorf("zone %q: name must not be empty", z.ID))
	}
	if z.StartRoom == "" {
		errs = append(errs, fmt.Errorf("zone %q: start_room must not be empty", z.ID))
	}
	if len(z.Rooms) == 0 {
		errs = append(errs, fmt.Errorf("zone %q: must contain at least one room", z.ID))
	} else if _, ok := z.Rooms[z.StartRoom]; z.StartRoom != "" && !ok {
		errs = append(errs, fmt.Errorf("zone %q: start_room %q not found in rooms", z.ID, z.StartRoom))
	}

	for _, id := range sortedKeys(z.Rooms) {
		room := z.Rooms[id]
		if room.ID != id {
			errs = append(errs, fmt.Errorf("zone %q: room key %q does not match room ID %q", z.ID, id, room.ID))
		}
		if room.Title == "" {
			errs = append(errs, fmt.Errorf("zone %q: room %q: title must not be empty", z.ID, id))
		}
		if room.Description == "" {
			errs = append(errs, fmt.Errorf("zone %q: room %q: description must not be empty", z.ID, id))
		}
		for _, dir := range room.ExitDirections() {
			if room.Exits[dir] == "" {
				errs = append(errs, fmt.Errorf("zone %q: room %q: exit %q has empty target", z.ID, id, dir))
			}
		}
		for dir := range room.Exits {
			if !dir.IsStandard() {
				errs = append(errs, fmt.Errorf("zone %q: room %q: unknown exit direction %q", z.ID, id, dir))
			}
		}
	}

	for _, id := range sortedKeys(z.Objects) {
		obj := z.Objects[id]
		if obj.ID != id {
			errs = append(errs, fmt.Errorf("zone %q: object key %q does not match object ID %q", z.ID, id, obj.ID))
		}
		if err := obj.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("zone %q: %w", z.ID, err))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
