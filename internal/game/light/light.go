// Package light decides whether the player can see and drains the battery of
// the designated light source as turns pass.
package light

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// Config names the light source and its battery rules.
type Config struct {
	// SourceID is the object ID of the battery-powered light.
	SourceID string `mapstructure:"source_id"`
	// OnFlag is the global flag holding whether the source is lit.
	OnFlag string `mapstructure:"on_flag"`
	// BatteryFlag is the global flag holding the remaining battery.
	BatteryFlag string `mapstructure:"battery_flag"`
	// CurseFlag doubles the drain while set.
	CurseFlag string `mapstructure:"curse_flag"`
	// Drain is the battery consumed per turn while lit.
	Drain int `mapstructure:"drain"`
	// CursedDrain is the battery consumed per turn while lit and cursed.
	CursedDrain int `mapstructure:"cursed_drain"`
	// Warnings are battery levels that trigger a low-battery notification when crossed.
	Warnings []int `mapstructure:"warnings"`
}

// DefaultConfig returns the lamp rules used when none are configured.
func DefaultConfig() Config {
	return Config{
		SourceID:    "lamp",
		OnFlag:      "lamp_on",
		BatteryFlag: "lamp_battery",
		CurseFlag:   "cursed",
		Drain:       1,
		CursedDrain: 2,
		Warnings:    []int{50, 20, 10},
	}
}

// Lamp applies Config to game states.
type Lamp struct {
	cfg   Config
	world world.Reader
}

// New creates a Lamp.
//
// Precondition: w must be non-nil.
func New(w world.Reader, cfg Config) *Lamp {
	warnings := append([]int(nil), cfg.Warnings...)
	sort.Sort(sort.Reverse(sort.IntSlice(warnings)))
	cfg.Warnings = warnings
	return &Lamp{cfg: cfg, world: w}
}

// SourceID returns the object ID of the battery-powered light.
func (l *Lamp) SourceID() string { return l.cfg.SourceID }

// BatteryFlag returns the name of the global flag holding the battery.
func (l *Lamp) BatteryFlag() string { return l.cfg.BatteryFlag }

// IsSource reports whether objectID is the battery-powered light.
func (l *Lamp) IsSource(objectID string) bool {
	return l.cfg.SourceID != "" && objectID == l.cfg.SourceID
}

// Active reports whether the player has a working light: the lamp lit and
// either carried or lying in the current room, or any carried light-kind
// object whose state is on.
func (l *Lamp) Active(gs *state.GameState) bool {
	if gs.FlagSet(l.cfg.OnFlag) {
		if gs.HasItem(l.cfg.SourceID) {
			return true
		}
		if loc := gs.LocationOf(l.cfg.SourceID); loc.Kind == state.InRoom && loc.ID == gs.CurrentRoom {
			return true
		}
	}
	for _, id := range gs.Inventory {
		if id == l.cfg.SourceID {
			continue
		}
		obj, err := l.world.Object(id)
		if err != nil || obj.Kind != world.KindLight {
			continue
		}
		if gs.ObjectFlag(obj, world.StateOn) {
			return true
		}
	}
	return false
}

// Lit reports whether the player can see in room.
func (l *Lamp) Lit(room *world.Room, gs *state.GameState) bool {
	return !room.Dark || l.Active(gs)
}

// Battery returns the remaining battery.
func (l *Lamp) Battery(gs *state.GameState) int {
	return int(gs.Flag(l.cfg.BatteryFlag))
}

// IsOn reports whether the lamp is lit.
func (l *Lamp) IsOn(gs *state.GameState) bool {
	return gs.FlagSet(l.cfg.OnFlag)
}

// TurnOn lights the lamp.
//
// Postcondition: Returns false with the reason when the lamp is already on
// or its battery is exhausted; state is unchanged in that case.
func (l *Lamp) TurnOn(gs *state.GameState) (string, bool) {
	if l.IsOn(gs) {
		return "It is already on.", false
	}
	if l.Battery(gs) <= 0 {
		return "The lamp's battery is dead. Nothing happens.", false
	}
	gs.SetFlag(l.cfg.OnFlag, 1)
	gs.SetObjectValue(l.cfg.SourceID, world.StateOn, 1)
	return "The lamp is now on.", true
}

// TurnOff extinguishes the lamp.
func (l *Lamp) TurnOff(gs *state.GameState) (string, bool) {
	if !l.IsOn(gs) {
		return "It is already off.", false
	}
	gs.SetFlag(l.cfg.OnFlag, 0)
	gs.SetObjectValue(l.cfg.SourceID, world.StateOn, 0)
	return "The lamp is now off.", true
}

// Drain consumes one turn of battery if the lamp is lit.
//
// Postcondition: Returns a notification for every warning level crossed, and
// a "gone out" notification when the battery reaches zero, in which case the
// lamp is switched off.
func (l *Lamp) Drain(gs *state.GameState) []string {
	if !l.IsOn(gs) {
		return nil
	}
	rate := l.cfg.Drain
	if l.cfg.CurseFlag != "" && gs.FlagSet(l.cfg.CurseFlag) {
		rate = l.cfg.CursedDrain
	}
	before := l.Battery(gs)
	after := max(before-rate, 0)
	gs.SetFlag(l.cfg.BatteryFlag, world.Value(after))

	var notes []string
	for _, w := range l.cfg.Warnings {
		if w > 0 && before > w && after <= w {
			notes = append(notes, fmt.Sprintf("Your lamp is growing dim. It has about %d turns of light left.", after))
		}
	}
	if after == 0 {
		gs.SetFlag(l.cfg.OnFlag, 0)
		gs.SetObjectValue(l.cfg.SourceID, world.StateOn, 0)
		notes = append(notes, "Your lamp has gone out.")
	}
	return notes
}
