package world

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is an integer flag or object-state value. Booleans are stored as 1 and 0.
type Value int

// Bool converts b to a Value.
func Bool(b bool) Value {
	if b {
		return 1
	}
	return 0
}

// Truthy reports whether v is non-zero.
func (v Value) Truthy() bool { return v != 0 }

// UnmarshalYAML accepts either a YAML boolean or an integer.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if node.Tag == "!!bool" {
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	}
	var i int
	if err := node.Decode(&i); err != nil {
		return fmt.Errorf("value must be a boolean or integer: %w", err)
	}
	*v = Value(i)
	return nil
}

// StateKey names one entry of an object's runtime state.
type StateKey string

// Known state keys. Content may declare additional keys.
const (
	StateOpen   StateKey = "open"
	StateLocked StateKey = "locked"
	StateOn     StateKey = "on"
	StateMoved  StateKey = "moved"
	StateHealth StateKey = "health"
	StateBroken StateKey = "broken"
)

// StateMap holds typed object state.
type StateMap map[StateKey]Value

// Matches reports whether every entry of cond holds in the state resolved by get.
func (cond StateMap) Matches(get func(StateKey) Value) bool {
	for k, want := range cond {
		if get(k) != want {
			return false
		}
	}
	return true
}

// Kind classifies a GameObject.
type Kind string

// Object kinds.
const (
	KindItem      Kind = "item"
	KindContainer Kind = "container"
	KindCreature  Kind = "creature"
	KindDevice    Kind = "device"
	KindScenery   Kind = "scenery"
	KindWeapon    Kind = "weapon"
	KindArmor     Kind = "armor"
	KindLight     Kind = "light"
	KindVehicle   Kind = "vehicle"
	KindTreasure  Kind = "treasure"
)

var validKinds = map[Kind]bool{
	KindItem: true, KindContainer: true, KindCreature: true, KindDevice: true,
	KindScenery: true, KindWeapon: true, KindArmor: true, KindLight: true,
	KindVehicle: true, KindTreasure: true,
}

// Interaction is a declarative verb rule attached to an object.
type Interaction struct {
	// Verb is the canonical verb the rule responds to.
	Verb string
	// Condition lists state values the object must have for the rule to fire.
	Condition StateMap
	// Response is the narrative text emitted when the rule fires.
	Response string
	// StateChange is merged into the object's state.
	StateChange StateMap
	// FlagChange is merged into the global flags.
	FlagChange map[string]Value
	// SanityEffect is added to the player's sanity.
	SanityEffect int
	// CurseTrigger sets the curse flag when true.
	CurseTrigger bool
}

// Prerequisites gate verbs applied to an object.
type Prerequisites struct {
	// Flags must hold these exact values.
	Flags map[string]Value
	// Items must all be in the player's inventory.
	Items []string
	// Room, when set, is the room the player must be in.
	Room string
	// Verbs restricts the prerequisites to these verbs. Empty means every verb
	// except look and examine.
	Verbs []string
	// Message replaces the default failure message.
	Message string
	// Hint is appended to the failure message.
	Hint string
}

// AppliesTo reports whether the prerequisites gate verb.
func (p *Prerequisites) AppliesTo(verb string) bool {
	if len(p.Verbs) == 0 {
		return verb != "look" && verb != "examine"
	}
	for _, v := range p.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// GameObject is the static definition of an object in the world.
type GameObject struct {
	ID           string
	ZoneID       string
	Name         string
	Aliases      []string
	Description  string
	Kind         Kind
	DefaultState StateMap
	Interactions []Interaction
	Takeable     bool
	Treasure     bool
	Value        int
	Size         int
	// Capacity is the total size a container can hold.
	Capacity    int
	Transparent bool
	// Contents lists the object IDs initially inside this container.
	Contents []string
	// Key is the object ID that locks and unlocks this object.
	Key           string
	Prerequisites *Prerequisites
	Damage        int
	Armor         int
	Health        int
	// Strength is the counterattack strength of a creature. Zero uses the engine default.
	Strength int
	// Drops lists object IDs left in the room when the creature is defeated.
	Drops       []string
	VictoryFlag string
	Wearable    bool
	// Text is shown by READ.
	Text string
}

// Default returns the object's default value for key: the authored default
// state when present, otherwise Health for the health key and 0 for the rest.
func (o *GameObject) Default(key StateKey) Value {
	if v, ok := o.DefaultState[key]; ok {
		return v
	}
	if key == StateHealth {
		return Value(o.Health)
	}
	return 0
}

// IsContainer reports whether the object can hold other objects.
func (o *GameObject) IsContainer() bool {
	return o.Kind == KindContainer || o.Capacity > 0
}

// Names returns the display name followed by every alias, lowercased.
func (o *GameObject) Names() []string {
	names := make([]string, 0, len(o.Aliases)+1)
	names = append(names, strings.ToLower(o.Name))
	for _, a := range o.Aliases {
		names = append(names, strings.ToLower(a))
	}
	return names
}

// Validate checks that the object satisfies its invariants.
//
// Precondition: o is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (o *GameObject) Validate() error {
	var errs []error
	if o.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if o.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[o.Kind] {
		errs = append(errs, fmt.Errorf("kind %q is not recognised", o.Kind))
	}
	if o.Size < 0 {
		errs = append(errs, errors.New("size must be >= 0"))
	}
	if o.Capacity < 0 {
		errs = append(errs, errors.New("capacity must be >= 0"))
	}
	if o.Treasure && o.Value <= 0 {
		errs = append(errs, errors.New("treasure value must be > 0"))
	}
	if len(o.Contents) > 0 && !o.IsContainer() {
		errs = append(errs, errors.New("contents declared on a non-container"))
	}
	for i, in := range o.Interactions {
		if in.Verb == "" {
			errs = append(errs, fmt.Errorf("interaction %d: verb must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("object %q: %w", o.ID, errors.Join(errs...))
	}
	return nil
}
