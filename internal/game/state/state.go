// Package state holds the mutable per-session game state and the operations
// the engine uses to read and change it.
package state

import (
	"slices"
	"time"

	"github.com/cory-johannsen/grue/internal/game/world"
)

// Sanity bounds.
const (
	MinSanity = 0
	MaxSanity = 100
)

// FlagIncapacitated is set when sanity reaches zero.
const FlagIncapacitated = "player_incapacitated"

// PendingDisambiguation records an ambiguous reference awaiting clarification.
type PendingDisambiguation struct {
	Verb       string   `json:"verb"`
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

// GameState is the complete mutable state of one play session.
// It is JSON-serializable so stores can persist it between turns.
type GameState struct {
	SessionID   string `json:"session_id"`
	CurrentRoom string `json:"current_room"`
	// Inventory is ordered and holds no duplicates.
	Inventory []string `json:"inventory"`
	// ObjectStates holds per-object overrides of the world defaults.
	ObjectStates map[string]world.StateMap `json:"object_states"`
	// Rooms maps a room ID to the object IDs lying there.
	Rooms map[string][]string `json:"room_items"`
	// Containers maps a container ID to the object IDs inside it.
	Containers map[string][]string    `json:"containers"`
	Flags      map[string]world.Value `json:"flags"`
	Sanity     int                    `json:"sanity"`
	Score      int                    `json:"score"`
	Turns      int                    `json:"turns"`
	Moves      int                    `json:"moves"`
	History    []string               `json:"history"`
	Vehicle    string                 `json:"vehicle,omitempty"`
	Worn       []string               `json:"worn"`
	Scored     []string               `json:"scored"`
	Pending    *PendingDisambiguation `json:"pending,omitempty"`
	// Version is incremented by stores on every successful save.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates the initial state of a session in world w.
//
// Precondition: w has a start room.
// Postcondition: Returns a state positioned in the start room with item
// locations and flags seeded from the world and sanity at MaxSanity.
func New(sessionID string, w world.Reader) *GameState {
	now := time.Now().UTC()
	gs := &GameState{SessionID: sessionID, CreatedAt: now}
	gs.Reset(w)
	return gs
}

// Reset returns the state to its initial values, keeping the session ID,
// version and creation time.
func (gs *GameState) Reset(w world.Reader) {
	gs.CurrentRoom = ""
	if start := w.StartRoom(); start != nil {
		gs.CurrentRoom = start.ID
	}
	gs.Inventory = []string{}
	gs.ObjectStates = make(map[string]world.StateMap)
	gs.Rooms = make(map[string][]string)
	gs.Containers = make(map[string][]string)
	gs.Flags = w.InitialFlags()
	gs.Sanity = MaxSanity
	gs.Score = 0
	gs.Turns = 0
	gs.Moves = 0
	gs.History = []string{}
	gs.Vehicle = ""
	gs.Worn = []string{}
	gs.Scored = []string{}
	gs.Pending = nil
	gs.UpdatedAt = time.Now().UTC()

	for _, room := range w.Rooms() {
		if len(room.Items) > 0 {
			gs.Rooms[room.ID] = slices.Clone(room.Items)
		}
	}
	for _, obj := range w.Objects() {
		if len(obj.Contents) > 0 {
			gs.Containers[obj.ID] = slices.Clone(obj.Contents)
		}
	}
}

// Clone returns a deep copy of gs.
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Inventory = slices.Clone(gs.Inventory)
	c.History = slices.Clone(gs.History)
	c.Worn = slices.Clone(gs.Worn)
	c.Scored = slices.Clone(gs.Scored)
	c.ObjectStates = make(map[string]world.StateMap, len(gs.ObjectStates))
	for id, sm := range gs.ObjectStates {
		cp := make(world.StateMap, len(sm))
		for k, v := range sm {
			cp[k] = v
		}
		c.ObjectStates[id] = cp
	}
	c.Rooms = cloneLists(gs.Rooms)
	c.Containers = cloneLists(gs.Containers)
	c.Flags = make(map[string]world.Value, len(gs.Flags))
	for k, v := range gs.Flags {
		c.Flags[k] = v
	}
	if gs.Pending != nil {
		p := *gs.Pending
		p.Candidates = slices.Clone(gs.Pending.Candidates)
		c.Pending = &p
	}
	return &c
}

func cloneLists(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// Flag returns the value of a global flag, 0 when unset.
func (gs *GameState) Flag(name string) world.Value {
	return gs.Flags[name]
}

// FlagSet reports whether a global flag is non-zero.
func (gs *GameState) FlagSet(name string) bool {
	return gs.Flags[name].Truthy()
}

// SetFlag sets a global flag.
func (gs *GameState) SetFlag(name string, v world.Value) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]world.Value)
	}
	gs.Flags[name] = v
}

// ObjectValue returns the effective value of key for obj: the session
// override if present, then the object's default.
func (gs *GameState) ObjectValue(obj *world.GameObject, key world.StateKey) world.Value {
	if sm, ok := gs.ObjectStates[obj.ID]; ok {
		if v, ok := sm[key]; ok {
			return v
		}
	}
	return obj.Default(key)
}

// ObjectFlag reports whether the effective value of key for obj is non-zero.
func (gs *GameState) ObjectFlag(obj *world.GameObject, key world.StateKey) bool {
	return gs.ObjectValue(obj, key).Truthy()
}

// SetObjectValue overrides one state key of an object.
func (gs *GameState) SetObjectValue(objectID string, key world.StateKey, v world.Value) {
	if gs.ObjectStates == nil {
		gs.ObjectStates = make(map[string]world.StateMap)
	}
	sm, ok := gs.ObjectStates[objectID]
	if !ok {
		sm = make(world.StateMap)
		gs.ObjectStates[objectID] = sm
	}
	sm[key] = v
}

// MergeObjectState overrides every key in change.
func (gs *GameState) MergeObjectState(objectID string, change world.StateMap) {
	for k, v := range change {
		gs.SetObjectValue(objectID, k, v)
	}
}

// AdjustSanity adds delta to sanity, clamped to [MinSanity, MaxSanity].
//
// Postcondition: Returns the change actually applied. FlagIncapacitated is set
// when sanity reaches MinSanity.
func (gs *GameState) AdjustSanity(delta int) int {
	before := gs.Sanity
	gs.Sanity = min(max(gs.Sanity+delta, MinSanity), MaxSanity)
	if gs.Sanity == MinSanity {
		gs.SetFlag(FlagIncapacitated, 1)
	}
	return gs.Sanity - before
}

// PushHistory records a room the player has left.
func (gs *GameState) PushHistory(roomID string) {
	gs.History = append(gs.History, roomID)
}

// PreviousRoom returns the most recently left room.
func (gs *GameState) PreviousRoom() (string, bool) {
	if len(gs.History) == 0 {
		return "", false
	}
	return gs.History[len(gs.History)-1], true
}

// PopHistory removes the most recently left room.
func (gs *GameState) PopHistory() {
	if len(gs.History) > 0 {
		gs.History = gs.History[:len(gs.History)-1]
	}
}

// IsWorn reports whether objectID is worn.
func (gs *GameState) IsWorn(objectID string) bool {
	return slices.Contains(gs.Worn, objectID)
}

// SetWorn adds or removes objectID from the worn set.
func (gs *GameState) SetWorn(objectID string, worn bool) {
	if worn {
		if !gs.IsWorn(objectID) {
			gs.Worn = append(gs.Worn, objectID)
		}
		return
	}
	gs.Worn = removeID(gs.Worn, objectID)
}

// HasScored reports whether objectID has already been scored.
func (gs *GameState) HasScored(objectID string) bool {
	return slices.Contains(gs.Scored, objectID)
}

// MarkScored records objectID in the scored set.
//
// Postcondition: Returns false if objectID was already scored.
func (gs *GameState) MarkScored(objectID string) bool {
	if gs.HasScored(objectID) {
		return false
	}
	gs.Scored = append(gs.Scored, objectID)
	return true
}

// Touch sets UpdatedAt.
func (gs *GameState) Touch(now time.Time) {
	gs.UpdatedAt = now.UTC()
}

func removeID(list []string, id string) []string {
	i := slices.Index(list, id)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}
