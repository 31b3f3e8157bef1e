// Package action defines Result, the only contract between the engine and its callers.
package action

import "strings"

// DeltaKind classifies a state change reported in a Result.
type DeltaKind string

// Delta kinds.
const (
	DeltaRoom        DeltaKind = "room"
	DeltaInventory   DeltaKind = "inventory"
	DeltaObjectState DeltaKind = "object_state"
	DeltaFlag        DeltaKind = "flag"
	DeltaScore       DeltaKind = "score"
	DeltaSanity      DeltaKind = "sanity"
)

// Delta describes one state change.
type Delta struct {
	Kind DeltaKind `json:"kind"`
	// Target is the room, object or flag affected.
	Target string `json:"target,omitempty"`
	// Key is the state key for object_state deltas, or "add"/"remove" for inventory.
	Key   string `json:"key,omitempty"`
	Value int    `json:"value"`
}

// Result is the outcome of executing one command.
type Result struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	RoomChanged      bool     `json:"room_changed"`
	NewRoom          string   `json:"new_room,omitempty"`
	InventoryChanged bool     `json:"inventory_changed"`
	Deltas           []Delta  `json:"deltas,omitempty"`
	Notifications    []string `json:"notifications,omitempty"`
	SanityDelta      int      `json:"sanity_delta"`
	// Fault marks an unexpected internal error. Callers should end the session.
	Fault bool `json:"fault,omitempty"`
}

// OK returns a successful Result with the given message.
func OK(msg string) Result {
	return Result{Success: true, Message: msg}
}

// Fail returns a failed Result with the given message.
func Fail(msg string) Result {
	return Result{Message: msg}
}

// AddDelta appends a delta.
func (r *Result) AddDelta(kind DeltaKind, target, key string, value int) {
	r.Deltas = append(r.Deltas, Delta{Kind: kind, Target: target, Key: key, Value: value})
}

// Notify appends a side notification.
func (r *Result) Notify(msg string) {
	if msg != "" {
		r.Notifications = append(r.Notifications, msg)
	}
}

// Append adds a paragraph to the message.
func (r *Result) Append(text string) {
	if text == "" {
		return
	}
	if r.Message == "" {
		r.Message = text
		return
	}
	r.Message += "\n" + text
}

// Merge folds other into r. Success is true if either succeeded; flags are
// or-ed; messages, deltas and notifications are concatenated.
func (r *Result) Merge(other Result) {
	r.Success = r.Success || other.Success
	r.Append(other.Message)
	if other.RoomChanged {
		r.RoomChanged = true
		r.NewRoom = other.NewRoom
	}
	r.InventoryChanged = r.InventoryChanged || other.InventoryChanged
	r.Deltas = append(r.Deltas, other.Deltas...)
	r.Notifications = append(r.Notifications, other.Notifications...)
	r.SanityDelta += other.SanityDelta
	r.Fault = r.Fault || other.Fault
}

// Text renders the message followed by every notification.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Notifications)+1)
	if r.Message != "" {
		parts = append(parts, r.Message)
	}
	parts = append(parts, r.Notifications...)
	return strings.Join(parts, "\n")
}
