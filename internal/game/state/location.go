package state

import (
	"slices"
	"sort"
)

// LocationKind classifies where an object currently lies.
type LocationKind int

// Location kinds.
const (
	Nowhere LocationKind = iota
	InRoom
	InInventory
	InContainer
)

// Location is the single place a movable object occupies.
type Location struct {
	Kind LocationKind
	// ID is the room or container ID; empty for the inventory.
	ID string
}

// HasItem reports whether objectID is in the inventory.
func (gs *GameState) HasItem(objectID string) bool {
	return slices.Contains(gs.Inventory, objectID)
}

// AddItem appends objectID to the inventory.
//
// Postcondition: Returns false if it was already held.
func (gs *GameState) AddItem(objectID string) bool {
	if gs.HasItem(objectID) {
		return false
	}
	gs.Inventory = append(gs.Inventory, objectID)
	return true
}

// RemoveItem removes objectID from the inventory and the worn set.
//
// Postcondition: Returns false if it was not held.
func (gs *GameState) RemoveItem(objectID string) bool {
	if !gs.HasItem(objectID) {
		return false
	}
	gs.Inventory = removeID(gs.Inventory, objectID)
	gs.Worn = removeID(gs.Worn, objectID)
	return true
}

// RoomItems returns a copy of the object IDs lying in a room.
func (gs *GameState) RoomItems(roomID string) []string {
	return slices.Clone(gs.Rooms[roomID])
}

// PlaceInRoom appends objectID to a room's item list.
func (gs *GameState) PlaceInRoom(roomID, objectID string) {
	if slices.Contains(gs.Rooms[roomID], objectID) {
		return
	}
	if gs.Rooms == nil {
		gs.Rooms = make(map[string][]string)
	}
	gs.Rooms[roomID] = append(gs.Rooms[roomID], objectID)
}

// RemoveFromRoom removes objectID from a room's item list.
func (gs *GameState) RemoveFromRoom(roomID, objectID string) bool {
	if !slices.Contains(gs.Rooms[roomID], objectID) {
		return false
	}
	gs.Rooms[roomID] = removeID(gs.Rooms[roomID], objectID)
	return true
}

// ContainerContents returns a copy of the object IDs inside a container.
func (gs *GameState) ContainerContents(containerID string) []string {
	return slices.Clone(gs.Containers[containerID])
}

// PlaceInContainer appends objectID to a container's contents.
func (gs *GameState) PlaceInContainer(containerID, objectID string) {
	if slices.Contains(gs.Containers[containerID], objectID) {
		return
	}
	if gs.Containers == nil {
		gs.Containers = make(map[string][]string)
	}
	gs.Containers[containerID] = append(gs.Containers[containerID], objectID)
}

// RemoveFromContainer removes objectID from a container's contents.
func (gs *GameState) RemoveFromContainer(containerID, objectID string) bool {
	if !slices.Contains(gs.Containers[containerID], objectID) {
		return false
	}
	gs.Containers[containerID] = removeID(gs.Containers[containerID], objectID)
	return true
}

// LocationOf returns where objectID currently lies. Global scenery is not
// tracked here and reports Nowhere.
func (gs *GameState) LocationOf(objectID string) Location {
	if gs.HasItem(objectID) {
		return Location{Kind: InInventory}
	}
	for _, roomID := range sortedListKeys(gs.Rooms) {
		if slices.Contains(gs.Rooms[roomID], objectID) {
			return Location{Kind: InRoom, ID: roomID}
		}
	}
	for _, cid := range sortedListKeys(gs.Containers) {
		if slices.Contains(gs.Containers[cid], objectID) {
			return Location{Kind: InContainer, ID: cid}
		}
	}
	return Location{Kind: Nowhere}
}

// Encloses reports whether innerID lies inside outerID, directly or through
// any chain of nested containers.
func (gs *GameState) Encloses(outerID, innerID string) bool {
	id := innerID
	// A chain can be no longer than the number of containers.
	for range len(gs.Containers) + 1 {
		loc := gs.LocationOf(id)
		if loc.Kind != InContainer {
			return false
		}
		if loc.ID == outerID {
			return true
		}
		id = loc.ID
	}
	return false
}

// Detach removes objectID from whatever location it occupies.
//
// Postcondition: LocationOf(objectID) reports Nowhere. Returns the previous location.
func (gs *GameState) Detach(objectID string) Location {
	loc := gs.LocationOf(objectID)
	switch loc.Kind {
	case InInventory:
		gs.RemoveItem(objectID)
	case InRoom:
		gs.RemoveFromRoom(loc.ID, objectID)
	case InContainer:
		gs.RemoveFromContainer(loc.ID, objectID)
	}
	return loc
}

func sortedListKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
