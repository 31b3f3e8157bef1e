package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrReferenceNotFound is returned when a room or object ID does not exist.
var ErrReferenceNotFound = errors.New("reference not found")

// LowSanityThreshold is the sanity below which rooms show their low-sanity description.
const LowSanityThreshold = 30

// Reader is the read-only view of the world consumed by the engine.
type Reader interface {
	Room(id string) (*Room, error)
	Object(id string) (*GameObject, error)
	FindObjectByName(name string, candidateIDs []string) (string, bool)
	MatchObjects(name string, candidateIDs []string) []string
	RoomDescription(id string, sanity int) (string, error)
	MaxScore() int
	StartRoom() *Room
	InitialFlags() map[string]Value
	Rooms() []*Room
	Objects() []*GameObject
}

// Manager provides thread-safe access to the loaded world.
// It indexes rooms and objects across all zones for O(1) lookup by ID.
type Manager struct {
	mu        sync.RWMutex
	zones     map[string]*Zone
	rooms     map[string]*Room
	objects   map[string]*GameObject
	flags     map[string]Value
	startRoom string
	maxScore  int
}

// NewManager creates a Manager from the given zones.
//
// Precondition: the first zone's start room is the global start room.
// Postcondition: Returns a Manager with all rooms and objects indexed by ID,
// or an error on duplicate zone, room or object IDs.
func NewManager(zones []*Zone) (*Manager, error) {
	m := &Manager{
		zones:   make(map[string]*Zone, len(zones)),
		rooms:   make(map[string]*Room),
		objects: make(map[string]*GameObject),
		flags:   make(map[string]Value),
	}

	for _, z := range zones {
		if _, exists := m.zones[z.ID]; exists {
			return nil, fmt.Errorf("duplicate zone ID: %q", z.ID)
		}
		m.zones[z.ID] = z
		for id, room := range z.Rooms {
			if existing, exists := m.rooms[id]; exists {
				return nil, fmt.Errorf("duplicate room ID %q: in zone %q and %q", id, existing.ZoneID, z.ID)
			}
			m.rooms[id] = room
		}
		for id, obj := range z.Objects {
			if existing, exists := m.objects[id]; exists {
				return nil, fmt.Errorf("duplicate object ID %q: in zone %q and %q", id, existing.ZoneID, z.ID)
			}
			m.objects[id] = obj
			if obj.Treasure {
				m.maxScore += obj.Value
			}
		}
		for k, v := range z.InitialFlags {
			m.flags[k] = v
		}
	}

	if len(zones) > 0 {
		m.startRoom = zones[0].StartRoom
	}

	return m, nil
}

// ValidateReferences checks cross-zone invariants: every exit targets a known
// room, every item reference names a known object, no object is placed in
// more than one location and no container starts over capacity.
//
// Precondition: Manager must be fully constructed with all zones loaded.
// Postcondition: Returns nil if the world is consistent, or an error joining every violation.
func (m *Manager) ValidateReferences() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	placed := make(map[string]string)
	place := func(objID, where string) {
		if _, ok := m.objects[objID]; !ok {
			errs = append(errs, fmt.Errorf("%s: unknown object %q", where, objID))
			return
		}
		if prev, dup := placed[objID]; dup {
			errs = append(errs, fmt.Errorf("object %q placed in both %s and %s", objID, prev, where))
			return
		}
		placed[objID] = where
	}

	for _, roomID := range sortedKeys(m.rooms) {
		room := m.rooms[roomID]
		for _, dir := range room.ExitDirections() {
			if _, ok := m.rooms[room.Exits[dir]]; !ok {
				errs = append(errs, fmt.Errorf("room %q: exit %q targets unknown room %q", room.ID, dir, room.Exits[dir]))
			}
		}
		for _, id := range room.Items {
			place(id, fmt.Sprintf("room %q", room.ID))
		}
	}
	for _, objID := range sortedKeys(m.objects) {
		obj := m.objects[objID]
		used := 0
		for _, id := range obj.Contents {
			place(id, fmt.Sprintf("container %q", obj.ID))
			if item, ok := m.objects[id]; ok {
				used += item.Size
			}
		}
		if used > obj.Capacity {
			errs = append(errs, fmt.Errorf("container %q: contents size %d exceeds capacity %d", obj.ID, used, obj.Capacity))
		}
		for _, id := range append(append([]string{}, obj.Drops...), obj.Key) {
			if id == "" {
				continue
			}
			if _, ok := m.objects[id]; !ok {
				errs = append(errs, fmt.Errorf("object %q references unknown object %q", obj.ID, id))
			}
		}
	}
	for _, roomID := range sortedKeys(m.rooms) {
		for _, id := range m.rooms[roomID].GlobalItems {
			if _, ok := m.objects[id]; !ok {
				errs = append(errs, fmt.Errorf("room %q: unknown global item %q", roomID, id))
				continue
			}
			if where, ok := placed[id]; ok {
				errs = append(errs, fmt.Errorf("global item %q is also placed in %s", id, where))
			}
		}
	}
	if m.startRoom != "" {
		if _, ok := m.rooms[m.startRoom]; !ok {
			errs = append(errs, fmt.Errorf("start room %q not found", m.startRoom))
		}
	}
	return errors.Join(errs...)
}

// Room returns the room with the given ID.
//
// Postcondition: Returns the room, or an error wrapping ErrReferenceNotFound.
func (m *Manager) Room(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", id, ErrReferenceNotFound)
	}
	return r, nil
}

// Object returns the object with the given ID.
//
// Postcondition: Returns the object, or an error wrapping ErrReferenceNotFound.
func (m *Manager) Object(id string) (*GameObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[id]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", id, ErrReferenceNotFound)
	}
	return o, nil
}

// FindObjectByName returns the first candidate matching name under the
// tiered matching rules of MatchObjects.
func (m *Manager) FindObjectByName(name string, candidateIDs []string) (string, bool) {
	matches := m.MatchObjects(name, candidateIDs)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// MatchObjects returns the candidates matching name. Tiers are tried in
// order and the first non-empty tier wins: exact ID (case-insensitive), exact
// name or alias, then whole-word match where every query word appears among
// the object's ID or name words.
//
// Postcondition: Result preserves candidate order and holds no duplicates.
func (m *Manager) MatchObjects(name string, candidateIDs []string) []string {
	query := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if query == "" {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []*GameObject
	seen := make(map[string]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if obj, ok := m.objects[id]; ok {
			candidates = append(candidates, obj)
		}
	}

	tiers := []func(*GameObject) bool{
		func(o *GameObject) bool {
			return strings.EqualFold(o.ID, query) || strings.EqualFold(o.ID, strings.ReplaceAll(query, " ", "_"))
		},
		func(o *GameObject) bool {
			for _, n := range o.Names() {
				if n == query {
					return true
				}
			}
			return false
		},
		func(o *GameObject) bool {
			words := objectWords(o)
			for _, w := range strings.Fields(query) {
				if !words[w] {
					return false
				}
			}
			return true
		},
	}
	for _, match := range tiers {
		var out []string
		for _, o := range candidates {
			if match(o) {
				out = append(out, o.ID)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func objectWords(o *GameObject) map[string]bool {
	words := make(map[string]bool)
	split := func(r rune) bool { return r == '_' || r == '-' || r == ' ' }
	for _, w := range strings.FieldsFunc(strings.ToLower(o.ID), split) {
		words[w] = true
	}
	for _, n := range o.Names() {
		for _, w := range strings.FieldsFunc(n, split) {
			words[w] = true
		}
	}
	return words
}

// RoomDescription returns the description of a room adjusted for sanity.
//
// Postcondition: Returns the low-sanity description when sanity is below
// LowSanityThreshold and one is authored; the regular description otherwise.
func (m *Manager) RoomDescription(id string, sanity int) (string, error) {
	room, err := m.Room(id)
	if err != nil {
		return "", err
	}
	if sanity < LowSanityThreshold && room.LowSanityDescription != "" {
		return room.LowSanityDescription, nil
	}
	return room.Description, nil
}

// MaxScore returns the sum of every treasure value in the world.
func (m *Manager) MaxScore() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxScore
}

// StartRoom returns the global start room.
//
// Postcondition: Returns the start room or nil if the world is empty.
func (m *Manager) StartRoom() *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.startRoom == "" {
		return nil
	}
	return m.rooms[m.startRoom]
}

// InitialFlags returns a copy of the merged initial flags of every zone.
func (m *Manager) InitialFlags() map[string]Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Value, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Rooms returns every room sorted by ID.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, id := range sortedKeys(m.rooms) {
		out = append(out, m.rooms[id])
	}
	return out
}

// Objects returns every object sorted by ID.
func (m *Manager) Objects() []*GameObject {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*GameObject, 0, len(m.objects))
	for _, id := range sortedKeys(m.objects) {
		out = append(out, m.objects[id])
	}
	return out
}

// RoomCount returns the total number of rooms across all zones.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ObjectCount returns the total number of objects across all zones.
func (m *Manager) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ZoneCount returns the number of loaded zones.
func (m *Manager) ZoneCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.zones)
}

// AllZones returns all loaded zones sorted by ID.
//
// Postcondition: Returns a non-nil slice; may be empty.
func (m *Manager) AllZones() []*Zone {
	m.mu.RLock()
	defer m.mu.RUnlock()
	zones := make([]*Zone, 0, len(m.zones))
	for _, z := range m.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones
}
