package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	zone, err := LoadZoneFromBytes([]byte(validZoneYAML))
	require.NoError(t, err)
	mgr, err := NewManager([]*Zone{zone})
	require.NoError(t, err)
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := testManager(t)
	assert.Equal(t, 3, mgr.RoomCount())
	assert.Equal(t, 4, mgr.ObjectCount())
	assert.Equal(t, 1, mgr.ZoneCount())
	assert.Equal(t, "room_a", mgr.StartRoom().ID)
	assert.Equal(t, 10, mgr.MaxScore())
	assert.NoError(t, mgr.ValidateReferences())
}

func TestNewManager_DuplicateZone(t *testing.T) {
	_, err := NewManager([]*Zone{validTestZone(), validTestZone()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate zone ID")
}

func TestNewManager_DuplicateRoom(t *testing.T) {
	z2 := &Zone{
		ID:        "other",
		Name:      "Other",
		StartRoom: "room_a",
		Rooms: map[string]*Room{
			"room_a": {ID: "room_a", ZoneID: "other", Title: "Duplicate", Description: "Duplicate room_a"},
		},
	}
	_, err := NewManager([]*Zone{validTestZone(), z2})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate room ID")
}

func TestNewManager_DuplicateObject(t *testing.T) {
	z2 := &Zone{
		ID:        "other",
		Name:      "Other",
		StartRoom: "room_x",
		Rooms: map[string]*Room{
			"room_x": {ID: "room_x", ZoneID: "other", Title: "X", Description: "X"},
		},
		Objects: map[string]*GameObject{
			"lamp": {ID: "lamp", ZoneID: "other", Name: "other lamp", Kind: KindItem},
		},
	}
	_, err := NewManager([]*Zone{validTestZone(), z2})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate object ID")
}

func TestManager_AllZonesSorted(t *testing.T) {
	other := &Zone{
		ID:        "cellars",
		Name:      "Cellars",
		StartRoom: "vault",
		Rooms: map[string]*Room{
			"vault": {ID: "vault", ZoneID: "cellars", Title: "Vault", Description: "A vault."},
		},
	}
	mgr, err := NewManager([]*Zone{validTestZone(), other})
	require.NoError(t, err)

	zones := mgr.AllZones()
	require.Len(t, zones, 2)
	assert.Equal(t, "cellars", zones[0].ID)
	assert.Equal(t, "test_zone", zones[1].ID)
	assert.Equal(t, "room_a", mgr.StartRoom().ID, "the first zone given still owns the start room")
}

func TestManager_RoomAndObject(t *testing.T) {
	mgr := testManager(t)

	room, err := mgr.Room("room_a")
	require.NoError(t, err)
	assert.Equal(t, "Room A", room.Title)

	_, err = mgr.Room("nonexistent")
	assert.True(t, errors.Is(err, ErrReferenceNotFound))

	obj, err := mgr.Object("lamp")
	require.NoError(t, err)
	assert.Equal(t, "brass lamp", obj.Name)

	_, err = mgr.Object("nonexistent")
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestManager_ValidateReferences(t *testing.T) {
	zone := validTestZone()
	zone.Rooms["room_b"].Exits[Up] = "nowhere"
	zone.Rooms["room_b"].Items = []string{"lamp", "ghost"}
	mgr, err := NewManager([]*Zone{zone})
	require.NoError(t, err)

	err = mgr.ValidateReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets unknown room \"nowhere\"")
	assert.Contains(t, err.Error(), "unknown object \"ghost\"")
	assert.Contains(t, err.Error(), "object \"lamp\" placed in both")
}

func TestManager_ValidateReferences_ContainerCapacity(t *testing.T) {
	zone := validTestZone()
	zone.Objects["crate"] = &GameObject{ID: "crate", Name: "crate", Kind: KindContainer, Capacity: 1, Contents: []string{"gem"}}
	zone.Objects["gem"] = &GameObject{ID: "gem", Name: "gem", Takeable: true, Size: 9}
	zone.Rooms["room_b"].Items = []string{"crate"}
	mgr, err := NewManager([]*Zone{zone})
	require.NoError(t, err)

	err = mgr.ValidateReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container \"crate\": contents size 9 exceeds capacity 1")

	zone.Objects["gem"].Size = 1
	assert.NoError(t, mgr.ValidateReferences(), "contents exactly at capacity are allowed")
}

func TestManager_ValidateReferences_GlobalAlsoPlaced(t *testing.T) {
	zone := validTestZone()
	zone.Rooms["room_b"].GlobalItems = []string{"lamp"}
	mgr, err := NewManager([]*Zone{zone})
	require.NoError(t, err)
	err = mgr.ValidateReferences()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global item \"lamp\"")
}

func TestManager_MatchObjects_Tiers(t *testing.T) {
	zone := validTestZone()
	zone.Objects["lamp_post"] = &GameObject{ID: "lamp_post", Name: "iron post", Aliases: []string{"lamp post"}, Kind: KindScenery}
	zone.Objects["oil_lamp"] = &GameObject{ID: "oil_lamp", Name: "oil lamp", Kind: KindLight}
	mgr, err := NewManager([]*Zone{zone})
	require.NoError(t, err)
	all := []string{"lamp", "lamp_post", "oil_lamp"}

	// exact id wins over name and word matches
	assert.Equal(t, []string{"lamp"}, mgr.MatchObjects("LAMP", all))
	assert.Equal(t, []string{"lamp_post"}, mgr.MatchObjects("lamp post", all))
	// exact name
	assert.Equal(t, []string{"oil_lamp"}, mgr.MatchObjects("oil lamp", all))
	// whole-word match returns every candidate in candidate order
	assert.Equal(t, []string{"oil_lamp", "lamp_post"}, mgr.MatchObjects("lamp", []string{"oil_lamp", "lamp_post"}))
	assert.Equal(t, []string{"lamp"}, mgr.MatchObjects("brass", all))
	assert.Empty(t, mgr.MatchObjects("sword", all))
	assert.Empty(t, mgr.MatchObjects("   ", all))
	// unknown candidates and duplicates are ignored
	assert.Equal(t, []string{"oil_lamp"}, mgr.MatchObjects("oil", []string{"ghost", "oil_lamp", "oil_lamp"}))

	id, ok := mgr.FindObjectByName("lamp", []string{"oil_lamp", "lamp_post"})
	assert.True(t, ok)
	assert.Equal(t, "oil_lamp", id)
	_, ok = mgr.FindObjectByName("sword", all)
	assert.False(t, ok)
}

func TestManager_RoomDescription(t *testing.T) {
	mgr := testManager(t)

	desc, err := mgr.RoomDescription("room_a", 100)
	require.NoError(t, err)
	assert.Contains(t, desc, "This is room A.")

	desc, err = mgr.RoomDescription("room_a", LowSanityThreshold-1)
	require.NoError(t, err)
	assert.Equal(t, "The walls of room A breathe.", desc)

	desc, err = mgr.RoomDescription("room_b", 0)
	require.NoError(t, err)
	assert.Equal(t, "This is room B.", desc, "rooms without a low-sanity text keep their description")

	_, err = mgr.RoomDescription("nowhere", 50)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestManager_InitialFlagsIsCopy(t *testing.T) {
	mgr := testManager(t)
	flags := mgr.InitialFlags()
	flags["lamp_battery"] = 0
	assert.Equal(t, Value(200), mgr.InitialFlags()["lamp_battery"])
}

func TestPropertyMatchObjectsSubsetOfCandidates(t *testing.T) {
	mgr := testManager(t)
	all := []string{"lamp", "box", "coin", "house"}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, len(all)).Draw(rt, "n")
		candidates := rapid.Permutation(all).Draw(rt, "perm")[:n]
		query := rapid.SampledFrom([]string{"lamp", "brass", "coin", "gold", "box", "white house", "x"}).Draw(rt, "query")
		allowed := make(map[string]bool, n)
		for _, c := range candidates {
			allowed[c] = true
		}
		for _, id := range mgr.MatchObjects(query, candidates) {
			if !allowed[id] {
				rt.Fatalf("match %q not among candidates %v", id, candidates)
			}
		}
	})
}

func TestPropertyRoomsListedOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		zone := genValidZone(rt)
		mgr, err := NewManager([]*Zone{zone})
		if err != nil {
			rt.Fatalf("NewManager: %v", err)
		}
		if err := mgr.ValidateReferences(); err != nil {
			rt.Fatalf("ValidateReferences: %v", err)
		}
		if len(mgr.Rooms()) != len(zone.Rooms) {
			rt.Fatalf("expected %d rooms, got %d", len(zone.Rooms), len(mgr.Rooms()))
		}
	})
}
