// Package gametest provides a small fixture world shared by engine package tests.
package gametest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/grue/internal/game/world"
)

// ZoneYAML is a compact house-and-cellar zone exercising every engine rule:
// containers, locks, dark rooms, flag-gated rooms, puzzles, a creature,
// treasures, a vehicle and an ambiguous pair of knives.
const ZoneYAML = `
zone:
  id: house
  name: The White House
  start_room: west_of_house
  initial_flags:
    lamp_on: false
    lamp_battery: 200
  rooms:
    - id: west_of_house
      title: West of House
      description: You are standing in an open field west of a white house.
      exits:
        north: north_of_house
      items: [mailbox]
      global_items: [house]
    - id: north_of_house
      title: North of House
      description: You are facing the north side of a white house.
      exits:
        south: west_of_house
        east: behind_house
        north: river_bank
      items: [cloak, brass_key]
      global_items: [house]
    - id: behind_house
      title: Behind House
      description: You are behind the white house. A small window is in one corner.
      exits:
        north: north_of_house
        west: kitchen
      global_items: [house, kitchen_window]
    - id: kitchen
      title: Kitchen
      description: You are in the kitchen of the white house.
      exits:
        east: behind_house
        west: living_room
        up: attic
      items: [sack, bottle]
      global_items: [kitchen_window]
    - id: attic
      title: Attic
      description: This is the attic. The only exit is a stairway leading down.
      dark: true
      dark_description: It is pitch black. You are likely to be eaten by a grue.
      exits:
        down: kitchen
      items: [rusty_knife, nasty_knife, chest]
    - id: living_room
      title: Living Room
      description: You are in the living room. There is a doorway to the east.
      low_sanity_description: The living room walls are bleeding.
      exits:
        east: kitchen
        down: cellar
      items: [lamp, sword, trophy_case, rug]
    - id: cellar
      title: Cellar
      description: You are in a dark and damp cellar.
      dark: true
      dark_description: It is pitch black.
      sanity_effect: -5
      exits:
        up: living_room
        east: gallery
      items: [troll]
    - id: gallery
      title: Gallery
      description: This is an art gallery.
      flags_required:
        troll_defeated: true
      exits:
        west: cellar
      items: [painting]
    - id: river_bank
      title: River Bank
      description: You are on the bank of a slow river.
      exits:
        south: north_of_house
        east: river
      items: [boat]
    - id: river
      title: Frigid River
      description: You are on the river, drifting with the current.
      requires_vehicle: true
      exits:
        west: river_bank
  objects:
    - id: house
      name: white house
      aliases: [house]
      kind: scenery
      description: The house is a beautiful colonial house.
    - id: mailbox
      name: small mailbox
      aliases: [mailbox, box]
      kind: container
      capacity: 3
      state:
        open: false
      contents: [leaflet]
      description: It is a small mailbox.
    - id: leaflet
      name: leaflet
      aliases: [mail, advertisement]
      takeable: true
      size: 1
      text: WELCOME TO GRUE!
    - id: cloak
      name: velvet cloak
      aliases: [cloak]
      kind: armor
      takeable: true
      wearable: true
      armor: 3
      size: 2
    - id: brass_key
      name: brass key
      aliases: [key]
      takeable: true
      size: 1
    - id: kitchen_window
      name: kitchen window
      aliases: [window]
      kind: scenery
      state:
        open: false
    - id: sack
      name: brown sack
      aliases: [sack]
      kind: container
      takeable: true
      capacity: 4
      size: 3
      state:
        open: false
      contents: [coins]
    - id: coins
      name: bag of coins
      aliases: [coins]
      kind: treasure
      treasure: true
      value: 3
      takeable: true
      size: 2
    - id: bottle
      name: glass bottle
      aliases: [bottle]
      kind: container
      transparent: true
      takeable: true
      capacity: 1
      size: 1
      interactions:
        - verb: drink
          response: The bottle is empty.
    - id: rusty_knife
      name: rusty knife
      aliases: [knife]
      kind: weapon
      takeable: true
      damage: 2
      size: 1
    - id: nasty_knife
      name: nasty knife
      aliases: [knife]
      kind: weapon
      takeable: true
      damage: 3
      size: 1
    - id: chest
      name: wooden chest
      aliases: [chest]
      kind: container
      capacity: 5
      key: brass_key
      state:
        open: false
        locked: true
      contents: [egg]
    - id: egg
      name: jewel-encrusted egg
      aliases: [egg]
      kind: treasure
      treasure: true
      value: 5
      takeable: true
      size: 1
    - id: lamp
      name: brass lantern
      aliases: [lamp, lantern]
      kind: light
      takeable: true
      size: 2
    - id: sword
      name: elvish sword
      aliases: [sword]
      kind: weapon
      takeable: true
      damage: 5
      size: 3
    - id: trophy_case
      name: trophy case
      aliases: [case]
      kind: container
      capacity: 20
      state:
        open: false
    - id: rug
      name: oriental rug
      aliases: [rug, carpet]
      kind: scenery
      interactions:
        - verb: move
          condition:
            moved: false
          response: With a great effort, the rug is moved to one side of the room.
          state_change:
            moved: true
        - verb: move
          response: Having moved the rug previously, you find it impossible to move it again.
    - id: trap_door
      name: trap door
      aliases: [trapdoor, door]
      kind: scenery
      state:
        open: false
    - id: troll
      name: nasty troll
      aliases: [troll]
      kind: creature
      health: 10
      strength: 8
      drops: [axe]
      victory_flag: troll_defeated
    - id: axe
      name: bloody axe
      aliases: [axe]
      kind: weapon
      takeable: true
      damage: 6
      size: 3
    - id: painting
      name: painting
      aliases: [art]
      kind: treasure
      treasure: true
      value: 4
      takeable: true
      size: 3
      prerequisites:
        flags:
          cursed: false
        verbs: [take]
        message: The painting recoils from your touch.
        hint: Whatever cursed you must be lifted first.
      interactions:
        - verb: touch
          response: A chill runs through you.
          sanity_effect: -10
          curse_trigger: true
    - id: boat
      name: magic boat
      aliases: [boat]
      kind: vehicle
`

// World loads ZoneYAML into a validated world manager.
func World(t testing.TB) *world.Manager {
	t.Helper()
	zone, err := world.LoadZoneFromBytes([]byte(ZoneYAML))
	require.NoError(t, err)
	mgr, err := world.NewManager([]*world.Zone{zone})
	require.NoError(t, err)
	require.NoError(t, mgr.ValidateReferences())
	return mgr
}
