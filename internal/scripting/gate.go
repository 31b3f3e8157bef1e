package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/grue/internal/game/navigation"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// BlockedMessage is shown when can_move returns false without a message.
const BlockedMessage = "You can't go that way."

var _ navigation.Gate = (*Manager)(nil)

// Allow implements navigation.Gate by calling can_move in the departure
// room's zone. The hook allows travel by returning true or nothing, and
// blocks it by returning false or a message string.
func (m *Manager) Allow(from *world.Room, dir world.Direction, to *world.Room, gs *state.GameState) (string, bool) {
	ret, err := m.CallHook(from.ZoneID, HookCanMove, gs,
		lua.LString(from.ID), lua.LString(string(dir)), lua.LString(to.ID))
	if err != nil {
		return "", true
	}
	switch v := ret.(type) {
	case lua.LString:
		if v == "" {
			return BlockedMessage, false
		}
		return string(v), false
	case lua.LBool:
		if !bool(v) {
			return BlockedMessage, false
		}
	}
	return "", true
}
