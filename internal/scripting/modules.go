package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/world"
)

// registerModules defines the engine table in vm's state. Its functions read
// the session bound to vm for the duration of a hook call; outside a call
// they see an empty game.
//
//	engine.flag(name)             -> number
//	engine.has_item(id)           -> boolean
//	engine.object_state(id, key)  -> number
//	engine.room()                 -> current room id
//	engine.sanity()               -> number
//	engine.random(n)              -> 1..n
//	engine.log(msg)
func (m *Manager) registerModules(vm *zoneVM) {
	L := vm.L
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"flag": func(L *lua.LState) int {
			name := L.CheckString(1)
			if vm.gs == nil {
				L.Push(lua.LNumber(0))
				return 1
			}
			L.Push(lua.LNumber(vm.gs.Flag(name)))
			return 1
		},
		"has_item": func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(lua.LBool(vm.gs != nil && vm.gs.HasItem(id)))
			return 1
		},
		"object_state": func(L *lua.LState) int {
			id := L.CheckString(1)
			key := world.StateKey(L.CheckString(2))
			if vm.gs == nil || m.world == nil {
				L.Push(lua.LNumber(0))
				return 1
			}
			obj, err := m.world.Object(id)
			if err != nil {
				L.ArgError(1, "unknown object "+id)
				return 0
			}
			L.Push(lua.LNumber(vm.gs.ObjectValue(obj, key)))
			return 1
		},
		"room": func(L *lua.LState) int {
			if vm.gs == nil {
				L.Push(lua.LString(""))
				return 1
			}
			L.Push(lua.LString(vm.gs.CurrentRoom))
			return 1
		},
		"sanity": func(L *lua.LState) int {
			if vm.gs == nil {
				L.Push(lua.LNumber(0))
				return 1
			}
			L.Push(lua.LNumber(vm.gs.Sanity))
			return 1
		},
		"random": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 1 {
				L.ArgError(1, "n must be positive")
				return 0
			}
			L.Push(lua.LNumber(m.dice.Intn(n) + 1))
			return 1
		},
		"log": func(L *lua.LState) int {
			m.logger.Info("lua", zap.String("zone", vm.zoneID), zap.String("msg", L.CheckString(1)))
			return 0
		},
	})
	L.SetGlobal("engine", engine)
}
