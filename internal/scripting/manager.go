package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/dice"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// globalZoneID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no zone VM is found.
const globalZoneID = "__global__"

// HookCanMove is the exit gate hook: can_move(from_room, direction, to_room).
const HookCanMove = "can_move"

// Manager owns one sandboxed LState per zone and exposes hook dispatch.
// Each zone VM is single-threaded: calls into the same zone are serialised,
// calls into different zones run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*zoneVM
	world  world.Reader
	dice   dice.Source
	logger *zap.Logger
}

type zoneVM struct {
	mu     sync.Mutex
	zoneID string
	L      *lua.LState
	limit  int
	// gs is the session bound for the current hook call.
	gs *state.GameState
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil; w may be nil when scripts
// never call engine.object_state.
// Postcondition: Returns a non-nil Manager with no zones loaded.
func NewManager(w world.Reader, src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: dice source must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*zoneVM),
		world:  w,
		dice:   src,
		logger: logger,
	}
}

// LoadZone creates a sandboxed VM for zoneID, registers the engine module,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: zoneID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Zone VM is registered, replacing any previous one; returns
// error on Lua load failure.
func (m *Manager) LoadZone(zoneID, scriptDir string, instLimit int) error {
	return m.loadInto(zoneID, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as a CallHook fallback by zones
// without scripts of their own.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalZoneID, scriptDir, instLimit)
}

// LoadZones loads the script directory of every zone that names one.
//
// Postcondition: Returns the number of zones loaded, or the first error.
func (m *Manager) LoadZones(zones []*world.Zone) (int, error) {
	n := 0
	for _, z := range zones {
		if z.ScriptDir == "" {
			continue
		}
		if err := m.LoadZone(z.ID, z.ScriptDir, z.ScriptInstructionLimit); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	vm := &zoneVM{zoneID: key, L: NewSandboxedState(), limit: instLimit}
	m.registerModules(vm)
	for _, path := range luaFiles {
		err := RunLimited(vm.L, vm.limit, func() error { return vm.L.DoFile(path) })
		if err != nil {
			vm.L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = vm
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripts loaded", zap.String("zone", key), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function in zoneID's VM, with gs bound
// for the engine module. If the zone has no VM the global VM is tried.
// Returns (LNil, nil) if the hook is not defined or no VM exists. Lua runtime
// errors, including a spent instruction budget, are logged at Warn level and
// never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(zoneID, hook string, gs *state.GameState, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	vm, ok := m.vms[zoneID]
	if !ok {
		vm = m.vms[globalZoneID]
	}
	m.mu.RUnlock()
	if vm == nil {
		m.logger.Debug("scripting: no VM for zone",
			zap.String("zone", zoneID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	fn := vm.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	vm.gs = gs
	defer func() { vm.gs = nil }()
	err := RunLimited(vm.L, vm.limit, func() error {
		return vm.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("zone", zoneID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := vm.L.Get(-1)
	vm.L.Pop(1)
	return ret, nil
}

// Zones returns the IDs of every loaded VM in order.
func (m *Manager) Zones() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.vms))
	for id := range m.vms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close shuts down every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, vm := range m.vms {
		vm.mu.Lock()
		vm.L.Close()
		vm.mu.Unlock()
		delete(m.vms, key)
	}
}
