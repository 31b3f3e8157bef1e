package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/engine"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/navigation"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
	"github.com/cory-johannsen/grue/internal/storage"
)

func newManager(t testing.TB, store storage.Store) (*Manager, *engine.Engine) {
	t.Helper()
	e := engine.New(gametest.World(t), engine.DefaultConfig(), flavor.FirstSelector{}, zaptest.NewLogger(t))
	return NewManager(e, store, zaptest.NewLogger(t)), e
}

func TestManager_StartAndHandle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, _ := newManager(t, store)

	id, intro, err := m.Start(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, intro)

	res, err := m.Handle(ctx, id, "open mailbox")
	require.NoError(t, err)
	assert.True(t, res.Success)
	res, err = m.Handle(ctx, id, "take leaflet")
	require.NoError(t, err)
	assert.Equal(t, "Taken.", res.Message)

	gs, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, gs.HasItem("leaflet"))
	assert.Equal(t, int64(3), gs.Version)
	assert.False(t, gs.UpdatedAt.IsZero())

	desc, err := m.Resume(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, desc, "West of House")
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newManager(t, storage.NewMemoryStore())
	_, err := m.Handle(context.Background(), "missing", "look")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	_, err = m.Resume(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestManager_FaultEndsSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, e := newManager(t, store)
	e.AddGate(navigation.GateFunc(func(*world.Room, world.Direction, *world.Room, *state.GameState) (string, bool) {
		panic("gate exploded")
	}))

	id, _, err := m.Start(ctx)
	require.NoError(t, err)
	res, err := m.Handle(ctx, id, "n")
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.True(t, res.Fault)

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestManager_End(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, storage.NewMemoryStore())
	id, _, err := m.Start(ctx)
	require.NoError(t, err)

	ids, err := m.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	require.NoError(t, m.End(ctx, id))
	ids, err = m.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 0, m.Busy())
}

// racingStore lets another writer bump the session before the first
// conflicts saves go through.
type racingStore struct {
	storage.Store
	conflicts int
}

func (r *racingStore) Save(ctx context.Context, gs *state.GameState) error {
	if r.conflicts > 0 && gs.Version > 0 {
		r.conflicts--
		other, err := r.Store.Load(ctx, gs.SessionID)
		if err != nil {
			return err
		}
		if err := r.Store.Save(ctx, other); err != nil {
			return err
		}
	}
	return r.Store.Save(ctx, gs)
}

func TestManager_RetriesVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: storage.NewMemoryStore()}
	m, _ := newManager(t, store)
	id, _, err := m.Start(ctx)
	require.NoError(t, err)

	store.conflicts = 1
	res, err := m.Handle(ctx, id, "open mailbox")
	require.NoError(t, err)
	assert.True(t, res.Success)

	gs, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), gs.Version, "start, the racing writer and the retried command")
}

func TestManager_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: storage.NewMemoryStore()}
	m, _ := newManager(t, store)
	id, _, err := m.Start(ctx)
	require.NoError(t, err)

	store.conflicts = maxAttempts
	_, err = m.Handle(ctx, id, "wait")
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
}

func TestManager_ConcurrentCommandsSerialise(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m, _ := newManager(t, store)
	id, _, err := m.Start(ctx)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Handle(ctx, id, "wait"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("handle: %v", err)
	}

	gs, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), gs.Version)
	assert.Equal(t, 0, m.Busy())
}

func TestPropertyLockTableDrains(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := &Manager{locks: make(map[string]*sessionLock)}
		ids := rapid.SliceOfN(rapid.IntRange(0, 3), 1, 10).Draw(rt, "ids")
		var wg sync.WaitGroup
		for _, i := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				unlock := m.lock(id)
				unlock()
			}(fmt.Sprintf("s%d", i))
		}
		wg.Wait()
		if m.Busy() != 0 {
			rt.Fatalf("lock table holds %d entries", m.Busy())
		}
	})
}
