// Package storetest holds the behavioural suite every storage.Store must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/storage"
)

// Run exercises the Store contract against stores built by newStore. Each
// subtest receives a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	w := gametest.World(t)
	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		s := newStore(t)
		gs := state.New("s1", w)
		gs.AddItem("leaflet")
		gs.SetFlag("troll_defeated", 1)
		gs.Pending = &state.PendingDisambiguation{Verb: "take", Query: "knife", Candidates: []string{"rusty_knife", "nasty_knife"}}

		require.NoError(t, s.Save(ctx, gs))
		assert.Equal(t, int64(1), gs.Version)

		got, err := s.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, gs.CurrentRoom, got.CurrentRoom)
		assert.Equal(t, gs.Inventory, got.Inventory)
		assert.Equal(t, gs.Flags, got.Flags)
		assert.Equal(t, gs.Pending, got.Pending)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("LoadedCopyIsIndependent", func(t *testing.T) {
		s := newStore(t)
		gs := state.New("s2", w)
		require.NoError(t, s.Save(ctx, gs))
		gs.AddItem("lamp")

		got, err := s.Load(ctx, "s2")
		require.NoError(t, err)
		assert.False(t, got.HasItem("lamp"))
	})

	t.Run("VersionConflict", func(t *testing.T) {
		s := newStore(t)
		gs := state.New("s3", w)
		require.NoError(t, s.Save(ctx, gs))

		a, err := s.Load(ctx, "s3")
		require.NoError(t, err)
		b, err := s.Load(ctx, "s3")
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, a))
		err = s.Save(ctx, b)
		assert.True(t, errors.Is(err, storage.ErrVersionConflict), "got %v", err)
		assert.Equal(t, int64(1), b.Version, "a rejected save leaves the version untouched")

		fresh := state.New("s3", w)
		assert.ErrorIs(t, s.Save(ctx, fresh), storage.ErrVersionConflict)
	})

	t.Run("DeleteAndList", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"b", "a", "c"} {
			require.NoError(t, s.Save(ctx, state.New(id, w)))
		}
		ids, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids)

		require.NoError(t, s.Delete(ctx, "b"))
		require.NoError(t, s.Delete(ctx, "missing"))
		ids, err = s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids)
		_, err = s.Load(ctx, "b")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("PropertyVersionCountsSaves", func(t *testing.T) {
		s := newStore(t)
		rapid.Check(t, func(rt *rapid.T) {
			id := rapid.StringMatching(`[a-z]{8}`).Draw(rt, "id")
			_ = s.Delete(ctx, id)
			gs := state.New(id, w)
			n := rapid.IntRange(1, 5).Draw(rt, "saves")
			for i := 0; i < n; i++ {
				gs.Turns = i
				if err := s.Save(ctx, gs); err != nil {
					rt.Fatalf("save %d: %v", i, err)
				}
			}
			got, err := s.Load(ctx, id)
			if err != nil {
				rt.Fatalf("load: %v", err)
			}
			if got.Version != int64(n) || got.Turns != n-1 {
				rt.Fatalf("after %d saves got version %d turns %d", n, got.Version, got.Turns)
			}
		})
	})
}
