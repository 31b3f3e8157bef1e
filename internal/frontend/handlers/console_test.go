package handlers_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/grue/internal/frontend/handlers"
	"github.com/cory-johannsen/grue/internal/game/engine"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/gametest"
	"github.com/cory-johannsen/grue/internal/game/session"
	"github.com/cory-johannsen/grue/internal/storage"
)

func newConsole(t *testing.T, store storage.Store) *handlers.Console {
	t.Helper()
	logger := zaptest.NewLogger(t)
	e := engine.New(gametest.World(t), engine.DefaultConfig(), flavor.FirstSelector{}, logger)
	return handlers.NewConsole(session.NewManager(e, store, logger), handlers.Renderer{}, logger)
}

func TestConsole_PlayAndResume(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := newConsole(t, store)

	var out bytes.Buffer
	id, err := c.Play(ctx, "", strings.NewReader("open mailbox\n\nsave\nquit\nlook\n"), &out)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Contains(t, out.String(), "Your game id is "+id)
	assert.Contains(t, out.String(), "West of House")
	assert.Contains(t, out.String(), "Opening the small mailbox reveals a leaflet.")
	assert.Contains(t, out.String(), "saved after every command")
	assert.Contains(t, out.String(), "Your game is saved as "+id)

	out.Reset()
	again, err := c.Play(ctx, id, strings.NewReader("take leaflet\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Contains(t, out.String(), "Welcome back.")
	assert.Contains(t, out.String(), "Taken.")

	gs, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, gs.HasItem("leaflet"))
}

func TestConsole_ResumeUnknown(t *testing.T) {
	c := newConsole(t, storage.NewMemoryStore())
	_, err := c.Play(context.Background(), "missing", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no saved game has id missing")
}
