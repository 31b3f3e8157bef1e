// Package app assembles a playable game from configuration: the world, the
// engine with its Lua gates, the session store and the session manager.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/game/dice"
	"github.com/cory-johannsen/grue/internal/game/engine"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/session"
	"github.com/cory-johannsen/grue/internal/game/world"
	"github.com/cory-johannsen/grue/internal/scripting"
	"github.com/cory-johannsen/grue/internal/storage"
	"github.com/cory-johannsen/grue/internal/storage/bolt"
	"github.com/cory-johannsen/grue/internal/storage/postgres"
	"github.com/cory-johannsen/grue/internal/storage/redis"
)

// Game is a fully wired game.
type Game struct {
	World    *world.Manager
	Engine   *engine.Engine
	Scripts  *scripting.Manager
	Store    storage.Store
	Sessions *session.Manager
}

// LoadWorld loads every zone in dir and checks cross-zone references.
//
// Postcondition: Returns a consistent world and its zones, or an error
// joining every violation.
func LoadWorld(dir string, logger *zap.Logger) (*world.Manager, []*world.Zone, error) {
	start := time.Now()
	zones, err := world.LoadZonesFromDir(dir)
	if err != nil {
		return nil, nil, err
	}
	w, err := world.NewManager(zones)
	if err != nil {
		return nil, nil, fmt.Errorf("creating world manager: %w", err)
	}
	if err := w.ValidateReferences(); err != nil {
		return nil, nil, fmt.Errorf("validating world: %w", err)
	}
	logger.Info("world loaded",
		zap.Int("zones", w.ZoneCount()),
		zap.Int("rooms", w.RoomCount()),
		zap.Int("objects", w.ObjectCount()),
		zap.Int("max_score", w.MaxScore()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return w, zones, nil
}

// OpenStore opens the session store selected by cfg.Storage.Backend.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendBolt:
		return bolt.Open(cfg.Storage.BoltPath, logger)
	case config.BackendRedis:
		return redis.New(ctx, cfg.Redis, cfg.Storage.SessionTTL, logger)
	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// Build wires a Game from cfg.
//
// Precondition: cfg must have passed Validate.
// Postcondition: Returns a Game whose Close releases the store and scripts,
// or a non-nil error with nothing left open.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Game, error) {
	w, zones, err := LoadWorld(cfg.Content.ZonesDir, logger)
	if err != nil {
		return nil, err
	}

	src := dice.New(cfg.Engine.Seed)
	e := engine.New(w, cfg.Engine.Config, flavor.NewRandomSelector(src, logger), logger)

	g := &Game{World: w, Engine: e}
	if cfg.Content.Scripts {
		g.Scripts = scripting.NewManager(w, src, logger)
		n, err := g.Scripts.LoadZones(zones)
		if err != nil {
			g.Scripts.Close()
			return nil, err
		}
		e.AddGate(g.Scripts)
		logger.Info("zone scripts loaded", zap.Int("zones", n))
	}

	g.Store, err = OpenStore(ctx, cfg, logger)
	if err != nil {
		if g.Scripts != nil {
			g.Scripts.Close()
		}
		return nil, err
	}
	logger.Info("session store opened", zap.String("backend", cfg.Storage.Backend))

	g.Sessions = session.NewManager(e, g.Store, logger)
	return g, nil
}

// Close releases the store and the script VMs.
func (g *Game) Close() error {
	var errs []error
	if g.Scripts != nil {
		g.Scripts.Close()
	}
	if g.Store != nil {
		errs = append(errs, g.Store.Close())
	}
	return errors.Join(errs...)
}
