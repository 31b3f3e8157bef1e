package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/storage"
)

// Sweep deletes every session whose last update is older than maxIdle.
//
// Precondition: maxIdle > 0.
// Postcondition: Returns the number of sessions deleted. Sessions that
// disappear mid-sweep are skipped.
func (m *Manager) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}
	cutoff := m.now().Add(-maxIdle)
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		gs, err := m.store.Load(ctx, id)
		if errors.Is(err, storage.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("loading session %q: %w", id, err)
		}
		if !gs.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := m.End(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Janitor periodically sweeps idle sessions. It satisfies the server's
// Service interface.
type Janitor struct {
	manager  *Manager
	maxIdle  time.Duration
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewJanitor creates a Janitor that sweeps every interval.
//
// Precondition: maxIdle > 0 and interval > 0.
func NewJanitor(m *Manager, maxIdle, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		manager:  m,
		maxIdle:  maxIdle,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start sweeps on every tick until Stop is called.
func (j *Janitor) Start() error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-j.stop
		cancel()
	}()

	for {
		select {
		case <-j.stop:
			return nil
		case <-ticker.C:
			n, err := j.manager.Sweep(ctx, j.maxIdle)
			if err != nil && !errors.Is(err, context.Canceled) {
				j.logger.Warn("sweeping idle sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				j.logger.Info("swept idle sessions", zap.Int("deleted", n))
			}
		}
	}
}

// Stop ends Start. It is safe to call more than once.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}
