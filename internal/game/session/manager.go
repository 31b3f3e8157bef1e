// Package session runs game sessions against a storage backend: each input
// line loads the session, executes it through the engine and saves it back.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/engine"
	"github.com/cory-johannsen/grue/internal/storage"
)

// ErrSessionEnded is returned by Handle after a fault has ended the session.
var ErrSessionEnded = errors.New("session ended")

// maxAttempts bounds how often Handle retries a command whose save lost a
// version race against another writer.
const maxAttempts = 3

// Manager serialises commands per session. All methods are safe for
// concurrent use; commands for different sessions run in parallel.
type Manager struct {
	engine *engine.Engine
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a Manager.
//
// Precondition: e, store and logger must be non-nil.
func NewManager(e *engine.Engine, store storage.Store, logger *zap.Logger) *Manager {
	return &Manager{
		engine: e,
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sessionLock),
	}
}

// Start creates and saves a new session.
//
// Postcondition: Returns the new session ID and the description of the start
// room, or a non-nil error.
func (m *Manager) Start(ctx context.Context) (string, string, error) {
	id := uuid.NewString()
	gs := m.engine.NewGame(id)
	gs.Touch(m.now())
	intro, err := m.engine.Describe(gs)
	if err != nil {
		return "", "", fmt.Errorf("describing start room: %w", err)
	}
	if err := m.store.Save(ctx, gs); err != nil {
		return "", "", fmt.Errorf("saving new session: %w", err)
	}
	m.logger.Info("session started", zap.String("session", id), zap.String("room", gs.CurrentRoom))
	return id, intro, nil
}

// Resume returns the description of where an existing session stands.
//
// Postcondition: Returns an error wrapping storage.ErrSessionNotFound for unknown IDs.
func (m *Manager) Resume(ctx context.Context, sessionID string) (string, error) {
	gs, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	m.logger.Info("session resumed", zap.String("session", sessionID), zap.Int("moves", gs.Moves))
	return m.engine.Describe(gs)
}

// Handle executes one line of player input.
//
// Postcondition: The updated session is saved unless the Result is a fault,
// in which case the session is deleted and ErrSessionEnded is returned with
// the Result. A save that loses a version race is retried on fresh state.
func (m *Manager) Handle(ctx context.Context, sessionID, line string) (action.Result, error) {
	unlock := m.lock(sessionID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		gs, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return action.Result{}, err
		}

		res := m.engine.ExecuteText(line, gs)
		if res.Fault {
			m.logger.Error("session faulted",
				zap.String("session", sessionID),
				zap.String("input", line),
				zap.String("room", gs.CurrentRoom),
			)
			if err := m.store.Delete(ctx, sessionID); err != nil {
				m.logger.Warn("deleting faulted session", zap.String("session", sessionID), zap.Error(err))
			}
			return res, ErrSessionEnded
		}

		gs.Touch(m.now())
		err = m.store.Save(ctx, gs)
		if err == nil {
			m.logger.Debug("command handled",
				zap.String("session", sessionID),
				zap.String("input", line),
				zap.Bool("success", res.Success),
				zap.Int64("version", gs.Version),
			)
			return res, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) || attempt == maxAttempts {
			return action.Result{}, fmt.Errorf("saving session: %w", err)
		}
		m.logger.Warn("session version conflict, retrying",
			zap.String("session", sessionID),
			zap.Int("attempt", attempt),
		)
	}
}

// End deletes a session.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	unlock := m.lock(sessionID)
	defer unlock()
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	m.logger.Info("session ended", zap.String("session", sessionID))
	return nil
}

// Sessions lists every stored session ID.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Busy returns the number of sessions with a command in flight or queued.
func (m *Manager) Busy() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Manager) lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}
}
