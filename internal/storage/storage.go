// Package storage defines how session state is persisted between turns and
// provides the in-memory implementation. Durable backends live in the bolt,
// redis and postgres subpackages.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/grue/internal/game/state"
)

// ErrSessionNotFound is returned when no state is stored for a session ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrVersionConflict is returned by Save when the stored state changed since
// the caller loaded it.
var ErrVersionConflict = errors.New("session version conflict")

// Store persists game states keyed by session ID.
//
// Save uses optimistic concurrency: gs.Version must equal the stored version
// (zero for a session never saved). On success the store increments
// gs.Version. gs.UpdatedAt is the caller's to stamp; stores persist it as is.
type Store interface {
	Load(ctx context.Context, sessionID string) (*state.GameState, error)
	Save(ctx context.Context, gs *state.GameState) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// HealthChecker is implemented by stores backed by a network service.
type HealthChecker interface {
	Health(ctx context.Context, timeout time.Duration) error
}

// Encode serializes a state for storage.
func Encode(gs *state.GameState) ([]byte, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("encoding session %q: %w", gs.SessionID, err)
	}
	return data, nil
}

// Decode deserializes a stored state.
func Decode(data []byte) (*state.GameState, error) {
	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &gs, nil
}

// StoredVersion extracts the version of an encoded state without decoding
// the rest of it.
func StoredVersion(data []byte) (int64, error) {
	var v struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decoding session version: %w", err)
	}
	return v.Version, nil
}

// Advance bumps the version of gs ahead of a write and returns a function
// restoring it if the write fails.
func Advance(gs *state.GameState) (rollback func()) {
	version := gs.Version
	gs.Version++
	return func() {
		gs.Version = version
	}
}

// MemoryStore keeps encoded states in process memory.
// It is the default backend and the reference for the Store contract.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Load returns a copy of the stored state.
//
// Postcondition: Returns ErrSessionNotFound if nothing is stored for sessionID.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*state.GameState, error) {
	m.mu.Lock()
	data, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	return Decode(data)
}

// Save stores a copy of gs.
//
// Postcondition: Returns ErrVersionConflict, leaving gs unchanged, when
// gs.Version does not match the stored version.
func (m *MemoryStore) Save(_ context.Context, gs *state.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	if data, ok := m.sessions[gs.SessionID]; ok {
		v, err := StoredVersion(data)
		if err != nil {
			return err
		}
		current = v
	}
	if current != gs.Version {
		return fmt.Errorf("session %q at version %d, saving %d: %w", gs.SessionID, current, gs.Version, ErrVersionConflict)
	}

	rollback := Advance(gs)
	data, err := Encode(gs)
	if err != nil {
		rollback()
		return err
	}
	m.sessions[gs.SessionID] = data
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// List returns every stored session ID in sorted order.
func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
