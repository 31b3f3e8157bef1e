// Package postgres persists game sessions in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/storage"
)

// ErrSchemaMissing is returned by Open when the sessions table has not been
// created; run the migrations first.
var ErrSchemaMissing = errors.New("sessions table missing")

// SessionStore implements storage.Store over the sessions table.
type SessionStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

var (
	_ storage.Store         = (*SessionStore)(nil)
	_ storage.HealthChecker = (*SessionStore)(nil)
)

// Open connects to the database in cfg and returns a store over its
// sessions table.
//
// Precondition: cfg must contain valid connection parameters.
// Postcondition: Returns a store whose database answered a ping and has the
// sessions table, or an error with no pool left open.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*SessionStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	s := NewSessionStore(db, logger)
	if err := s.checkSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("session database ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return s, nil
}

// NewSessionStore creates a SessionStore over an open pool. Close closes
// the pool.
//
// Precondition: db must be open and the sessions migration applied.
func NewSessionStore(db *pgxpool.Pool, logger *zap.Logger) *SessionStore {
	return &SessionStore{db: db, logger: logger}
}

func (s *SessionStore) checkSchema(ctx context.Context) error {
	var table *string
	if err := s.db.QueryRow(ctx, `SELECT to_regclass('sessions')::text`).Scan(&table); err != nil {
		return fmt.Errorf("checking sessions table: %w", err)
	}
	if table == nil {
		return ErrSchemaMissing
	}
	return nil
}

// Load reads a session.
//
// Postcondition: Returns the session or an error wrapping storage.ErrSessionNotFound.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*state.GameState, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT state FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %q: %w", sessionID, storage.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return storage.Decode(data)
}

// Save inserts a new session at version 0 or updates an existing one whose
// stored version equals gs.Version.
//
// Postcondition: On success gs.Version is incremented; on a stale version the
// error wraps storage.ErrVersionConflict and gs is unchanged.
func (s *SessionStore) Save(ctx context.Context, gs *state.GameState) error {
	expected := gs.Version
	rollback := storage.Advance(gs)
	data, err := storage.Encode(gs)
	if err != nil {
		rollback()
		return err
	}

	var query string
	args := []any{gs.SessionID, gs.Version, data, gs.UpdatedAt}
	if expected == 0 {
		query = `INSERT INTO sessions (id, version, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (id) DO NOTHING`
	} else {
		query = `UPDATE sessions SET version = $2, state = $3, updated_at = $4
		 WHERE id = $1 AND version = $5`
		args = append(args, expected)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		rollback()
		return fmt.Errorf("saving session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		rollback()
		return fmt.Errorf("session %q at version %d: %w", gs.SessionID, expected, storage.ErrVersionConflict)
	}
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// List returns every session ID in order.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning session ids: %w", err)
	}
	return ids, nil
}

// Health checks within timeout that the database answers and still has the
// sessions table.
func (s *SessionStore) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.checkSchema(ctx)
}

// Close releases the pool.
func (s *SessionStore) Close() error {
	s.db.Close()
	return nil
}
