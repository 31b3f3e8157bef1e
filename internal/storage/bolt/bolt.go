// Package bolt persists sessions in a local bbolt database file. It is the
// default backend of the single-player CLI.
package bolt

import (
	"bytes"
	"context"
	"fmt"

	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/storage"
)

var bucketSessions = []byte("sessions")

// Store implements storage.Store over a bbolt file.
type Store struct {
	db     *bbolt.DB
	logger *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the sessions bucket exists.
//
// Postcondition: Returns an open Store or a non-nil error.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}
	logger.Debug("bolt store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Load reads a session.
func (s *Store) Load(_ context.Context, sessionID string) (*state.GameState, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketSessions).Get([]byte(sessionID)); v != nil {
			data = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: load %q: %w", sessionID, err)
	}
	if data == nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, storage.ErrSessionNotFound)
	}
	return storage.Decode(data)
}

// Save writes a session in a single transaction, checking the stored version first.
func (s *Store) Save(_ context.Context, gs *state.GameState) error {
	var rollback func()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var current int64
		if v := b.Get([]byte(gs.SessionID)); v != nil {
			var err error
			if current, err = storage.StoredVersion(v); err != nil {
				return err
			}
		}
		if current != gs.Version {
			return fmt.Errorf("session %q at version %d, saving %d: %w", gs.SessionID, current, gs.Version, storage.ErrVersionConflict)
		}
		rollback = storage.Advance(gs)
		data, err := storage.Encode(gs)
		if err != nil {
			return err
		}
		return b.Put([]byte(gs.SessionID), data)
	})
	if err != nil {
		if rollback != nil {
			rollback()
		}
		return err
	}
	return nil
}

// Delete removes a session.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(sessionID))
	})
}

// List returns every stored session ID. bbolt iterates keys in byte order.
func (s *Store) List(_ context.Context) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: list: %w", err)
	}
	return ids, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
