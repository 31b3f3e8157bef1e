// Package redis persists sessions in Redis so several server processes can
// share them. Saves are optimistic: the key is WATCHed, its version compared
// and the new state written inside MULTI/EXEC.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/storage"
)

// Store implements storage.Store over a go-redis client.
type Store struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var (
	_ storage.Store         = (*Store)(nil)
	_ storage.HealthChecker = (*Store)(nil)
)

// New connects to Redis and verifies the connection with PING.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a connected Store or a non-nil error.
func New(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Store{client: client, prefix: cfg.KeyPrefix, ttl: ttl, logger: logger}, nil
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Load reads a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*state.GameState, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session %q: %w", sessionID, storage.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load %q: %w", sessionID, err)
	}
	return storage.Decode(data)
}

// Save writes a session if the stored version still matches gs.Version.
// A concurrent writer touching the key between WATCH and EXEC also yields
// storage.ErrVersionConflict.
func (s *Store) Save(ctx context.Context, gs *state.GameState) error {
	key := s.key(gs.SessionID)
	var rollback func()
	txn := func(tx *goredis.Tx) error {
		var current int64
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return err
		default:
			if current, err = storage.StoredVersion(data); err != nil {
				return err
			}
		}
		if current != gs.Version {
			return fmt.Errorf("session %q at version %d, saving %d: %w", gs.SessionID, current, gs.Version, storage.ErrVersionConflict)
		}

		rollback = storage.Advance(gs)
		encoded, err := storage.Encode(gs)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, key)
	if err == nil {
		return nil
	}
	if rollback != nil {
		rollback()
	}
	if errors.Is(err, goredis.TxFailedErr) {
		return fmt.Errorf("session %q: %w", gs.SessionID, storage.ErrVersionConflict)
	}
	if errors.Is(err, storage.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("redis: save %q: %w", gs.SessionID, err)
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", sessionID, err)
	}
	return nil
}

// List scans every key under the prefix and returns the session IDs sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: list: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Health pings the server within timeout.
func (s *Store) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
