// Package testutil provides test helpers: a PostgreSQL container for the
// session store and a Telnet player for the game server.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/grue/internal/config"
	"github.com/cory-johannsen/grue/internal/storage/postgres"
)

// SessionsDB is a throwaway PostgreSQL server for session store tests.
type SessionsDB struct {
	// Pool is a direct connection for assertions on stored rows.
	Pool   *pgxpool.Pool
	Config config.DatabaseConfig
}

// StartSessionsDB runs PostgreSQL in a container. The schema is not applied;
// see Migrate.
//
// Precondition: Docker must be available. Skipped under -short.
// Postcondition: The container is terminated when the test ends.
func StartSessionsDB(t *testing.T) *SessionsDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	ctx := context.Background()
	start := time.Now()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "grue",
				"POSTGRES_PASSWORD": "grue",
				"POSTGRES_DB":       "grue_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	db := &SessionsDB{Config: config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "grue",
		Password:        "grue",
		Name:            "grue_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}}
	db.Pool, err = pgxpool.New(ctx, db.DSN())
	if err == nil {
		err = db.Pool.Ping(ctx)
	}
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(db.Pool.Close)

	t.Logf("sessions database up on %s:%d [%s]", host, port.Int(), time.Since(start))
	return db
}

// DSN returns the connection string for the test database.
func (db *SessionsDB) DSN() string {
	return db.Config.DSN()
}

// Migrate applies every embedded migration.
func (db *SessionsDB) Migrate(t *testing.T) {
	t.Helper()
	res, err := postgres.Migrate(db.DSN(), postgres.Up, 0)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("sessions schema at version %d", res.Version)
}

// Store empties the sessions table and opens a store over it. The store is
// closed when the test ends.
func (db *SessionsDB) Store(t *testing.T) *postgres.SessionStore {
	t.Helper()
	ctx := context.Background()
	if _, err := db.Pool.Exec(ctx, `TRUNCATE sessions`); err != nil {
		t.Fatalf("truncating sessions: %v", err)
	}
	s, err := postgres.Open(ctx, db.Config, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("opening session store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// StoredVersion reads the version column of a saved session.
func (db *SessionsDB) StoredVersion(t *testing.T, id string) int64 {
	t.Helper()
	var v int64
	if err := db.Pool.QueryRow(context.Background(),
		`SELECT version FROM sessions WHERE id = $1`, id,
	).Scan(&v); err != nil {
		t.Fatalf("reading version of %q: %v", id, err)
	}
	return v
}
