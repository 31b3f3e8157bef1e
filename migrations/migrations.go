// Package migrations embeds the PostgreSQL schema migrations so binaries and
// tests can apply them without a checkout on disk.
package migrations

import "embed"

// FS holds every numbered *.sql migration.
//
//go:embed *.sql
var FS embed.FS
