// Package migrations embeds the schema migration files for the FieldForce
// database. The server runs them at boot through the goose provider, and the
// integration suite replays them up and down.
package migrations

import "embed"

// FS holds every *.sql migration, embedded at compile time so the binary
// needs no migration directory on disk.
//
//go:embed *.sql
var FS embed.FS
