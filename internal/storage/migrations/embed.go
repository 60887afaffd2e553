// Package migrations embeds the schema for the SQLite and Postgres stores.
package migrations

import "embed"

// SQLite holds the SQLite migrations under sqlite/.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the Postgres migrations under postgres/.
//
//go:embed postgres/*.sql
var Postgres embed.FS
