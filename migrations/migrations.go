// Package migrations embeds the SQL schema files.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS

// Files lists migrations in the order they are applied.
var Files = []string{
	"001_init.sql",
	"002_keyset_indexes.sql",
}
