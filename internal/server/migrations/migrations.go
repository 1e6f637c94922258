// Package migrations embeds the goose migrations of the dev backend. The SQL
// is kept to the subset PostgreSQL and SQLite share.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
