// Package migrations embeds the goose migrations for the durable session
// database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
