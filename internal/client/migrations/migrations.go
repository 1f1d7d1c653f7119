// Package migrations embeds the goose migrations of the client database.
package migrations

import "embed"

// Migrations holds the *.sql files applied with the sqlite3 goose dialect.
//
//go:embed *.sql
var Migrations embed.FS

// Dialect is the goose dialect for the client database.
const Dialect = "sqlite3"
