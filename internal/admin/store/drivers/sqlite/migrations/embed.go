// Package migrations holds the sqlite schema migrations, embedded so the
// binary can migrate itself on startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
