// Package migrations holds the goose SQL migrations, embedded so the migrator binary is self-contained.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
