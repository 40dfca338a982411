// Package migrations embeds the SQL files that create the settings and
// ratings tables. They are applied at startup by database.NewDB.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
