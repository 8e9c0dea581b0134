package migrations

import "embed"

// FS contains embedded SQLite migrations for the EAV catalog.
//
//go:embed *.sql
var FS embed.FS
