package db

import "embed"

// MigrationFS embeds the SQL migrations for the documents table.
// Applied by internal/db/migrate (cmd/migrate).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
