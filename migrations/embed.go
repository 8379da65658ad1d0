// Package migrations embeds the goose SQL migrations applied on startup.
package migrations

import "embed"

// FS holds *.sql migrations in goose format.
//
//go:embed *.sql
var FS embed.FS
