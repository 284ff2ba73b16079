// Package migrations embeds the client profile store's goose SQL migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
