// Package migrations embeds the user database schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
