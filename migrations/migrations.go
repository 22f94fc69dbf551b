// Package migrations embeds the checkout service schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
