// Package migrations embeds the SQL schema applied on start-up.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
