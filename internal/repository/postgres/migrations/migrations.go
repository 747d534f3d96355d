// Package migrations embeds the SQL schema migrations for the area store.
package migrations

import "embed"

//go:embed *.up.sql
var Files embed.FS
