// Package migrations embeds the SQL schema files of the snapshot cache.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
