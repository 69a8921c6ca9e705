package migration

import "embed"

// FS holds the goose migrations for every database, laid out as
// postgresql/<database name>/*.sql.
//
//go:embed postgresql
var FS embed.FS
