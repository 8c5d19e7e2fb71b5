// Package migrations holds the versioned schema applied by golang-migrate at
// startup.
package migrations

import "embed"

// FS contains the NNNNNN_name.{up,down}.sql files.
//
//go:embed *.sql
var FS embed.FS
