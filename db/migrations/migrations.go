// Package migrations встраивает SQL-миграции в бинарник.
package migrations

import "embed"

// FS содержит пары NNNNNN_name.up.sql / NNNNNN_name.down.sql.
//
//go:embed *.sql
var FS embed.FS
