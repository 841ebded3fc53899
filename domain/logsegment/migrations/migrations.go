// Package migrations embeds the SQL migration files for the log segment
// store, applied with golang-migrate (source/iofs + database/postgres) —
// a teacher go.mod dependency retrieval kept with no caller until now.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
