// Package migrations embebe los archivos SQL aplicados con goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
