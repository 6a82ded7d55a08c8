package migration

import "embed"

// scriptsFS holds the goose scripts, one directory per dialect.
//
//go:embed scripts
var scriptsFS embed.FS
