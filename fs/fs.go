// Package appfs exposes the repository's embedded static assets.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
