// Package migrations embeds SQL migration files into the binary, so Atlas
// Core can migrate its schema without the SQL files present on disk.
package migrations

import (
	"embed"

	"github.com/atlasvoyages/atlas-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files are at root of embedded FS
}
