// Package migrations embeds SQL migration files into the binary.
//
// The node must restore its actuator levels on boot without any files
// beyond the executable and the database, so the schema ships compiled in.
package migrations

import (
	"embed"

	"github.com/nerrad567/greenhouse-node/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
