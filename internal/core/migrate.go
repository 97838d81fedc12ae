// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"embed"
	"fmt"

	"github.com/carterperez-dev/leadcap/internal/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the schema for the connected driver. Every statement is
// idempotent, so it is safe to run on each start.
func (d *Database) Migrate(ctx context.Context) error {
	name := "schema/postgres.sql"
	if d.DB.DriverName() == config.DriverSQLite {
		name = "schema/sqlite.sql"
	}

	schema, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", name, err)
	}

	if _, err := d.DB.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}
