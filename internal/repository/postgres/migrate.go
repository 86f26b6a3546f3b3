package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	"rentalreturn-backend/internal/logger"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables this service owns and the collaborator tables
// it reads, if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := db.ExecContext(ctx, schema)
	logger.DatabaseResult("migrate", 0, err)
	return err
}
