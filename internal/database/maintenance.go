package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saltyorg/contactbook/internal/config"
)

// Optimize refreshes the planner statistics for the contact table.
func (db *DB) Optimize(ctx context.Context) error {
	var stmt string
	switch db.driver {
	case config.DriverSQLite:
		stmt = "PRAGMA optimize"
	case config.DriverMySQL:
		stmt = "ANALYZE TABLE " + db.Table().Name
	case config.DriverPostgres:
		stmt = "ANALYZE " + db.Table().Name
	default:
		return &StorageError{Op: "optimize", Err: fmt.Errorf("unsupported database driver: %s", db.driver)}
	}

	err := db.run(func(conn *sqlx.DB) error {
		_, err := conn.ExecContext(ctx, stmt)
		return err
	})
	if err != nil {
		return &StorageError{Op: "optimize", Err: fmt.Errorf("failed to optimize database: %w", err)}
	}

	return nil
}
