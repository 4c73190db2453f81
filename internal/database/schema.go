package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/config"
)

// EnsureSchema creates the contact table when it does not exist yet.
// Existing tables are left untouched; there is no migration step.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ddl, err := createTableSQL(db.driver, db.Table())
	if err != nil {
		return err
	}

	err = db.run(func(conn *sqlx.DB) error {
		_, err := conn.ExecContext(ctx, ddl)
		return err
	})
	if err != nil {
		return &StorageError{Op: "ensure schema", Err: fmt.Errorf("failed to create table %s: %w", db.Table().Name, err)}
	}

	log.Debug().Str("table", db.Table().Name).Msg("Contact table ready")
	return nil
}

func createTableSQL(driver string, t Table) (string, error) {
	switch driver {
	case config.DriverMySQL:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s INT AUTO_INCREMENT PRIMARY KEY,
				%s VARCHAR(100) NOT NULL,
				%s VARCHAR(100) NOT NULL,
				%s VARCHAR(50),
				%s VARCHAR(255)
			)`, t.Name, t.ID, t.FirstName, t.LastName, t.Phone, t.Email), nil

	case config.DriverPostgres:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s SERIAL PRIMARY KEY,
				%s TEXT NOT NULL,
				%s TEXT NOT NULL,
				%s TEXT,
				%s TEXT
			)`, t.Name, t.ID, t.FirstName, t.LastName, t.Phone, t.Email), nil

	case config.DriverSQLite:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				%s INTEGER PRIMARY KEY AUTOINCREMENT,
				%s TEXT NOT NULL,
				%s TEXT NOT NULL,
				%s TEXT,
				%s TEXT
			)`, t.Name, t.ID, t.FirstName, t.LastName, t.Phone, t.Email), nil

	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
