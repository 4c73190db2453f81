package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/config"
)

// DB owns the single live connection to the contact store.
// A DB is usable from Open until Close; every operation after Close fails
// with ErrNotConnected.
type DB struct {
	conn   *sqlx.DB
	driver string
	table  Table
	target string
	mu     sync.RWMutex
}

// Open establishes a connection using settings and verifies it with a ping.
// Configuration, network and authentication failures are reported as *ConnectionError.
func Open(ctx context.Context, settings config.Database) (*DB, error) {
	if err := settings.Validate(); err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	table, err := TableFor(settings.Table)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	conn, err := openDriver(settings)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// One connection per instance, no pooling
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "open", Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	db := &DB{
		conn:   conn,
		driver: settings.Driver,
		table:  table,
		target: describeTarget(settings),
	}

	if settings.InitSchema {
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, &ConnectionError{Op: "open", Err: err}
		}
	}

	log.Debug().
		Str("driver", db.driver).
		Str("target", db.target).
		Str("table", table.Name).
		Msg("Database connection established")

	return db, nil
}

// Close terminates the connection. Closing an already closed DB is a no-op.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		log.Debug().Str("target", db.target).Msg("Database connection already closed")
		return nil
	}

	err := db.conn.Close()
	db.conn = nil
	if err != nil {
		return &ConnectionError{Op: "close", Err: fmt.Errorf("failed to close database: %w", err)}
	}

	log.Debug().Str("target", db.target).Msg("Database connection closed")
	return nil
}

// IsOpen reports whether the connection is still held
func (db *DB) IsOpen() bool {
	if db == nil {
		return false
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn != nil
}

// Ping checks that the store is still reachable
func (db *DB) Ping(ctx context.Context) error {
	err := db.run(func(conn *sqlx.DB) error {
		return conn.PingContext(ctx)
	})
	if err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Driver returns the configured driver name
func (db *DB) Driver() string {
	return db.driver
}

// Table returns the table layout in use
func (db *DB) Table() Table {
	if db == nil {
		return DefaultTable
	}
	return db.table
}

// Target returns a printable description of the store (never the password)
func (db *DB) Target() string {
	return db.target
}

// run hands the live handle to fn while holding the read lock, so Close
// waits for in-flight statements.
func (db *DB) run(fn func(*sqlx.DB) error) error {
	if db == nil {
		return ErrNotConnected
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.conn == nil {
		return ErrNotConnected
	}
	return fn(db.conn)
}

// Transaction wraps a function in a database transaction.
// The transaction is committed only if fn succeeds.
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return db.run(func(conn *sqlx.DB) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		return nil
	})
}
