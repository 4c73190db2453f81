package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/config"
)

var validate = validator.New()

// Contact represents a single row of the contact table.
type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Validate checks the only rule contacts have: first and last name are present
func (c *Contact) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	return nil
}

// ContactChanges is the set of fields an update writes.
//
// A nil field is left unchanged. A non-nil field is written as given, so a
// pointer to "" clears phone or email. First and last name cannot be cleared.
//
// A form cannot express "clear this field": a blank input means "not
// supplied". FormChanges keeps that behaviour for form input; callers that
// need to clear a field build ContactChanges directly.
type ContactChanges struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// FormChanges builds changes from raw form input, treating blank values
// (after trimming) as not supplied.
func FormChanges(firstName, lastName, phone, email string) ContactChanges {
	supplied := func(v string) *string {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		return &v
	}
	return ContactChanges{
		FirstName: supplied(firstName),
		LastName:  supplied(lastName),
		Phone:     supplied(phone),
		Email:     supplied(email),
	}
}

// IsEmpty reports whether no field is supplied
func (c ContactChanges) IsEmpty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Phone == nil && c.Email == nil
}

// Validate rejects clearing first or last name, including setting them to
// whitespace only
func (c ContactChanges) Validate() error {
	if c.FirstName != nil && strings.TrimSpace(*c.FirstName) == "" {
		return fmt.Errorf("%w: first name cannot be cleared", ErrInvalidContact)
	}
	if c.LastName != nil && strings.TrimSpace(*c.LastName) == "" {
		return fmt.Errorf("%w: last name cannot be cleared", ErrInvalidContact)
	}
	return nil
}

// trimmed returns a copy with surrounding spaces removed from every supplied field
func (c ContactChanges) trimmed() ContactChanges {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		return &s
	}
	return ContactChanges{
		FirstName: trim(c.FirstName),
		LastName:  trim(c.LastName),
		Phone:     trim(c.Phone),
		Email:     trim(c.Email),
	}
}

// assignments returns the SET clauses and their arguments, in column order
func (c ContactChanges) assignments(t Table) ([]string, []any) {
	var sets []string
	var args []any

	add := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	add(t.FirstName, c.FirstName)
	add(t.LastName, c.LastName)
	add(t.Phone, c.Phone)
	add(t.Email, c.Email)

	return sets, args
}

type contactRow struct {
	ID        int64          `db:"id"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Phone     sql.NullString `db:"phone"`
	Email     sql.NullString `db:"email"`
}

func (r contactRow) toContact() Contact {
	return Contact{
		ID:        r.ID,
		FirstName: nullStringValue(r.FirstName),
		LastName:  nullStringValue(r.LastName),
		Phone:     nullStringValue(r.Phone),
		Email:     nullStringValue(r.Email),
	}
}

// ContactRepository issues the CRUD statements for the contact table.
// It uses a DB it does not own; closing the DB is the caller's job.
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a repository over db
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Add inserts a contact and returns it with its assigned ID. Values are
// trimmed before the names are checked.
func (r *ContactRepository) Add(ctx context.Context, firstName, lastName, phone, email string) (*Contact, error) {
	c := &Contact{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	t := r.db.Table()
	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
		t.Name, t.FirstName, t.LastName, t.Phone, t.Email)
	args := []any{c.FirstName, c.LastName, c.Phone, c.Email}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		// pgx has no LastInsertId
		if r.db.Driver() == config.DriverPostgres {
			return tx.QueryRowxContext(ctx, tx.Rebind(query+" RETURNING "+t.ID), args...).Scan(&c.ID)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		c.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get contact id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "add", Err: fmt.Errorf("failed to add contact: %w", err)}
	}

	log.Debug().Int64("id", c.ID).Msg("Contact added")
	return c, nil
}

// List returns every contact in storage order. An empty table yields an empty slice.
func (r *ContactRepository) List(ctx context.Context) ([]Contact, error) {
	t := r.db.Table()
	query := fmt.Sprintf("SELECT %s FROM %s", t.selectColumns(), t.Name)

	var rows []contactRow
	err := r.db.run(func(conn *sqlx.DB) error {
		return conn.SelectContext(ctx, &rows, query)
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Err: fmt.Errorf("failed to list contacts: %w", err)}
	}

	contacts := make([]Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toContact())
	}
	return contacts, nil
}

// Find returns the contact with the given ID, or ErrNotFound.
func (r *ContactRepository) Find(ctx context.Context, id int64) (*Contact, error) {
	t := r.db.Table()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", t.selectColumns(), t.Name, t.ID)

	var row contactRow
	err := r.db.run(func(conn *sqlx.DB) error {
		return conn.GetContext(ctx, &row, conn.Rebind(query), id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, &StorageError{Op: "find", Err: fmt.Errorf("failed to get contact %d: %w", id, err)}
	}

	c := row.toContact()
	return &c, nil
}

// Update writes only the supplied fields of the contact with the given ID and
// returns the number of rows affected. When no field is supplied it returns 0
// without issuing a statement. Rows affected follows the driver: MySQL counts
// rows actually changed, sqlite and postgres count rows matched. Supplied
// values are trimmed.
func (r *ContactRepository) Update(ctx context.Context, id int64, changes ContactChanges) (int64, error) {
	changes = changes.trimmed()
	if err := changes.Validate(); err != nil {
		return 0, err
	}

	t := r.db.Table()
	sets, args := changes.assignments(t)
	if len(sets) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.Name, strings.Join(sets, ", "), t.ID)
	args = append(args, id)

	var affected int64
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, &StorageError{Op: "update", Err: fmt.Errorf("failed to update contact %d: %w", id, err)}
	}

	log.Debug().Int64("id", id).Int("fields", len(sets)).Int64("rows", affected).Msg("Contact updated")
	return affected, nil
}

// Delete removes the contact with the given ID and returns the number of rows
// removed (0 if it did not exist).
func (r *ContactRepository) Delete(ctx context.Context, id int64) (int64, error) {
	t := r.db.Table()
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.Name, t.ID)

	var affected int64
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, tx.Rebind(query), id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, &StorageError{Op: "delete", Err: fmt.Errorf("failed to delete contact %d: %w", id, err)}
	}

	log.Debug().Int64("id", id).Int64("rows", affected).Msg("Contact deleted")
	return affected, nil
}

// Count returns the number of contacts
func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	query := "SELECT COUNT(*) FROM " + r.db.Table().Name

	var count int64
	err := r.db.run(func(conn *sqlx.DB) error {
		return conn.GetContext(ctx, &count, query)
	})
	if err != nil {
		return 0, &StorageError{Op: "count", Err: fmt.Errorf("failed to count contacts: %w", err)}
	}
	return count, nil
}
