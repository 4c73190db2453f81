// Package ui implements the interactive contact manager.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/config"
	"github.com/saltyorg/contactbook/internal/database"
)

var (
	// ErrMissingNames is returned when the form lacks first or last name
	ErrMissingNames = errors.New("first and last name are required")
	// ErrInvalidID is returned when the delete field is not a positive integer
	ErrInvalidID = errors.New("enter a numeric ID")
	// ErrNoSelection is returned when updating without a selected row
	ErrNoSelection = errors.New("select a contact in the table first")
)

// Form holds the raw values of the four input fields
type Form struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// SettingsFunc returns the connection settings to use for the next Connect
type SettingsFunc func() config.Database

// Controller holds at most one live connection and runs the form actions
// against it. It has no terminal dependencies.
type Controller struct {
	settings SettingsFunc

	mu       sync.Mutex
	db       *database.DB
	contacts *database.ContactRepository
}

// NewController creates a disconnected controller
func NewController(settings SettingsFunc) *Controller {
	return &Controller{settings: settings}
}

// Connected reports whether a connection is held
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db != nil
}

// Target describes the connected store, or "" when disconnected
func (c *Controller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return ""
	}
	return c.db.Target()
}

// Connect opens a connection with the current settings. Connecting while
// connected is a no-op.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	db, err := database.Open(ctx, c.settings())
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect")
		return err
	}

	c.db = db
	c.contacts = database.NewContactRepository(db)
	log.Info().Str("target", db.Target()).Msg("Connected")
	return nil
}

// Disconnect closes the connection. The controller ends up disconnected even
// when closing fails; the close error is still returned.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	if err != nil {
		log.Error().Err(err).Msg("Failed to close connection")
	} else {
		log.Info().Msg("Disconnected")
	}

	c.db = nil
	c.contacts = nil
	return err
}

// repository returns the repository or ErrNotConnected
func (c *Controller) repository() (*database.ContactRepository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.contacts == nil {
		return nil, database.ErrNotConnected
	}
	return c.contacts, nil
}

// Contacts lists every contact
func (c *Controller) Contacts(ctx context.Context) ([]database.Contact, error) {
	repo, err := c.repository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// Add inserts the form as a new contact. Values are trimmed and both names
// must be present.
func (c *Controller) Add(ctx context.Context, form Form) (*database.Contact, error) {
	repo, err := c.repository()
	if err != nil {
		return nil, err
	}

	first := strings.TrimSpace(form.FirstName)
	last := strings.TrimSpace(form.LastName)
	if first == "" || last == "" {
		return nil, ErrMissingNames
	}

	return repo.Add(ctx, first, last, strings.TrimSpace(form.Phone), strings.TrimSpace(form.Email))
}

// UpdateSelected writes the non-blank form fields to the contact with the
// given ID. Blank fields are left unchanged, so the form cannot clear a field.
// A zero id means no row is selected.
func (c *Controller) UpdateSelected(ctx context.Context, id int64, form Form) (int64, error) {
	repo, err := c.repository()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, ErrNoSelection
	}

	return repo.Update(ctx, id, database.FormChanges(form.FirstName, form.LastName, form.Phone, form.Email))
}

// DeleteByID deletes the contact whose ID is typed in idText
func (c *Controller) DeleteByID(ctx context.Context, idText string) (int64, error) {
	repo, err := c.repository()
	if err != nil {
		return 0, err
	}

	id, err := ParseID(idText)
	if err != nil {
		return 0, err
	}

	return repo.Delete(ctx, id)
}

// ParseID accepts digits only, ignoring surrounding spaces
func ParseID(text string) (int64, error) {
	text = strings.TrimSpace(text)
	id, err := strconv.ParseUint(text, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, text)
	}
	return int64(id), nil
}
