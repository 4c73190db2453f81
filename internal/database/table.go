package database

import (
	"fmt"

	"github.com/saltyorg/contactbook/internal/config"
)

// Table names the contact table and its columns. Identifiers cannot be bound
// as parameters, so they only ever come from the presets below.
type Table struct {
	Name      string
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// DefaultTable is the layout created by EnsureSchema for new databases
var DefaultTable = Table{
	Name:      "contacts",
	ID:        "id",
	FirstName: "first_name",
	LastName:  "last_name",
	Phone:     "phone",
	Email:     "email",
}

// LegacyTable matches the Contactos table of the earlier desktop version
var LegacyTable = Table{
	Name:      "Contactos",
	ID:        "idContacto",
	FirstName: "Nombre",
	LastName:  "Apellido",
	Phone:     "Telefono",
	Email:     "Email",
}

// TableFor returns the preset for a configured layout name
func TableFor(layout string) (Table, error) {
	switch layout {
	case "", config.TableContacts:
		return DefaultTable, nil
	case config.TableLegacy:
		return LegacyTable, nil
	default:
		return Table{}, fmt.Errorf("unknown table layout: %s", layout)
	}
}

// selectColumns aliases the physical columns to the names contactRow expects
func (t Table) selectColumns() string {
	return fmt.Sprintf("%s AS id, %s AS first_name, %s AS last_name, %s AS phone, %s AS email",
		t.ID, t.FirstName, t.LastName, t.Phone, t.Email)
}
