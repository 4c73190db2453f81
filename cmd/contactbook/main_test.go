package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/contactbook/internal/database"
)

// sqliteEnv points every command at a fresh sqlite database
func sqliteEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(dir, "contacts.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "contactbook.log"))
	return filepath.Join(dir, ".env")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "contactbook dev (commit: none, built: unknown)\n", out)
}

func TestContactCommands(t *testing.T) {
	env := sqliteEnv(t)

	out, err := execute(t, "--env-file", env, "add", "--first", "Ana", "--last", "Pérez", "--phone", "555-1234", "--email", "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Added contact 1\n", out)

	out, err = execute(t, "--env-file", env, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "FIRST NAME")
	assert.Contains(t, out, "555-1234")

	out, err = execute(t, "--env-file", env, "update", "1", "--phone", "")
	require.NoError(t, err)
	assert.Equal(t, "Updated contact 1\n", out)

	out, err = execute(t, "--env-file", env, "get", "1", "--json")
	require.NoError(t, err)
	var contact database.Contact
	require.NoError(t, json.Unmarshal([]byte(out), &contact))
	assert.Equal(t, database.Contact{ID: 1, FirstName: "Ana", LastName: "Pérez", Email: "ana@x.com"}, contact)

	out, err = execute(t, "--env-file", env, "update", "1")
	require.NoError(t, err)
	assert.Equal(t, "No changes\n", out)

	out, err = execute(t, "--env-file", env, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted contact 1\n", out)

	out, err = execute(t, "--env-file", env, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "No contact with ID 1\n", out)

	_, err = execute(t, "--env-file", env, "get", "1")
	assert.ErrorIs(t, err, database.ErrNotFound)

	out, err = execute(t, "--env-file", env, "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestAddCommand_RequiresNames(t *testing.T) {
	env := sqliteEnv(t)

	_, err := execute(t, "--env-file", env, "add", "--first", "Ana")
	assert.Error(t, err)

	_, err = execute(t, "--env-file", env, "add", "--first", "Ana", "--last", "")
	assert.ErrorIs(t, err, database.ErrInvalidContact)
}

func TestUpdateCommand_RejectsClearingNames(t *testing.T) {
	env := sqliteEnv(t)

	_, err := execute(t, "--env-file", env, "add", "--first", "Ana", "--last", "Pérez")
	require.NoError(t, err)

	_, err = execute(t, "--env-file", env, "update", "1", "--first", "")
	assert.ErrorIs(t, err, database.ErrInvalidContact)

	_, err = execute(t, "--env-file", env, "update", "1", "--last", "   ")
	assert.ErrorIs(t, err, database.ErrInvalidContact)
}

func TestAddCommand_RejectsBlankNames(t *testing.T) {
	env := sqliteEnv(t)

	_, err := execute(t, "--env-file", env, "add", "--first", "  ", "--last", "Pérez")
	assert.ErrorIs(t, err, database.ErrInvalidContact)

	out, err := execute(t, "--env-file", env, "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestParseID(t *testing.T) {
	id, err := parseID("7")
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	for _, arg := range []string{"0", "-1", "x"} {
		_, err := parseID(arg)
		assert.ErrorIs(t, err, errInvalidID, arg)
	}
}

func TestAPIKeyCommand(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "apikey")
	require.NoError(t, err)
	assert.Contains(t, out, "API key:")
	assert.Contains(t, out, "API_KEY_HASH=$2a$12$")
}
