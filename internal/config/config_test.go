package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapGetter map[string]string

func (m mapGetter) GetSetting(key string) (string, error) {
	return m[key], nil
}

func TestLoader(t *testing.T) {
	l := NewLoader(mapGetter{
		"int":      "42",
		"bad_int":  "forty-two",
		"bool":     "1",
		"bad_bool": "maybe",
		"str":      "value",
		"dur":      "1m30s",
		"bad_dur":  "soon",
	})

	assert.Equal(t, 42, l.Int("int", 7))
	assert.Equal(t, 7, l.Int("bad_int", 7))
	assert.Equal(t, 7, l.Int("missing", 7))

	assert.True(t, l.Bool("bool", false))
	assert.True(t, l.Bool("bad_bool", true))
	assert.False(t, l.Bool("missing", false))

	assert.Equal(t, "value", l.String("str", "fallback"))
	assert.Equal(t, "fallback", l.String("missing", "fallback"))

	assert.Equal(t, 90*time.Second, l.Duration("dur", time.Second))
	assert.Equal(t, time.Second, l.Duration("bad_dur", time.Second))
}

func TestFromGetter_Defaults(t *testing.T) {
	s := FromGetter(mapGetter{})

	assert.Equal(t, DriverMySQL, s.Database.Driver)
	assert.Equal(t, TableContacts, s.Database.Table)
	assert.False(t, s.Database.InitSchema)
	assert.Equal(t, DefaultTimeoutConfig(), s.Database.Timeouts)
	assert.Equal(t, LogLevelInfo, s.Logging.Level)
	assert.Equal(t, DefaultLogFilePath, s.Logging.File)
	assert.Equal(t, DefaultMaxSizeMB, s.Logging.MaxSizeMB)
	assert.Empty(t, s.MaintenanceSchedule)
	assert.Empty(t, s.APIKeyHash)
}

func TestFromGetter_SQLiteInitsSchemaByDefault(t *testing.T) {
	s := FromGetter(mapGetter{"DB_DRIVER": DriverSQLite, "DB_NAME": "contacts.db"})
	assert.True(t, s.Database.InitSchema)

	s = FromGetter(mapGetter{"DB_DRIVER": DriverSQLite, "DB_NAME": "contacts.db", "DB_INIT_SCHEMA": "false"})
	assert.False(t, s.Database.InitSchema)
}

func TestDatabaseValidate(t *testing.T) {
	tests := []struct {
		name          string
		settings      Database
		expectedError bool
	}{
		{
			name:     "valid mysql",
			settings: Database{Driver: DriverMySQL, Host: "localhost", User: "root", Name: "agenda", Table: TableContacts},
		},
		{
			name:     "valid sqlite without host",
			settings: Database{Driver: DriverSQLite, Name: "contacts.db", Table: TableLegacy},
		},
		{
			name:          "missing host for postgres",
			settings:      Database{Driver: DriverPostgres, Name: "agenda", Table: TableContacts},
			expectedError: true,
		},
		{
			name:          "missing name",
			settings:      Database{Driver: DriverMySQL, Host: "localhost", Table: TableContacts},
			expectedError: true,
		},
		{
			name:          "unknown driver",
			settings:      Database{Driver: "oracle", Host: "localhost", Name: "agenda", Table: TableContacts},
			expectedError: true,
		},
		{
			name:          "unknown table layout",
			settings:      Database{Driver: DriverMySQL, Host: "localhost", Name: "agenda", Table: "people"},
			expectedError: true,
		},
		{
			name: "negative timeout",
			settings: Database{
				Driver: DriverMySQL, Host: "localhost", Name: "agenda", Table: TableContacts,
				Timeouts: TimeoutConfig{Connect: -time.Second},
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingValidate(t *testing.T) {
	valid := Logging{Level: LogLevelDebug, MaxSizeMB: 10}
	require.NoError(t, valid.Validate())

	invalid := Logging{Level: "verbose", MaxSizeMB: 10}
	require.Error(t, invalid.Validate())

	zeroSize := Logging{Level: LogLevelInfo}
	require.Error(t, zeroSize.Validate())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DB_DRIVER=sqlite\nDB_NAME=agenda.db\nDB_TABLE=legacy\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, s.Database.Driver)
	assert.Equal(t, "agenda.db", s.Database.Name)
	assert.Equal(t, TableLegacy, s.Database.Table)
	assert.Equal(t, LogLevelDebug, s.Logging.Level)
	require.NoError(t, s.Validate())
}

func TestLoad_ProcessEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_USER=from_file\n"), 0o600))
	t.Setenv("DB_USER", "from_env")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", s.Database.User)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=first\n"), 0o600))

	var mu sync.Mutex
	var latest *Settings
	w, err := Watch(path, func(s *Settings) {
		mu.Lock()
		latest = s
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=second\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return latest != nil && latest.Database.Name == "second"
	}, 5*time.Second, 50*time.Millisecond)
}
