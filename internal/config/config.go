// Package config loads contactbook settings from the environment and an
// optional .env file, and validates them before anything touches the store.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Table layouts
const (
	TableContacts = "contacts"
	TableLegacy   = "legacy"
)

// Log level constants
const (
	LogLevelTrace = "trace"
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// DefaultEnvFile is read when --env-file is not given
const DefaultEnvFile = ".env"

// Settings is the full application configuration
type Settings struct {
	Database Database
	Logging  Logging

	// MaintenanceSchedule is a cron spec for periodic statistics refresh in serve mode
	MaintenanceSchedule string

	// APIKeyHash is a bcrypt hash guarding the HTTP surface; empty disables the check
	APIKeyHash string
}

// Database holds everything needed to open one connection to the store
type Database struct {
	Driver     string `validate:"required,oneof=mysql postgres sqlite"`
	Host       string `validate:"required_unless=Driver sqlite"`
	User       string
	Password   string
	Name       string `validate:"required"`
	Table      string `validate:"required,oneof=contacts legacy"`
	InitSchema bool
	Timeouts   TimeoutConfig
}

// Logging holds log level and rotating file settings
type Logging struct {
	Level      string `validate:"required,oneof=trace debug info warn error"`
	File       string
	MaxSizeMB  int `validate:"gte=1"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
	Compress   bool
}

// Logging defaults
const (
	DefaultLogFilePath = "contactbook.log"
	DefaultMaxSizeMB   = 50
	DefaultMaxBackups  = 5
	DefaultMaxAgeDays  = 30
	DefaultCompress    = true
)

// Validate checks that all fields in Database are valid
func (d *Database) Validate() error {
	if err := validator.New().Struct(d); err != nil {
		return fmt.Errorf("validation failed for database settings: %w", err)
	}
	return nil
}

// Validate checks that all fields in Logging are valid
func (l *Logging) Validate() error {
	if err := validator.New().Struct(l); err != nil {
		return fmt.Errorf("validation failed for logging settings: %w", err)
	}
	return nil
}

// Validate checks the whole configuration
func (s *Settings) Validate() error {
	if err := s.Database.Validate(); err != nil {
		return err
	}
	return s.Logging.Validate()
}

// Load reads envFile (a missing file is not an error) and resolves all settings.
// Process environment variables take precedence over the file.
func Load(envFile string) (*Settings, error) {
	file, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	return FromGetter(NewEnv(file)), nil
}

// FromGetter resolves settings from an arbitrary source
func FromGetter(getter SettingsGetter) *Settings {
	l := NewLoader(getter)

	driver := l.String("DB_DRIVER", DriverMySQL)
	defaults := DefaultTimeoutConfig()

	return &Settings{
		Database: Database{
			Driver:     driver,
			Host:       l.String("DB_HOST", ""),
			User:       l.String("DB_USER", ""),
			Password:   l.String("DB_PASSWORD", ""),
			Name:       l.String("DB_NAME", ""),
			Table:      l.String("DB_TABLE", TableContacts),
			InitSchema: l.Bool("DB_INIT_SCHEMA", driver == DriverSQLite),
			Timeouts: TimeoutConfig{
				Connect: l.Duration("DB_CONNECT_TIMEOUT", defaults.Connect),
				Read:    l.Duration("DB_READ_TIMEOUT", defaults.Read),
				Write:   l.Duration("DB_WRITE_TIMEOUT", defaults.Write),
			},
		},
		Logging: Logging{
			Level:      l.String("LOG_LEVEL", LogLevelInfo),
			File:       l.String("LOG_FILE", DefaultLogFilePath),
			MaxSizeMB:  l.Int("LOG_MAX_SIZE_MB", DefaultMaxSizeMB),
			MaxBackups: l.Int("LOG_MAX_BACKUPS", DefaultMaxBackups),
			MaxAgeDays: l.Int("LOG_MAX_AGE_DAYS", DefaultMaxAgeDays),
			Compress:   l.Bool("LOG_COMPRESS", DefaultCompress),
		},
		MaintenanceSchedule: l.String("MAINTENANCE_SCHEDULE", ""),
		APIKeyHash:          l.String("API_KEY_HASH", ""),
	}
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}
