package config

import (
	"os"
	"strconv"
	"time"
)

// SettingsGetter is an interface for retrieving raw settings by key
type SettingsGetter interface {
	GetSetting(key string) (string, error)
}

// Env resolves settings from the process environment first and the parsed
// .env file second.
type Env struct {
	file map[string]string
}

// NewEnv creates a getter over the given .env values (may be nil)
func NewEnv(file map[string]string) *Env {
	return &Env{file: file}
}

// GetSetting returns the value for key, or "" when it is not set anywhere
func (e *Env) GetSetting(key string) (string, error) {
	if val, ok := os.LookupEnv(key); ok {
		return val, nil
	}
	return e.file[key], nil
}

// Loader provides typed access to settings with default values
type Loader struct {
	getter SettingsGetter
}

// NewLoader creates a new settings loader
func NewLoader(getter SettingsGetter) *Loader {
	return &Loader{getter: getter}
}

// Int retrieves an integer setting, returning defaultVal if not found or invalid
func (l *Loader) Int(key string, defaultVal int) int {
	if val, _ := l.getter.GetSetting(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// Bool retrieves a boolean setting, returning defaultVal if not found or invalid.
// Accepts anything strconv.ParseBool understands (1, t, true, 0, f, false...).
func (l *Loader) Bool(key string, defaultVal bool) bool {
	if val, _ := l.getter.GetSetting(key); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// String retrieves a string setting, returning defaultVal if not found or empty
func (l *Loader) String(key, defaultVal string) string {
	if val, _ := l.getter.GetSetting(key); val != "" {
		return val
	}
	return defaultVal
}

// Duration retrieves a duration setting, returning defaultVal if not found or invalid
// Expects the value to be in Go duration format (e.g., "1h30m", "5s")
func (l *Loader) Duration(key string, defaultVal time.Duration) time.Duration {
	if val, _ := l.getter.GetSetting(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
