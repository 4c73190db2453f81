package config

import "time"

// TimeoutConfig holds the driver-level timeouts used when talking to the store.
// The repository itself never adds deadlines; these are handed to the driver.
type TimeoutConfig struct {
	// Connect bounds dialing and the initial handshake. Default: 10s
	Connect time.Duration `validate:"gte=0"`

	// Read bounds a single network read (mysql only). Default: 30s
	Read time.Duration `validate:"gte=0"`

	// Write bounds a single network write (mysql only). Default: 30s
	Write time.Duration `validate:"gte=0"`
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Connect: 10 * time.Second,
		Read:    30 * time.Second,
		Write:   30 * time.Second,
	}
}
