package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeyLength is the length of generated API keys in bytes (will be hex encoded)
	APIKeyLength = 32
)

// GenerateAPIKey creates a new cryptographically secure API key
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// NewAPIKey generates a key together with the hash to configure as API_KEY_HASH
func NewAPIKey() (key, hash string, err error) {
	key, err = GenerateAPIKey()
	if err != nil {
		return "", "", err
	}
	hash, err = HashAPIKey(key)
	if err != nil {
		return "", "", err
	}
	return key, hash, nil
}
