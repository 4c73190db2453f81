package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the bcrypt cost factor
	BcryptCost = 12
)

// ErrInvalidHash is returned when a configured hash is not a bcrypt hash
var ErrInvalidHash = errors.New("auth: not a bcrypt hash")

// HashAPIKey hashes an API key using bcrypt
func HashAPIKey(apiKey string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

// CheckAPIKey verifies an API key against a hash
func CheckAPIKey(apiKey, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
	return err == nil
}

// ValidateHash checks that hash was produced by bcrypt, so a typo in the
// configured value is reported at startup instead of rejecting every request.
func ValidateHash(hash string) error {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return nil
}
