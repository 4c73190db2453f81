package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	first, err := GenerateAPIKey()
	require.NoError(t, err)
	second, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.Len(t, first, APIKeyLength*2)
	assert.NotEqual(t, first, second)
}

func TestNewAPIKey(t *testing.T) {
	key, hash, err := NewAPIKey()
	require.NoError(t, err)

	assert.NoError(t, ValidateHash(hash))
	assert.True(t, CheckAPIKey(key, hash))
	assert.False(t, CheckAPIKey(key+"x", hash))
}

func TestValidateHash(t *testing.T) {
	assert.ErrorIs(t, ValidateHash("not-a-hash"), ErrInvalidHash)
	assert.ErrorIs(t, ValidateHash(""), ErrInvalidHash)
}

func TestCheckAPIKey_InvalidHash(t *testing.T) {
	assert.False(t, CheckAPIKey("key", "plain"))
}
