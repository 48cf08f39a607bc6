package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// APIKeyPrefix marks keys issued for the external API.
const APIKeyPrefix = "smm_"

// NewResetToken returns a random 32-byte token, hex encoded.
func NewResetToken() (string, error) { return randomHex(32) }

// NewAPIKey returns a fresh external API key.
func NewAPIKey() (string, error) {
	raw, err := randomHex(24)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + raw, nil
}

// HashToken returns the SHA-256 hash of a raw token as hex. Only hashes of
// reset tokens and API keys are stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes from crypto/rand, hex encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
