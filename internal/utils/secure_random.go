package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureRandomString returns a URL- and cookie-safe token carrying
// entropyBytes of cryptographically secure randomness. The result is base64url
// encoded, so its character length is roughly 4/3 of entropyBytes.
func GenerateSecureRandomString(entropyBytes int) (string, error) {
	if entropyBytes <= 0 {
		return "", fmt.Errorf("entropyBytes must be positive")
	}
	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
