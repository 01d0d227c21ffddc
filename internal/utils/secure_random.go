package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// GenerateSecureRandomString generates a cryptographically secure random string of the specified byte length,
// then base58 encodes it so the result has no separator or URL-unsafe characters.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base58.Encode(b), nil
}
