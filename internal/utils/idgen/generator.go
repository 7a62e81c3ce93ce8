package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSecureID returns an identifier of the form "<prefix>_<random>",
// where the random part is drawn from crypto/rand over [a-z0-9].
func GenerateSecureID(prefix string, length int) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("prefix cannot be empty")
	}
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return prefix + "_" + string(buf), nil
}

// ValidateIDFormat reports whether id has the expected prefix followed by an
// underscore and a non-empty [a-z0-9] suffix.
func ValidateIDFormat(id, expectedPrefix string) bool {
	if id == "" || expectedPrefix == "" {
		return false
	}
	if !strings.HasPrefix(id, expectedPrefix+"_") {
		return false
	}
	suffix := id[len(expectedPrefix)+1:]
	if suffix == "" {
		return false
	}
	for _, char := range suffix {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
