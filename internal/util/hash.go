// Package util holds small helpers shared across packages.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHash returns the hex SHA-256 of text with runs of whitespace
// collapsed, so reformatted copies of the same text share a hash.
func ContentHash(text string) string {
	hasher := sha256.New()
	for i, field := range strings.Fields(text) {
		if i > 0 {
			hasher.Write([]byte{' '})
		}
		hasher.Write([]byte(field))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// ShortHash truncates a hash to 16 characters for logging.
func ShortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
