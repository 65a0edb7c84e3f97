// Package crypto provides the password digest used by account records.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest returns the unsalted SHA-256 hex digest of the input. This matches
// the digests already stored in account documents; it obfuscates passwords
// rather than securely hashing them (no salt, no iteration), a known weak
// point kept for compatibility with existing data.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether the password digests to the stored value.
func Matches(stored, password string) bool {
	digest := Digest(password)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1
}
