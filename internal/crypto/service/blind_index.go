package service

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// KeyDigest returns the blind index of a secret key name: keyed BLAKE2b-256
// over the upper-cased name, keyed with the environment salt, hex encoded.
// Lookups are therefore case-insensitive on the key name.
func KeyDigest(keyName, salt string) (string, error) {
	h, err := blake2b.New256([]byte(salt))
	if err != nil {
		return "", fmt.Errorf("failed to create blind index hash: %w", err)
	}
	h.Write([]byte(strings.ToUpper(keyName)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestEqual compares two digests in constant time.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
