// Package service provides the credential primitives behind service account
// authentication: argon2id secret hashing and SHA-256 bearer tokens.
package service

// SecretService generates and verifies service account secrets.
type SecretService interface {
	// GenerateSecret returns a new plain secret and its hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates and hashes bearer tokens.
type TokenService interface {
	// GenerateToken returns a new plain token and its SHA-256 hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token for lookup.
	HashToken(plainToken string) string
}
