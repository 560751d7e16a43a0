// Package service provides the envelope-encryption primitives: X25519 key
// derivation, the ph:v1 asymmetric wire format, XChaCha20-Poly1305 and the
// keyed BLAKE2b blind index.
package service

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}
