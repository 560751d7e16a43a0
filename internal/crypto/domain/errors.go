package domain

import (
	"github.com/allisson/envsecrets/internal/errors"
)

// Cryptographic operation error definitions.
//
// Messages are deliberately generic: they never carry plaintext, key material
// or a hint about which step of decryption failed.
var (
	// ErrInvalidCiphertext indicates a wire string is not in the ph:v1 format.
	ErrInvalidCiphertext = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext format")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// Wrong key, truncated payload and tampered ciphertext all collapse into
	// this error so callers cannot be used as a decryption oracle.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidKeySize indicates a key or seed is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyEncoding indicates a hex-encoded key could not be decoded.
	ErrInvalidKeyEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid key encoding")

	// ErrServerSecretNotSet indicates SERVER_SECRET is empty.
	ErrServerSecretNotSet = errors.New("SERVER_SECRET is not set")

	// ErrEnvironmentKeysNotFound indicates no key material exists for an environment.
	ErrEnvironmentKeysNotFound = errors.Wrap(errors.ErrNotFound, "environment keys not found")

	// ErrEnvironmentKeysAlreadyExist indicates key material was already created.
	ErrEnvironmentKeysAlreadyExist = errors.Wrap(errors.ErrConflict, "environment keys already exist")
)
