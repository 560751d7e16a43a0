// Package domain defines the key material types used by envelope encryption.
package domain

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// KeySize is the size in bytes of X25519 keys, seeds and symmetric keys.
const KeySize = 32

// KeyPair is an X25519 key-exchange keypair. It only ever lives in memory.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// PublicKeyHex returns the lowercase hex encoding of the public key.
func (k *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(k.PublicKey)
}

// PrivateKeyHex returns the lowercase hex encoding of the private key.
func (k *KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.PrivateKey)
}

// Close zeroes the private half.
func (k *KeyPair) Close() {
	if k == nil {
		return
	}
	Zero(k.PrivateKey)
}

// EnvironmentKeys is the wrapped key material of one environment. Seed and salt
// are hex strings encrypted under the server public key.
type EnvironmentKeys struct {
	EnvironmentID uuid.UUID
	WrappedSeed   string
	WrappedSalt   string
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// EnvironmentContext is the unwrapped crypto context of an environment:
// the blind-index salt and the environment keypair.
type EnvironmentContext struct {
	EnvironmentID uuid.UUID
	Salt          string
	KeyPair       *KeyPair
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap the server seed.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
