package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

// DeriveKeyPair deterministically derives an X25519 keypair from a 32-byte seed
// using libsodium's crypto_kx_seed_keypair construction: the private key is the
// unkeyed BLAKE2b-256 of the seed and the public key its scalar base mult.
func DeriveKeyPair(seed []byte) (*cryptoDomain.KeyPair, error) {
	if len(seed) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	sk := blake2b.Sum256(seed)
	return keyPairFromPrivate(sk[:])
}

// GenerateKeyPair returns a random X25519 keypair.
func GenerateKeyPair() (*cryptoDomain.KeyPair, error) {
	sk := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(sk); err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return keyPairFromPrivate(sk)
}

// KeyPairFromHex decodes a hex keypair, as handed around by callers that keep
// keys in their string form.
func KeyPairFromHex(privateKeyHex, publicKeyHex string) (*cryptoDomain.KeyPair, error) {
	sk, err := decodeKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	pk, err := decodeKey(publicKeyHex)
	if err != nil {
		cryptoDomain.Zero(sk)
		return nil, err
	}
	return &cryptoDomain.KeyPair{PublicKey: pk, PrivateKey: sk}, nil
}

func keyPairFromPrivate(sk []byte) (*cryptoDomain.KeyPair, error) {
	pk, err := curve25519.X25519(sk, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	priv := make([]byte, cryptoDomain.KeySize)
	copy(priv, sk)
	cryptoDomain.Zero(sk)

	return &cryptoDomain.KeyPair{PublicKey: pk, PrivateKey: priv}, nil
}

func decodeKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidKeyEncoding
	}
	if len(b) != cryptoDomain.KeySize {
		cryptoDomain.Zero(b)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return b, nil
}
