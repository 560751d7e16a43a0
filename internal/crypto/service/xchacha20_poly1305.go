package service

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

// NonceSize is the XChaCha20-Poly1305 nonce size appended to every ciphertext.
const NonceSize = chacha20poly1305.NonceSizeX

// XChaCha20Poly1305Cipher implements the AEAD interface using XChaCha20-Poly1305
// (libsodium's crypto_aead_xchacha20poly1305_ietf). The 24-byte nonce is large
// enough to be drawn at random for every message.
type XChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305 creates a cipher for a 32-byte key.
func NewXChaCha20Poly1305(key []byte) (*XChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 cipher: %w", err)
	}

	return &XChaCha20Poly1305Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *XChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext and verifies its Poly1305 tag.
func (c *XChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptRaw encrypts plaintext under a symmetric key and returns
// ciphertext||nonce, the layout used inside the ph:v1 wire format.
func EncryptRaw(plaintext, key []byte) ([]byte, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	c, err := NewXChaCha20Poly1305(key)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := c.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}
	return append(ciphertext, nonce...), nil
}

// DecryptRaw reverses EncryptRaw. The last NonceSize bytes are the nonce.
func DecryptRaw(payload, key []byte) ([]byte, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if len(payload) < NonceSize+chacha20poly1305.Overhead {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	c, err := NewXChaCha20Poly1305(key)
	if err != nil {
		return nil, err
	}

	split := len(payload) - NonceSize
	return c.Decrypt(payload[:split], payload[split:], nil)
}
