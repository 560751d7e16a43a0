package service

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

const (
	wirePrefix  = "ph"
	wireVersion = "v1"
)

var wireFormat = regexp.MustCompile(`^ph:v1:[0-9a-f]{64}:.+$`)

// EncryptAsymmetric encrypts plaintext for the holder of recipientPublicKeyHex.
//
// A fresh ephemeral keypair acts as the kx client; the plaintext is sealed with
// the client transmit key and the result is
// "ph:v1:<ephemeralPublicKeyHex>:<base64(ciphertext||nonce)>".
func EncryptAsymmetric(plaintext, recipientPublicKeyHex string) (string, error) {
	recipientPub, err := decodeKey(recipientPublicKeyHex)
	if err != nil {
		return "", err
	}

	ephemeral, err := GenerateKeyPair()
	if err != nil {
		return "", err
	}
	defer ephemeral.Close()

	key, err := sessionKey(ephemeral.PrivateKey, recipientPub, ephemeral.PublicKey, recipientPub)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(key)

	payload, err := EncryptRaw([]byte(plaintext), key)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{
		wirePrefix,
		wireVersion,
		ephemeral.PublicKeyHex(),
		base64.StdEncoding.EncodeToString(payload),
	}, ":"), nil
}

// DecryptAsymmetric reverses EncryptAsymmetric with the recipient keypair,
// which acts as the kx server.
func DecryptAsymmetric(wire, recipientPrivateKeyHex, recipientPublicKeyHex string) (string, error) {
	if wire == "" || !ValidateEncryptedStringFormat(wire) {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	parts := strings.Split(wire, ":")
	if len(parts) != 4 || parts[0] != wirePrefix || parts[1] != wireVersion {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	ephemeralPub, err := hex.DecodeString(parts[2])
	if err != nil || len(ephemeralPub) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	payload, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	kp, err := KeyPairFromHex(recipientPrivateKeyHex, recipientPublicKeyHex)
	if err != nil {
		return "", err
	}
	defer kp.Close()

	key, err := sessionKey(kp.PrivateKey, ephemeralPub, ephemeralPub, kp.PublicKey)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(key)

	plaintext, err := DecryptRaw(payload, key)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// DecryptWithKeyPair is DecryptAsymmetric for callers holding a KeyPair.
func DecryptWithKeyPair(wire string, kp *cryptoDomain.KeyPair) (string, error) {
	return DecryptAsymmetric(wire, kp.PrivateKeyHex(), kp.PublicKeyHex())
}

// ValidateEncryptedStringFormat reports whether s looks like a ph:v1 ciphertext.
// The empty string is accepted as an absent optional field.
func ValidateEncryptedStringFormat(s string) bool {
	if s == "" {
		return true
	}
	return wireFormat.MatchString(s)
}

// sessionKey computes the shared key both sides of crypto_kx agree on: the
// second half of BLAKE2b-512(q || clientPk || serverPk). It is the client's
// tx key and the server's rx key.
func sessionKey(privateKey, peerPublicKey, clientPublicKey, serverPublicKey []byte) ([]byte, error) {
	q, err := curve25519.X25519(privateKey, peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to compute shared secret: %w", err)
	}
	defer cryptoDomain.Zero(q)

	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	h.Write(q)
	h.Write(clientPublicKey)
	h.Write(serverPublicKey)
	keys := h.Sum(nil)
	defer cryptoDomain.Zero(keys)

	key := make([]byte, cryptoDomain.KeySize)
	copy(key, keys[cryptoDomain.KeySize:])
	return key, nil
}
