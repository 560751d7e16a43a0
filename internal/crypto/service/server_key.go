package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
)

// LoadServerKeyPair derives the server keypair from SERVER_SECRET.
//
// Without a KMS key URI the secret is the 64-char hex seed itself. With one, the
// secret is the base64 KMS ciphertext of that hex seed and is decrypted through
// the keeper first. Key material never reaches the logger.
func LoadServerKeyPair(
	ctx context.Context,
	serverSecret, kmsKeyURI string,
	kmsService KMSService,
	logger *slog.Logger,
) (*cryptoDomain.KeyPair, error) {
	serverSecret = strings.TrimSpace(serverSecret)
	if serverSecret == "" {
		return nil, cryptoDomain.ErrServerSecretNotSet
	}

	seedHex := serverSecret
	if kmsKeyURI != "" {
		logger.Info("unwrapping server secret with KMS")

		ciphertext, err := base64.StdEncoding.DecodeString(serverSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to decode KMS-wrapped server secret: %w", err)
		}

		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt server secret with KMS: %w", err)
		}
		seedHex = string(plaintext)
		cryptoDomain.Zero(plaintext)
	}

	seed, err := decodeKey(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid server secret: %w", err)
	}
	defer cryptoDomain.Zero(seed)

	return DeriveKeyPair(seed)
}

// GenerateServerSecret returns a new SERVER_SECRET value, KMS-wrapped when a
// keeper is given.
func GenerateServerSecret(ctx context.Context, keeper cryptoDomain.KMSKeeper) (string, error) {
	seed := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	defer cryptoDomain.Zero(seed)

	seedHex := hex.EncodeToString(seed)
	if keeper == nil {
		return seedHex, nil
	}

	ciphertext, err := keeper.Encrypt(ctx, []byte(seedHex))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt server secret with KMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	defer cryptoDomain.Zero(b)
	return hex.EncodeToString(b), nil
}
