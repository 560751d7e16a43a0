package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/envsecrets/internal/errors"
)

// serviceAccountSecretPrefix makes leaked secrets easy to recognize in scans.
const serviceAccountSecretPrefix = "es_sa_"

type secretService struct {
	hasher *pwdhash.PasswordHasher
}

func (s *secretService) GenerateSecret() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret := serviceAccountSecretPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	hashedSecret, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash secret")
	}
	return plainSecret, hashedSecret, nil
}

func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// NewSecretService creates a SecretService backed by argon2id with the moderate policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// only reachable with an invalid built-in policy
		panic(err)
	}
	return &secretService{hasher: hasher}
}
