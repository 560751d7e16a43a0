// Package domain defines the stored and decrypted forms of environment secrets
// and the lookup records used to resolve cross-scope references.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
)

// Secret is the stored form of a key/value secret. Key, Value and Comment hold
// ph:v1 ciphertext under the environment public key; KeyDigest is the blind
// index of the upper-cased key name.
type Secret struct {
	ID            uuid.UUID
	EnvironmentID uuid.UUID
	Path          string
	Key           string
	KeyDigest     string
	Value         string
	Comment       string
	Version       uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// DecryptedSecret is the server-side decrypted view of a Secret. Value has
// references already substituted.
type DecryptedSecret struct {
	ID            uuid.UUID
	EnvironmentID uuid.UUID
	Path          string
	Key           string
	Value         string
	Comment       string
	Version       uint
	UpdatedAt     time.Time
}

// App groups environments inside an organization.
type App struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

// Environment is a named scope of secrets inside an App.
type Environment struct {
	ID    uuid.UUID
	AppID uuid.UUID
	Name  string
}

// ResolveOptions controls reference resolution for a read.
type ResolveOptions struct {
	// Principal is the acting identity. Nil means a system call.
	Principal *authDomain.Principal
	// RequireResolvedReferences turns unresolved or denied references into a
	// SecretReferenceError instead of leaving placeholders in place.
	RequireResolvedReferences bool
}

// CreateSecretInput holds the plaintext fields of a new secret.
type CreateSecretInput struct {
	EnvironmentID uuid.UUID
	Path          string
	Key           string
	Value         string
	Comment       string
}

// UpdateSecretInput holds the replacement plaintext fields of a secret.
type UpdateSecretInput struct {
	ID      uuid.UUID
	Key     string
	Value   string
	Comment string
}

// NormalizePath enforces a leading slash and strips trailing ones. The root
// path is "/".
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
