// Package domain defines authentication and access-control domain models:
// principals, service accounts, their tokens and environment grants.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalType identifies who is acting on a request.
type PrincipalType string

const (
	// PrincipalUser is an organization member.
	PrincipalUser PrincipalType = "user"
	// PrincipalServiceAccount is a machine identity.
	PrincipalServiceAccount PrincipalType = "service_account"
)

// Valid reports whether t is a known principal type.
func (t PrincipalType) Valid() bool {
	return t == PrincipalUser || t == PrincipalServiceAccount
}

// Principal is the acting identity of a request. A nil *Principal denotes a
// system call and is always allowed by access checks.
type Principal struct {
	Type           PrincipalType
	ID             uuid.UUID
	OrganizationID uuid.UUID
}

// ServiceAccount is a machine identity that authenticates with a secret.
type ServiceAccount struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	SecretHash     string //nolint:gosec // argon2id hash, not plaintext
	IsActive       bool
	CreatedAt      time.Time
}

// Principal returns the principal that acts for the service account.
func (s *ServiceAccount) Principal() *Principal {
	return &Principal{
		Type:           PrincipalServiceAccount,
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
	}
}

// Token is an issued bearer token. Only its SHA-256 hash is stored.
type Token struct {
	ID               uuid.UUID
	ServiceAccountID uuid.UUID
	TokenHash        string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
}

// EnvironmentAccess grants a principal access to one environment.
type EnvironmentAccess struct {
	PrincipalType PrincipalType
	PrincipalID   uuid.UUID
	EnvironmentID uuid.UUID
	CreatedAt     time.Time
}

// IssueTokenInput holds service account credentials.
type IssueTokenInput struct {
	ServiceAccountID uuid.UUID
	Secret           string
}

// IssueTokenOutput holds the plain token, shown once.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}

// CreateServiceAccountOutput holds the new account and its plain secret, shown once.
type CreateServiceAccountOutput struct {
	ServiceAccount *ServiceAccount
	PlainSecret    string
}
