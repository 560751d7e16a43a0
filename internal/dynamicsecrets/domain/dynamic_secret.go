// Package domain defines dynamic secrets, their leases and the audit events
// written on every lease state transition.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Provider names a ProviderAdapter implementation.
type Provider string

// ProviderAWSIAM provisions temporary IAM users with access keys.
const ProviderAWSIAM Provider = "aws-iam"

// KeyMapEntry exposes one provisioned credential field under an output key
// name. KeyName is ciphertext under the environment public key.
type KeyMapEntry struct {
	ID      string `json:"id"`
	KeyName string `json:"key_name"`
}

// DynamicSecret describes how to provision leased credentials.
type DynamicSecret struct {
	ID                uuid.UUID
	EnvironmentID     uuid.UUID
	Name              string
	Path              string
	Provider          Provider
	Config            json.RawMessage
	KeyMap            []KeyMapEntry
	DefaultTTL        time.Duration
	MaxTTL            time.Duration
	AuthenticationRef uuid.UUID
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// ResolveTTL applies the lease TTL policy. An unspecified TTL becomes
// min(DefaultTTL, MaxTTL); an explicit TTL must be positive and not above MaxTTL.
func (d *DynamicSecret) ResolveTTL(requested *time.Duration) (time.Duration, error) {
	if requested == nil {
		return min(d.DefaultTTL, d.MaxTTL), nil
	}
	if *requested <= 0 {
		return 0, ErrInvalidTTL
	}
	if *requested > d.MaxTTL {
		return 0, ErrTTLExceeded
	}
	return *requested, nil
}

// ProviderCredentials authenticates a provider adapter. Each credential value
// is ciphertext under the server public key.
type ProviderCredentials struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Provider       Provider
	Credentials    map[string]string
	CreatedAt      time.Time
}

// KeyMapInput is a plaintext key map entry supplied on creation.
type KeyMapInput struct {
	ID      string
	KeyName string
}

// CreateDynamicSecretInput holds the operator-supplied definition.
type CreateDynamicSecretInput struct {
	EnvironmentID     uuid.UUID
	Name              string
	Path              string
	Provider          Provider
	Config            json.RawMessage
	KeyMap            []KeyMapInput
	DefaultTTL        time.Duration
	MaxTTL            time.Duration
	AuthenticationRef uuid.UUID
}

// CreateProviderCredentialsInput holds plaintext provider credentials.
type CreateProviderCredentialsInput struct {
	OrganizationID uuid.UUID
	Name           string
	Provider       Provider
	Credentials    map[string]string
}
