package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
)

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseActive LeaseStatus = "ACTIVE"
	// LeaseRenewed is accepted on read as a live status. Renewal itself keeps ACTIVE.
	LeaseRenewed LeaseStatus = "RENEWED"
	LeaseExpired LeaseStatus = "EXPIRED"
	LeaseRevoked LeaseStatus = "REVOKED"
)

// IsLive reports whether the lease may still hold credentials.
func (s LeaseStatus) IsLive() bool {
	return s == LeaseActive || s == LeaseRenewed
}

// Lease is a time-bounded grant of provisioned credentials. Credentials maps
// key map entry ids to ciphertext under the environment public key and is
// empty once the lease is terminal.
type Lease struct {
	ID                     uuid.UUID
	DynamicSecretID        uuid.UUID
	Name                   string
	HolderUserID           *uuid.UUID
	HolderServiceAccountID *uuid.UUID
	TTL                    time.Duration
	ExpiresAt              time.Time
	Status                 LeaseStatus
	Credentials            map[string]string
	ExternalHandle         string
	CleanupJobID           *uuid.UUID
	CreatedAt              time.Time
	RenewedAt              *time.Time
	RevokedAt              *time.Time
}

// SetHolder records the principal as the only holder.
func (l *Lease) SetHolder(principal *authDomain.Principal) error {
	if principal == nil {
		return ErrInvalidHolder
	}
	id := principal.ID
	l.HolderUserID, l.HolderServiceAccountID = nil, nil
	switch principal.Type {
	case authDomain.PrincipalUser:
		l.HolderUserID = &id
	case authDomain.PrincipalServiceAccount:
		l.HolderServiceAccountID = &id
	default:
		return ErrInvalidHolder
	}
	return nil
}

// IsExpiredAt reports whether the lease is terminal or past its expiry at now.
func (l *Lease) IsExpiredAt(now time.Time) bool {
	return !l.Status.IsLive() || now.After(l.ExpiresAt)
}

// LeaseCredentials is a lease with its credentials decrypted and keyed by
// output key name.
type LeaseCredentials struct {
	Lease  *Lease
	Values map[string]string
}

// EventSource records where a lease operation came from.
type EventSource string

const (
	EventSourceRequest   EventSource = "request"
	EventSourceScheduled EventSource = "scheduled"
	EventSourceOperator  EventSource = "operator"
)

// RequestInfo describes the origin of a lease operation. A zero value means
// the scheduler. An empty Source is derived from Principal.
type RequestInfo struct {
	Principal *authDomain.Principal
	IP        string
	UserAgent string
	Source    EventSource
}

// CreateLeaseInput requests a new lease. A nil TTL applies the default.
type CreateLeaseInput struct {
	DynamicSecretID uuid.UUID
	TTL             *time.Duration
	Name            string
	Request         RequestInfo
}

// RenewLeaseInput extends a lease to now+TTL.
type RenewLeaseInput struct {
	LeaseID uuid.UUID
	TTL     time.Duration
	Request RequestInfo
}

// RevokeLeaseInput ends a lease. Manual revokes end REVOKED, scheduled ones EXPIRED.
type RevokeLeaseInput struct {
	LeaseID uuid.UUID
	Manual  bool
	Request RequestInfo
}
