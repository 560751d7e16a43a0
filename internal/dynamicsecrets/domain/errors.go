package domain

import (
	"github.com/allisson/envsecrets/internal/errors"
)

var (
	ErrDynamicSecretNotFound       = errors.Wrap(errors.ErrNotFound, "dynamic secret not found")
	ErrLeaseNotFound               = errors.Wrap(errors.ErrNotFound, "lease not found")
	ErrProviderCredentialsNotFound = errors.Wrap(errors.ErrNotFound, "provider credentials not found")

	ErrTTLExceeded  = errors.Wrap(errors.ErrInvalidInput, "ttl exceeds the maximum allowed")
	ErrInvalidTTL   = errors.Wrap(errors.ErrInvalidInput, "ttl must be positive")
	ErrLeaseRenewal = errors.Wrap(errors.ErrInvalidInput, "lease renewal requires a positive ttl")
	ErrLeaseExpired = errors.Wrap(errors.ErrGone, "lease has expired or was revoked")

	// ErrLeaseAlreadyRevoked is swallowed by Revoke.
	ErrLeaseAlreadyRevoked = errors.Wrap(errors.ErrConflict, "lease already revoked")

	ErrPlanRestriction = errors.Wrap(errors.ErrPaymentRequired, "dynamic secrets are not available on this plan")

	ErrInvalidHolder          = errors.Wrap(errors.ErrInvalidInput, "lease holder must be a user or service account")
	ErrUnsupportedProvider    = errors.Wrap(errors.ErrInvalidInput, "unsupported provider")
	ErrInvalidProviderConfig  = errors.Wrap(errors.ErrInvalidInput, "invalid provider config")
	ErrInvalidTTLRange        = errors.Wrap(errors.ErrInvalidInput, "ttl must satisfy 0 < default_ttl <= max_ttl")
	ErrInvalidKeyMap          = errors.Wrap(errors.ErrInvalidInput, "invalid key map")
	ErrMissingCredentialField = errors.New("provider did not return a mapped credential field")
)
