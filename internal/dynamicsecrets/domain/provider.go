package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envsecrets/internal/errors"
)

// ProvisionRequest carries everything an adapter needs to create credentials.
// Auth holds decrypted provider credentials.
type ProvisionRequest struct {
	LeaseID   uuid.UUID
	Config    json.RawMessage
	Auth      map[string]string
	TTL       time.Duration
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ProvisionResult is a successful provisioning. Handle identifies the external
// resource for teardown; Credentials is keyed by credential field id.
type ProvisionResult struct {
	Handle      string
	Credentials map[string]string
	Metadata    map[string]any
}

// TeardownRequest identifies an external resource to delete.
type TeardownRequest struct {
	Handle string
	Config json.RawMessage
	Auth   map[string]string
}

// ProviderError wraps an external API failure with the step metadata
// collected so far.
type ProviderError struct {
	Op   string
	Meta map[string]any
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes both the provider failure kind and the underlying error.
func (e *ProviderError) Unwrap() []error {
	return []error{errors.ErrBadGateway, e.Err}
}
