// Package service implements provider adapters that create and tear down the
// external credentials behind dynamic secret leases.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
)

// ProviderAdapter provisions and deletes external credentials. Provision,
// Teardown and Cleanup must be safe to retry and must report partial-success
// metadata on failure.
type ProviderAdapter interface {
	Provider() dynamicDomain.Provider

	// CredentialFields lists the credential field ids a key map may expose.
	CredentialFields() []string

	ValidateConfig(config json.RawMessage) error

	Provision(ctx context.Context, req *dynamicDomain.ProvisionRequest) (*dynamicDomain.ProvisionResult, error)

	// Teardown deletes the resource behind a lease on revocation.
	Teardown(ctx context.Context, req *dynamicDomain.TeardownRequest) (map[string]any, error)

	// Cleanup deletes a resource whose lease was never persisted.
	Cleanup(ctx context.Context, req *dynamicDomain.TeardownRequest) (map[string]any, error)
}

// ProviderRegistry resolves adapters by provider name.
type ProviderRegistry struct {
	adapters map[dynamicDomain.Provider]ProviderAdapter
}

// Get returns the adapter for provider.
func (r *ProviderRegistry) Get(provider dynamicDomain.Provider) (ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamicDomain.ErrUnsupportedProvider, provider)
	}
	return adapter, nil
}

// NewProviderRegistry indexes the given adapters by provider name.
func NewProviderRegistry(adapters ...ProviderAdapter) *ProviderRegistry {
	r := &ProviderRegistry{adapters: make(map[dynamicDomain.Provider]ProviderAdapter, len(adapters))}
	for _, adapter := range adapters {
		r.adapters[adapter.Provider()] = adapter
	}
	return r
}
