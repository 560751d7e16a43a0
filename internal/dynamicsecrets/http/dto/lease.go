// Package dto provides request and response types for the lease endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
)

// CreateLeaseRequest requests a new lease. Without ttl_seconds the dynamic
// secret's default TTL applies.
type CreateLeaseRequest struct {
	TTLSeconds *int64 `json:"ttl_seconds"`
	Name       string `json:"name"`
}

func (r *CreateLeaseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TTLSeconds, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// TTL returns the requested TTL, or nil for the default.
func (r *CreateLeaseRequest) TTL() *time.Duration {
	if r.TTLSeconds == nil {
		return nil
	}
	ttl := time.Duration(*r.TTLSeconds) * time.Second
	return &ttl
}

// RenewLeaseRequest extends a lease to now+ttl_seconds.
type RenewLeaseRequest struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

// TTLDuration returns the requested TTL.
func (r *RenewLeaseRequest) TTLDuration() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

func (r *RenewLeaseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TTLSeconds, validation.Required, validation.Min(int64(1))),
	)
}

// LeaseResponse is lease metadata. Credentials are never included.
type LeaseResponse struct {
	ID              string     `json:"id"`
	DynamicSecretID string     `json:"dynamic_secret_id"`
	Name            string     `json:"name,omitempty"`
	Status          string     `json:"status"`
	TTLSeconds      int64      `json:"ttl_seconds"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	RenewedAt       *time.Time `json:"renewed_at,omitempty"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// LeaseCredentialsResponse carries decrypted credentials by output key name.
type LeaseCredentialsResponse struct {
	Lease LeaseResponse     `json:"lease"`
	Data  map[string]string `json:"data"`
}

// ListLeasesResponse wraps a page of leases.
type ListLeasesResponse struct {
	Data []LeaseResponse `json:"data"`
}

func MapLeaseToResponse(lease *dynamicDomain.Lease) LeaseResponse {
	return LeaseResponse{
		ID:              lease.ID.String(),
		DynamicSecretID: lease.DynamicSecretID.String(),
		Name:            lease.Name,
		Status:          string(lease.Status),
		TTLSeconds:      int64(lease.TTL / time.Second),
		ExpiresAt:       lease.ExpiresAt,
		CreatedAt:       lease.CreatedAt,
		RenewedAt:       lease.RenewedAt,
		RevokedAt:       lease.RevokedAt,
	}
}

func MapLeaseCredentialsToResponse(creds *dynamicDomain.LeaseCredentials) LeaseCredentialsResponse {
	return LeaseCredentialsResponse{
		Lease: MapLeaseToResponse(creds.Lease),
		Data:  creds.Values,
	}
}

func MapLeasesToListResponse(leases []*dynamicDomain.Lease) ListLeasesResponse {
	data := make([]LeaseResponse, 0, len(leases))
	for _, lease := range leases {
		data = append(data, MapLeaseToResponse(lease))
	}
	return ListLeasesResponse{Data: data}
}
