// Package dto provides data transfer objects for the token endpoint.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	customValidation "github.com/allisson/envsecrets/internal/validation"
)

// IssueTokenRequest contains service account credentials.
type IssueTokenRequest struct {
	ServiceAccountID string `json:"service_account_id"`
	Secret           string `json:"secret"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ServiceAccountID, validation.Required, is.UUID),
		validation.Field(&r.Secret, validation.Required, customValidation.NotBlank),
	)
}

// IssueTokenResponse is returned once per issued token.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
