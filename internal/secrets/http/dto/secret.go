// Package dto provides request and response types for the secrets endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	customValidation "github.com/allisson/envsecrets/internal/validation"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

// ReadSecretsQuery holds the query string of a server-side secret read.
type ReadSecretsQuery struct {
	EnvironmentID   string `uri:"environment_id"`
	Path            string `form:"path"`
	Key             string `form:"key"`
	RequireResolved bool   `form:"require_resolved"`
}

// Validate checks the read query.
func (q *ReadSecretsQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.EnvironmentID, validation.Required, is.UUID),
		validation.Field(&q.Path, customValidation.SecretPath),
		validation.Field(&q.Key, customValidation.KeyName),
	)
}

// SecretResponse is the decrypted view of one secret.
type SecretResponse struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Comment   string    `json:"comment,omitempty"`
	Version   uint      `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListSecretsResponse wraps a list of decrypted secrets.
type ListSecretsResponse struct {
	Data []SecretResponse `json:"data"`
}

// MapSecretToResponse converts a decrypted secret to its response form.
func MapSecretToResponse(secret *secretsDomain.DecryptedSecret) SecretResponse {
	return SecretResponse{
		ID:        secret.ID.String(),
		Path:      secret.Path,
		Key:       secret.Key,
		Value:     secret.Value,
		Comment:   secret.Comment,
		Version:   secret.Version,
		UpdatedAt: secret.UpdatedAt,
	}
}

// MapSecretsToListResponse converts decrypted secrets to a list response.
func MapSecretsToListResponse(secrets []*secretsDomain.DecryptedSecret) ListSecretsResponse {
	data := make([]SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		data = append(data, MapSecretToResponse(secret))
	}
	return ListSecretsResponse{Data: data}
}
