// Package http exposes the server-side secret read endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/envsecrets/internal/auth/http"
	"github.com/allisson/envsecrets/internal/httputil"
	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
	"github.com/allisson/envsecrets/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/envsecrets/internal/secrets/usecase"
	customValidation "github.com/allisson/envsecrets/internal/validation"
)

// SecretHandler handles secret reads.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler.
func NewSecretHandler(secretUseCase secretsUseCase.SecretUseCase, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{secretUseCase: secretUseCase, logger: logger}
}

// ReadHandler decrypts secrets of an environment with references resolved.
// With a key it returns that secret, otherwise every secret at the path.
// GET /v1/environments/:environment_id/secrets?path=&key=&require_resolved=
func (h *SecretHandler) ReadHandler(c *gin.Context) {
	var query dto.ReadSecretsQuery
	if err := c.ShouldBindUri(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := query.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	opts := secretsDomain.ResolveOptions{
		Principal:                 principal,
		RequireResolvedReferences: query.RequireResolved,
	}
	environmentID := uuid.MustParse(query.EnvironmentID)

	if query.Key != "" {
		secret, err := h.secretUseCase.Get(c.Request.Context(), environmentID, query.Path, query.Key, opts)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
		return
	}

	secrets, err := h.secretUseCase.List(c.Request.Context(), environmentID, query.Path, opts)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapSecretsToListResponse(secrets))
}
