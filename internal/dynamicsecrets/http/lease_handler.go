// Package http exposes the dynamic secret lease endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/envsecrets/internal/auth/http"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	"github.com/allisson/envsecrets/internal/dynamicsecrets/http/dto"
	dynamicUseCase "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase"
	"github.com/allisson/envsecrets/internal/httputil"
	customValidation "github.com/allisson/envsecrets/internal/validation"
)

// LeaseHandler handles lease lifecycle requests.
type LeaseHandler struct {
	leaseUseCase dynamicUseCase.LeaseUseCase
	logger       *slog.Logger
}

// NewLeaseHandler creates a new lease handler.
func NewLeaseHandler(leaseUseCase dynamicUseCase.LeaseUseCase, logger *slog.Logger) *LeaseHandler {
	return &LeaseHandler{leaseUseCase: leaseUseCase, logger: logger}
}

// CreateHandler provisions a lease and returns its credentials once.
// POST /v1/dynamic-secrets/:id/leases
func (h *LeaseHandler) CreateHandler(c *gin.Context) {
	dynamicSecretID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	creds, err := h.leaseUseCase.Create(c.Request.Context(), &dynamicDomain.CreateLeaseInput{
		DynamicSecretID: dynamicSecretID,
		TTL:             req.TTL(),
		Name:            req.Name,
		Request:         requestInfo(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapLeaseCredentialsToResponse(creds))
}

// ListHandler pages through the leases of a dynamic secret.
// GET /v1/dynamic-secrets/:id/leases?offset=&limit=
func (h *LeaseHandler) ListHandler(c *gin.Context) {
	dynamicSecretID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	leases, err := h.leaseUseCase.ListBySecret(c.Request.Context(), dynamicSecretID, offset, limit, principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLeasesToListResponse(leases))
}

// GetHandler returns lease metadata.
// GET /v1/leases/:id
func (h *LeaseHandler) GetHandler(c *gin.Context) {
	leaseID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	lease, err := h.leaseUseCase.Get(c.Request.Context(), leaseID, principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLeaseToResponse(lease))
}

// CredentialsHandler returns the decrypted credentials of a live lease.
// GET /v1/leases/:id/credentials
func (h *LeaseHandler) CredentialsHandler(c *gin.Context) {
	leaseID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	creds, err := h.leaseUseCase.GetCredentials(c.Request.Context(), leaseID, principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLeaseCredentialsToResponse(creds))
}

// RenewHandler extends a live lease.
// PUT /v1/leases/:id/renew
func (h *LeaseHandler) RenewHandler(c *gin.Context) {
	leaseID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.RenewLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	lease, err := h.leaseUseCase.Renew(c.Request.Context(), &dynamicDomain.RenewLeaseInput{
		LeaseID: leaseID,
		TTL:     req.TTLDuration(),
		Request: requestInfo(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLeaseToResponse(lease))
}

// RevokeHandler revokes a lease. Revoking a terminal lease also returns 204.
// DELETE /v1/leases/:id
func (h *LeaseHandler) RevokeHandler(c *gin.Context) {
	leaseID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	err := h.leaseUseCase.Revoke(c.Request.Context(), &dynamicDomain.RevokeLeaseInput{
		LeaseID: leaseID,
		Manual:  true,
		Request: requestInfo(c),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LeaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid %s parameter: must be a UUID", name), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func requestInfo(c *gin.Context) dynamicDomain.RequestInfo {
	principal, _ := authHTTP.GetPrincipal(c.Request.Context())
	return dynamicDomain.RequestInfo{
		Principal: principal,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
