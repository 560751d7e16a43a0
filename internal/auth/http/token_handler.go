package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/auth/http/dto"
	authUseCase "github.com/allisson/envsecrets/internal/auth/usecase"
	"github.com/allisson/envsecrets/internal/httputil"
	customValidation "github.com/allisson/envsecrets/internal/validation"
)

// TokenHandler handles token issuance.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokenUseCase: tokenUseCase, logger: logger}
}

// IssueTokenHandler exchanges service account credentials for a bearer token.
// POST /v1/token
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), &authDomain.IssueTokenInput{
		ServiceAccountID: uuid.MustParse(req.ServiceAccountID),
		Secret:           req.Secret,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.IssueTokenResponse{
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	})
}
