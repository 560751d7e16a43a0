package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	"github.com/allisson/envsecrets/internal/auth/http/dto"
	authMocks "github.com/allisson/envsecrets/internal/auth/usecase/mocks"
)

func postToken(handler *TokenHandler, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/v1/token", handler.IssueTokenHandler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/token", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	saID := uuid.New()

	t.Run("issues token", func(t *testing.T) {
		tokenUseCase := &authMocks.MockTokenUseCase{}
		expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
		tokenUseCase.On("Issue", mock.Anything, &authDomain.IssueTokenInput{
			ServiceAccountID: saID,
			Secret:           "es_sa_secret",
		}).Return(&authDomain.IssueTokenOutput{PlainToken: "es_tk_plain", ExpiresAt: expiresAt}, nil)

		w := postToken(NewTokenHandler(tokenUseCase, discardLogger()),
			`{"service_account_id":"`+saID.String()+`","secret":"es_sa_secret"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp dto.IssueTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "es_tk_plain", resp.Token)
		assert.True(t, expiresAt.Equal(resp.ExpiresAt))
		tokenUseCase.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postToken(NewTokenHandler(&authMocks.MockTokenUseCase{}, discardLogger()), `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid service account id", func(t *testing.T) {
		w := postToken(NewTokenHandler(&authMocks.MockTokenUseCase{}, discardLogger()),
			`{"service_account_id":"nope","secret":"x"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("blank secret", func(t *testing.T) {
		w := postToken(NewTokenHandler(&authMocks.MockTokenUseCase{}, discardLogger()),
			`{"service_account_id":"`+saID.String()+`","secret":"   "}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		tokenUseCase := &authMocks.MockTokenUseCase{}
		tokenUseCase.On("Issue", mock.Anything, mock.Anything).Return(nil, authDomain.ErrInvalidCredentials)

		w := postToken(NewTokenHandler(tokenUseCase, discardLogger()),
			`{"service_account_id":"`+saID.String()+`","secret":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
