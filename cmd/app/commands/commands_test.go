package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/envsecrets/internal/auth/domain"
	authMocks "github.com/allisson/envsecrets/internal/auth/usecase/mocks"
	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoMocks "github.com/allisson/envsecrets/internal/crypto/usecase/mocks"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	dynamicMocks "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase/mocks"
	apperrors "github.com/allisson/envsecrets/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCreateEnvironmentKeys(t *testing.T) {
	ctx := context.Background()
	envID := uuid.New()

	t.Run("text", func(t *testing.T) {
		mockUseCase := &cryptoMocks.MockEnvironmentKeyUseCase{}
		mockUseCase.On("Create", ctx, envID).
			Return(&cryptoDomain.EnvironmentKeys{EnvironmentID: envID, CreatedAt: time.Now()}, nil)

		var out bytes.Buffer
		err := RunCreateEnvironmentKeys(ctx, mockUseCase, discardLogger(), &out, envID.String(), "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), envID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &cryptoMocks.MockEnvironmentKeyUseCase{}
		mockUseCase.On("Create", ctx, envID).
			Return(&cryptoDomain.EnvironmentKeys{EnvironmentID: envID, CreatedAt: time.Now()}, nil)

		var out bytes.Buffer
		err := RunCreateEnvironmentKeys(ctx, mockUseCase, discardLogger(), &out, envID.String(), "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, envID.String(), result["environment_id"])
	})

	t.Run("already-exists", func(t *testing.T) {
		mockUseCase := &cryptoMocks.MockEnvironmentKeyUseCase{}
		mockUseCase.On("Create", ctx, envID).Return(nil, cryptoDomain.ErrEnvironmentKeysAlreadyExist)

		err := RunCreateEnvironmentKeys(ctx, mockUseCase, discardLogger(), &bytes.Buffer{}, envID.String(), "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("invalid-environment-id", func(t *testing.T) {
		err := RunCreateEnvironmentKeys(ctx, nil, discardLogger(), &bytes.Buffer{}, "nope", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--environment-id")
	})
}

func TestRunCreateServiceAccount(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	saID := uuid.New()
	output := &authDomain.CreateServiceAccountOutput{
		ServiceAccount: &authDomain.ServiceAccount{ID: saID, OrganizationID: orgID, Name: "ci"},
		PlainSecret:    "plain-secret",
	}

	t.Run("text", func(t *testing.T) {
		mockUseCase := &authMocks.MockServiceAccountUseCase{}
		mockUseCase.On("Create", ctx, orgID, "ci").Return(output, nil)

		var out bytes.Buffer
		err := RunCreateServiceAccount(ctx, mockUseCase, discardLogger(), &out, orgID.String(), "ci", "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), saID.String())
		assert.Contains(t, out.String(), "plain-secret")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &authMocks.MockServiceAccountUseCase{}
		mockUseCase.On("Create", ctx, orgID, "ci").Return(output, nil)

		var out bytes.Buffer
		err := RunCreateServiceAccount(ctx, mockUseCase, discardLogger(), &out, orgID.String(), "ci", "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, saID.String(), result["service_account_id"])
		assert.Equal(t, "plain-secret", result["secret"])
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &authMocks.MockServiceAccountUseCase{}
		mockUseCase.On("Create", ctx, orgID, "").Return(nil, apperrors.ErrInvalidInput)

		err := RunCreateServiceAccount(ctx, mockUseCase, discardLogger(), &bytes.Buffer{}, orgID.String(), "", "text")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRunGrantEnvironmentAccess(t *testing.T) {
	ctx := context.Background()
	principalID := uuid.New()
	envID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &authMocks.MockAccessUseCase{}
		mockUseCase.On("Grant", ctx, authDomain.PrincipalServiceAccount, principalID, envID).Return(nil)

		var out bytes.Buffer
		err := RunGrantEnvironmentAccess(
			ctx, mockUseCase, discardLogger(), &out,
			"service_account", principalID.String(), envID.String(),
		)
		require.NoError(t, err)
		assert.Contains(t, out.String(), envID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-principal-type", func(t *testing.T) {
		err := RunGrantEnvironmentAccess(
			ctx, nil, discardLogger(), &bytes.Buffer{},
			"robot", principalID.String(), envID.String(),
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--principal-type")
	})

	t.Run("invalid-principal-id", func(t *testing.T) {
		err := RunGrantEnvironmentAccess(
			ctx, nil, discardLogger(), &bytes.Buffer{},
			"user", "x", envID.String(),
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--principal-id")
	})
}

func TestRunRevokeLease(t *testing.T) {
	ctx := context.Background()
	leaseID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockLeaseUseCase{}
		mockUseCase.On("Revoke", ctx, mock.MatchedBy(func(input *dynamicDomain.RevokeLeaseInput) bool {
			return input.LeaseID == leaseID && input.Manual && input.Request.Principal == nil &&
				input.Request.Source == dynamicDomain.EventSourceOperator
		})).Return(nil)

		var out bytes.Buffer
		err := RunRevokeLease(ctx, mockUseCase, discardLogger(), &out, leaseID.String())
		require.NoError(t, err)
		assert.Contains(t, out.String(), leaseID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("provider-failure", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockLeaseUseCase{}
		mockUseCase.On("Revoke", ctx, mock.Anything).Return(apperrors.ErrBadGateway)

		err := RunRevokeLease(ctx, mockUseCase, discardLogger(), &bytes.Buffer{}, leaseID.String())
		assert.ErrorIs(t, err, apperrors.ErrBadGateway)
	})

	t.Run("invalid-lease-id", func(t *testing.T) {
		err := RunRevokeLease(ctx, nil, discardLogger(), &bytes.Buffer{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--lease-id")
	})
}

func TestRunCreateDynamicSecret(t *testing.T) {
	ctx := context.Background()
	envID := uuid.New()
	authRef := uuid.New()
	secretID := uuid.New()

	flags := DynamicSecretFlags{
		EnvironmentID:     envID.String(),
		Name:              "deploy",
		Path:              "/aws",
		Provider:          "aws-iam",
		Config:            `{"region":"us-east-1","method":"access_key"}`,
		KeyMap:            `[{"id":"access_key_id","key_name":"AWS_ACCESS_KEY_ID"}]`,
		DefaultTTL:        time.Hour,
		MaxTTL:            24 * time.Hour,
		AuthenticationRef: authRef.String(),
	}

	t.Run("success", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockDynamicSecretUseCase{}
		mockUseCase.On("Create", ctx, mock.MatchedBy(func(input *dynamicDomain.CreateDynamicSecretInput) bool {
			return input.EnvironmentID == envID &&
				input.AuthenticationRef == authRef &&
				input.Provider == dynamicDomain.ProviderAWSIAM &&
				len(input.KeyMap) == 1 &&
				input.KeyMap[0].KeyName == "AWS_ACCESS_KEY_ID" &&
				input.DefaultTTL == time.Hour
		})).Return(&dynamicDomain.DynamicSecret{ID: secretID, Provider: dynamicDomain.ProviderAWSIAM}, nil)

		var out bytes.Buffer
		err := RunCreateDynamicSecret(ctx, mockUseCase, discardLogger(), &out, flags, "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, secretID.String(), result["dynamic_secret_id"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-config", func(t *testing.T) {
		bad := flags
		bad.Config = "{"
		err := RunCreateDynamicSecret(ctx, nil, discardLogger(), &bytes.Buffer{}, bad, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--config")
	})

	t.Run("invalid-key-map", func(t *testing.T) {
		bad := flags
		bad.KeyMap = "nope"
		err := RunCreateDynamicSecret(ctx, nil, discardLogger(), &bytes.Buffer{}, bad, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--key-map")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockDynamicSecretUseCase{}
		mockUseCase.On("Create", ctx, mock.Anything).Return(nil, apperrors.ErrInvalidInput)

		err := RunCreateDynamicSecret(ctx, mockUseCase, discardLogger(), &bytes.Buffer{}, flags, "text")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRunCreateProviderCredentials(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	credsID := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockDynamicSecretUseCase{}
		mockUseCase.On("CreateProviderCredentials", ctx, &dynamicDomain.CreateProviderCredentialsInput{
			OrganizationID: orgID,
			Name:           "prod",
			Provider:       dynamicDomain.ProviderAWSIAM,
			Credentials:    map[string]string{"access_key_id": "AKIA", "secret_access_key": "s"},
		}).Return(&dynamicDomain.ProviderCredentials{ID: credsID}, nil)

		var out bytes.Buffer
		err := RunCreateProviderCredentials(
			ctx, mockUseCase, discardLogger(), &out,
			orgID.String(), "prod", "aws-iam",
			`{"access_key_id":"AKIA","secret_access_key":"s"}`, "text",
		)
		require.NoError(t, err)
		assert.Contains(t, out.String(), credsID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-credentials-json", func(t *testing.T) {
		err := RunCreateProviderCredentials(
			ctx, nil, discardLogger(), &bytes.Buffer{},
			orgID.String(), "prod", "aws-iam", "[]", "text",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--credentials")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &dynamicMocks.MockDynamicSecretUseCase{}
		mockUseCase.On("CreateProviderCredentials", ctx, mock.Anything).Return(nil, errors.New("boom"))

		err := RunCreateProviderCredentials(
			ctx, mockUseCase, discardLogger(), &bytes.Buffer{},
			orgID.String(), "prod", "aws-iam", `{}`, "text",
		)
		require.Error(t, err)
	})
}

func TestRunCleanExpiredTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("dry-run-text", func(t *testing.T) {
		mockUseCase := &authMocks.MockTokenUseCase{}
		mockUseCase.On("CleanupExpired", ctx, 7, true).Return(int64(5), nil)

		var out bytes.Buffer
		err := RunCleanExpiredTokens(ctx, mockUseCase, discardLogger(), &out, 7, true, "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "would delete 5 expired token(s) older than 7 day(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &authMocks.MockTokenUseCase{}
		mockUseCase.On("CleanupExpired", ctx, 30, false).Return(int64(2), nil)

		var out bytes.Buffer
		err := RunCleanExpiredTokens(ctx, mockUseCase, discardLogger(), &out, 30, false, "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, float64(2), result["count"])
		assert.Equal(t, false, result["dry_run"])
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &authMocks.MockTokenUseCase{}
		mockUseCase.On("CleanupExpired", ctx, -1, false).Return(int64(0), authDomain.ErrInvalidCleanupDays)

		err := RunCleanExpiredTokens(ctx, mockUseCase, discardLogger(), &bytes.Buffer{}, -1, false, "text")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
