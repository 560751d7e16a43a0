package app

import (
	"fmt"

	authHTTP "github.com/allisson/envsecrets/internal/auth/http"
	authRepository "github.com/allisson/envsecrets/internal/auth/repository"
	authService "github.com/allisson/envsecrets/internal/auth/service"
	authUseCase "github.com/allisson/envsecrets/internal/auth/usecase"
)

// SecretService returns the service account secret hasher.
func (c *Container) SecretService() authService.SecretService {
	_ = c.lazy("secretService", func() error {
		c.secretService = authService.NewSecretService()
		return nil
	})
	return c.secretService
}

// TokenService returns the bearer token service.
func (c *Container) TokenService() authService.TokenService {
	_ = c.lazy("tokenService", func() error {
		c.tokenService = authService.NewTokenService()
		return nil
	})
	return c.tokenService
}

// ServiceAccountRepository returns the service account repository.
func (c *Container) ServiceAccountRepository() (authUseCase.ServiceAccountRepository, error) {
	err := c.lazy("serviceAccountRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for service account repository: %w", err)
		}
		c.serviceAccountRepo = authRepository.NewServiceAccountRepository(db, c.config.DBDriver)
		return nil
	})
	return c.serviceAccountRepo, err
}

// TokenRepository returns the token repository.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	err := c.lazy("tokenRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for token repository: %w", err)
		}
		c.tokenRepo = authRepository.NewTokenRepository(db, c.config.DBDriver)
		return nil
	})
	return c.tokenRepo, err
}

// EnvironmentAccessRepository returns the environment grant repository.
func (c *Container) EnvironmentAccessRepository() (authUseCase.EnvironmentAccessRepository, error) {
	err := c.lazy("environmentAccessRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for environment access repository: %w", err)
		}
		c.accessRepo = authRepository.NewEnvironmentAccessRepository(db, c.config.DBDriver)
		return nil
	})
	return c.accessRepo, err
}

// ServiceAccountUseCase returns the service account use case.
func (c *Container) ServiceAccountUseCase() (authUseCase.ServiceAccountUseCase, error) {
	err := c.lazy("serviceAccountUseCase", func() error {
		repo, err := c.ServiceAccountRepository()
		if err != nil {
			return err
		}
		c.serviceAccountUC = authUseCase.NewServiceAccountUseCase(repo, c.SecretService())
		return nil
	})
	return c.serviceAccountUC, err
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	err := c.lazy("tokenUseCase", func() error {
		serviceAccountRepo, err := c.ServiceAccountRepository()
		if err != nil {
			return err
		}
		tokenRepo, err := c.TokenRepository()
		if err != nil {
			return err
		}
		c.tokenUC = authUseCase.NewTokenUseCase(
			c.config.AuthTokenExpiration,
			serviceAccountRepo,
			tokenRepo,
			c.SecretService(),
			c.TokenService(),
		)
		return nil
	})
	return c.tokenUC, err
}

// AccessUseCase returns the environment access use case.
func (c *Container) AccessUseCase() (authUseCase.AccessUseCase, error) {
	err := c.lazy("accessUseCase", func() error {
		repo, err := c.EnvironmentAccessRepository()
		if err != nil {
			return err
		}
		c.accessUC = authUseCase.NewAccessUseCase(repo)
		return nil
	})
	return c.accessUC, err
}

// TokenHandler returns the token issue handler.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, err
	}
	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
}
