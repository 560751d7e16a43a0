package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoRepository "github.com/allisson/envsecrets/internal/crypto/repository"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	_ = c.lazy("kmsService", func() error {
		c.kmsService = cryptoService.NewKMSService()
		return nil
	})
	return c.kmsService
}

// ServerKeyPair returns the server keypair derived from SERVER_SECRET.
func (c *Container) ServerKeyPair() (*cryptoDomain.KeyPair, error) {
	err := c.lazy("serverKeyPair", func() (err error) {
		c.serverKeyPair, err = cryptoService.LoadServerKeyPair(
			context.Background(),
			c.config.ServerSecret,
			c.config.KMSKeyURI,
			c.KMSService(),
			c.Logger(),
		)
		if err != nil {
			return fmt.Errorf("failed to load server keypair: %w", err)
		}
		return nil
	})
	return c.serverKeyPair, err
}

// EnvironmentKeyRepository returns the environment key repository.
func (c *Container) EnvironmentKeyRepository() (cryptoUseCase.EnvironmentKeyRepository, error) {
	err := c.lazy("environmentKeyRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for environment key repository: %w", err)
		}
		c.environmentKeyRepo = cryptoRepository.NewEnvironmentKeyRepository(db, c.config.DBDriver)
		return nil
	})
	return c.environmentKeyRepo, err
}

// EnvironmentKeyUseCase returns the environment key use case.
func (c *Container) EnvironmentKeyUseCase() (cryptoUseCase.EnvironmentKeyUseCase, error) {
	err := c.lazy("environmentKeyUseCase", func() error {
		repo, err := c.EnvironmentKeyRepository()
		if err != nil {
			return err
		}
		serverKeyPair, err := c.ServerKeyPair()
		if err != nil {
			return err
		}
		c.environmentKeyUC = cryptoUseCase.NewEnvironmentKeyUseCase(repo, serverKeyPair)
		return nil
	})
	return c.environmentKeyUC, err
}
