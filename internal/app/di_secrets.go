package app

import (
	"fmt"

	secretsHTTP "github.com/allisson/envsecrets/internal/secrets/http"
	secretsRepository "github.com/allisson/envsecrets/internal/secrets/repository"
	secretsUseCase "github.com/allisson/envsecrets/internal/secrets/usecase"
)

// AppRepository returns the app repository.
func (c *Container) AppRepository() (secretsUseCase.AppRepository, error) {
	err := c.lazy("appRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for app repository: %w", err)
		}
		c.appRepo = secretsRepository.NewAppRepository(db, c.config.DBDriver)
		return nil
	})
	return c.appRepo, err
}

// EnvironmentRepository returns the environment repository.
func (c *Container) EnvironmentRepository() (secretsUseCase.EnvironmentRepository, error) {
	err := c.lazy("environmentRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for environment repository: %w", err)
		}
		c.environmentRepo = secretsRepository.NewEnvironmentRepository(db, c.config.DBDriver)
		return nil
	})
	return c.environmentRepo, err
}

// SecretRepository returns the secret repository.
func (c *Container) SecretRepository() (secretsUseCase.SecretRepository, error) {
	err := c.lazy("secretRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for secret repository: %w", err)
		}
		c.secretRepo = secretsRepository.NewSecretRepository(db, c.config.DBDriver)
		return nil
	})
	return c.secretRepo, err
}

// ReferenceResolver returns the secret reference resolver.
func (c *Container) ReferenceResolver() (secretsUseCase.ReferenceResolver, error) {
	err := c.lazy("referenceResolver", func() error {
		secretRepo, err := c.SecretRepository()
		if err != nil {
			return err
		}
		appRepo, err := c.AppRepository()
		if err != nil {
			return err
		}
		envRepo, err := c.EnvironmentRepository()
		if err != nil {
			return err
		}
		envKeys, err := c.EnvironmentKeyUseCase()
		if err != nil {
			return err
		}
		access, err := c.AccessUseCase()
		if err != nil {
			return err
		}
		c.resolver = secretsUseCase.NewReferenceResolver(secretRepo, appRepo, envRepo, envKeys, access, c.Logger())
		return nil
	})
	return c.resolver, err
}

// SecretUseCase returns the secret use case, wrapped with business metrics.
func (c *Container) SecretUseCase() (secretsUseCase.SecretUseCase, error) {
	err := c.lazy("secretUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return err
		}
		secretRepo, err := c.SecretRepository()
		if err != nil {
			return err
		}
		envKeys, err := c.EnvironmentKeyUseCase()
		if err != nil {
			return err
		}
		access, err := c.AccessUseCase()
		if err != nil {
			return err
		}
		resolver, err := c.ReferenceResolver()
		if err != nil {
			return err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}
		useCase := secretsUseCase.NewSecretUseCase(txManager, secretRepo, envKeys, access, resolver)
		c.secretUC = secretsUseCase.NewSecretUseCaseWithMetrics(useCase, businessMetrics)
		return nil
	})
	return c.secretUC, err
}

// SecretHandler returns the secret read handler.
func (c *Container) SecretHandler() (*secretsHTTP.SecretHandler, error) {
	useCase, err := c.SecretUseCase()
	if err != nil {
		return nil, err
	}
	return secretsHTTP.NewSecretHandler(useCase, c.Logger()), nil
}
