package app

import (
	"fmt"

	dynamicHTTP "github.com/allisson/envsecrets/internal/dynamicsecrets/http"
	dynamicRepository "github.com/allisson/envsecrets/internal/dynamicsecrets/repository"
	dynamicService "github.com/allisson/envsecrets/internal/dynamicsecrets/service"
	dynamicUseCase "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase"
)

// ProviderRegistry returns the registry of provider adapters.
func (c *Container) ProviderRegistry() (*dynamicService.ProviderRegistry, error) {
	err := c.lazy("providerRegistry", func() error {
		awsIAM, err := dynamicService.NewAWSIAMProviderAdapter(
			nil,
			c.config.AWSIAMRequestsPerSec,
			c.config.AWSIAMBurst,
			c.Logger(),
		)
		if err != nil {
			return fmt.Errorf("failed to create aws iam provider adapter: %w", err)
		}
		c.providerRegistry = dynamicService.NewProviderRegistry(awsIAM)
		return nil
	})
	return c.providerRegistry, err
}

// DynamicSecretRepository returns the dynamic secret repository.
func (c *Container) DynamicSecretRepository() (dynamicUseCase.DynamicSecretRepository, error) {
	err := c.lazy("dynamicSecretRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for dynamic secret repository: %w", err)
		}
		c.dynamicSecretRepo = dynamicRepository.NewDynamicSecretRepository(db, c.config.DBDriver)
		return nil
	})
	return c.dynamicSecretRepo, err
}

// LeaseRepository returns the lease repository.
func (c *Container) LeaseRepository() (dynamicUseCase.LeaseRepository, error) {
	err := c.lazy("leaseRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for lease repository: %w", err)
		}
		c.leaseRepo = dynamicRepository.NewLeaseRepository(db, c.config.DBDriver)
		return nil
	})
	return c.leaseRepo, err
}

// LeaseEventRepository returns the lease audit event repository.
func (c *Container) LeaseEventRepository() (dynamicUseCase.LeaseEventRepository, error) {
	err := c.lazy("leaseEventRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for lease event repository: %w", err)
		}
		c.leaseEventRepo = dynamicRepository.NewLeaseEventRepository(db, c.config.DBDriver)
		return nil
	})
	return c.leaseEventRepo, err
}

// ProviderCredentialsRepository returns the provider credentials repository.
func (c *Container) ProviderCredentialsRepository() (dynamicUseCase.ProviderCredentialsRepository, error) {
	err := c.lazy("providerCredentialsRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for provider credentials repository: %w", err)
		}
		c.providerCredentialsRepo = dynamicRepository.NewProviderCredentialsRepository(db, c.config.DBDriver)
		return nil
	})
	return c.providerCredentialsRepo, err
}

// DynamicSecretUseCase returns the dynamic secret definition use case.
func (c *Container) DynamicSecretUseCase() (dynamicUseCase.DynamicSecretUseCase, error) {
	err := c.lazy("dynamicSecretUseCase", func() error {
		serverKeyPair, err := c.ServerKeyPair()
		if err != nil {
			return err
		}
		registry, err := c.ProviderRegistry()
		if err != nil {
			return err
		}
		envKeys, err := c.EnvironmentKeyUseCase()
		if err != nil {
			return err
		}
		secretRepo, err := c.DynamicSecretRepository()
		if err != nil {
			return err
		}
		credsRepo, err := c.ProviderCredentialsRepository()
		if err != nil {
			return err
		}
		c.dynamicSecretUC = dynamicUseCase.NewDynamicSecretUseCase(serverKeyPair, registry, envKeys, secretRepo, credsRepo)
		return nil
	})
	return c.dynamicSecretUC, err
}

// LeaseUseCase returns the lease engine, wrapped with business metrics.
func (c *Container) LeaseUseCase() (dynamicUseCase.LeaseUseCase, error) {
	err := c.lazy("leaseUseCase", func() error {
		serverKeyPair, err := c.ServerKeyPair()
		if err != nil {
			return err
		}
		registry, err := c.ProviderRegistry()
		if err != nil {
			return err
		}
		envKeys, err := c.EnvironmentKeyUseCase()
		if err != nil {
			return err
		}
		txManager, err := c.TxManager()
		if err != nil {
			return err
		}
		secretRepo, err := c.DynamicSecretRepository()
		if err != nil {
			return err
		}
		leaseRepo, err := c.LeaseRepository()
		if err != nil {
			return err
		}
		eventRepo, err := c.LeaseEventRepository()
		if err != nil {
			return err
		}
		credsRepo, err := c.ProviderCredentialsRepository()
		if err != nil {
			return err
		}
		scheduler, err := c.Scheduler()
		if err != nil {
			return err
		}
		access, err := c.AccessUseCase()
		if err != nil {
			return err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}

		useCase := dynamicUseCase.NewLeaseUseCase(
			c.config.DeploymentMode,
			serverKeyPair,
			registry,
			envKeys,
			txManager,
			secretRepo,
			leaseRepo,
			eventRepo,
			credsRepo,
			scheduler,
			access,
			dynamicUseCase.NewConfigPlanChecker(c.config.PlanDynamicSecretsEnabled),
			c.Logger(),
		)
		c.leaseUC = dynamicUseCase.NewLeaseUseCaseWithMetrics(useCase, businessMetrics)
		return nil
	})
	return c.leaseUC, err
}

// LeaseHandler returns the lease HTTP handler.
func (c *Container) LeaseHandler() (*dynamicHTTP.LeaseHandler, error) {
	useCase, err := c.LeaseUseCase()
	if err != nil {
		return nil, err
	}
	return dynamicHTTP.NewLeaseHandler(useCase, c.Logger()), nil
}
