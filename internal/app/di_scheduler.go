package app

import (
	"fmt"

	schedulerRepository "github.com/allisson/envsecrets/internal/scheduler/repository"
	schedulerUseCase "github.com/allisson/envsecrets/internal/scheduler/usecase"
)

// RevocationJobRepository returns the revocation job repository.
func (c *Container) RevocationJobRepository() (schedulerUseCase.RevocationJobRepository, error) {
	err := c.lazy("revocationJobRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for revocation job repository: %w", err)
		}
		c.revocationJobRepo = schedulerRepository.NewRevocationJobRepository(db, c.config.DBDriver)
		return nil
	})
	return c.revocationJobRepo, err
}

// Scheduler returns the revocation job scheduler.
func (c *Container) Scheduler() (*schedulerUseCase.Scheduler, error) {
	err := c.lazy("scheduler", func() error {
		repo, err := c.RevocationJobRepository()
		if err != nil {
			return err
		}
		c.scheduler = schedulerUseCase.NewScheduler(repo)
		return nil
	})
	return c.scheduler, err
}

// Worker returns the revocation worker.
func (c *Container) Worker() (*schedulerUseCase.Worker, error) {
	err := c.lazy("worker", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return err
		}
		repo, err := c.RevocationJobRepository()
		if err != nil {
			return err
		}
		leases, err := c.LeaseUseCase()
		if err != nil {
			return err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}
		c.worker = schedulerUseCase.NewWorker(schedulerUseCase.WorkerConfig{
			Interval:          c.config.WorkerInterval,
			BatchSize:         c.config.WorkerBatchSize,
			Concurrency:       c.config.WorkerConcurrency,
			MaxRetries:        c.config.WorkerMaxRetries,
			RetryInterval:     c.config.WorkerRetryInterval,
			VisibilityTimeout: c.config.WorkerVisibilityTimeout,
			SweepSchedule:     c.config.LeaseSweepSchedule,
		}, txManager, repo, leases, businessMetrics, c.Logger())
		return nil
	})
	return c.worker, err
}
