package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/envsecrets/internal/database"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
	apperrors "github.com/allisson/envsecrets/internal/errors"
	"github.com/allisson/envsecrets/internal/metrics"
	schedulerDomain "github.com/allisson/envsecrets/internal/scheduler/domain"
)

// WorkerConfig holds worker configuration.
type WorkerConfig struct {
	Interval          time.Duration
	BatchSize         int
	Concurrency       int
	MaxRetries        int
	RetryInterval     time.Duration
	VisibilityTimeout time.Duration
	SweepSchedule     string
}

// Worker claims due revocation jobs on a cron schedule and expires their
// leases. A second schedule runs the expired lease sweeper.
type Worker struct {
	config    WorkerConfig
	txManager database.TxManager
	jobRepo   RevocationJobRepository
	leases    LeaseRevoker
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewWorker creates a new Worker.
func NewWorker(
	config WorkerConfig,
	txManager database.TxManager,
	jobRepo RevocationJobRepository,
	leases LeaseRevoker,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *Worker {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Worker{
		config:    config,
		txManager: txManager,
		jobRepo:   jobRepo,
		leases:    leases,
		metrics:   businessMetrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the schedules until ctx is cancelled, then waits for in-flight
// work before returning.
func (w *Worker) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{logger: w.logger}),
		cron.WithChain(cron.Recover(cronLogger{logger: w.logger}), cron.SkipIfStillRunning(cronLogger{logger: w.logger})),
	)

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", w.config.Interval), func() {
		if _, err := w.ProcessDue(ctx); err != nil {
			w.logger.Error("failed to process revocation jobs", slog.Any("error", err))
		}
	}); err != nil {
		return apperrors.Wrap(err, "invalid worker interval")
	}

	if w.config.SweepSchedule != "" {
		if _, err := c.AddFunc(w.config.SweepSchedule, func() { w.Sweep(ctx) }); err != nil {
			return apperrors.Wrap(err, "invalid lease sweep schedule")
		}
	}

	w.logger.Info("starting revocation worker",
		slog.Duration("interval", w.config.Interval),
		slog.Int("batch_size", w.config.BatchSize),
		slog.Int("concurrency", w.config.Concurrency),
		slog.String("sweep_schedule", w.config.SweepSchedule),
	)
	c.Start()

	<-ctx.Done()
	w.logger.Info("stopping revocation worker")
	<-c.Stop().Done()
	return nil
}

// ProcessDue claims one batch of due jobs and processes them concurrently.
// It returns the number of jobs claimed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	now := w.now()

	var jobs []*schedulerDomain.RevocationJob
	err := w.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		jobs, err = w.jobRepo.ClaimDue(txCtx, now, now.Add(-w.config.VisibilityTimeout), w.config.BatchSize)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	w.logger.Info("processing revocation jobs", slog.Int("count", len(jobs)))

	var g errgroup.Group
	g.SetLimit(w.config.Concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			return w.process(ctx, job)
		})
	}
	return len(jobs), g.Wait()
}

func (w *Worker) process(ctx context.Context, job *schedulerDomain.RevocationJob) error {
	err := w.leases.Revoke(ctx, &dynamicDomain.RevokeLeaseInput{LeaseID: job.LeaseID})
	switch {
	case err == nil:
		job.Complete(w.now())
		w.metrics.RecordOperation(ctx, "scheduler", "revocation_job", "success")
	case apperrors.Is(err, apperrors.ErrNotFound):
		w.logger.Warn("revocation job references a missing lease",
			slog.String("job_id", job.ID.String()),
			slog.String("lease_id", job.LeaseID.String()),
		)
		job.Complete(w.now())
		w.metrics.RecordOperation(ctx, "scheduler", "revocation_job", "success")
	default:
		job.Fail(err, w.now(), w.config.MaxRetries, w.config.RetryInterval)
		w.logger.Error("revocation job failed",
			slog.String("job_id", job.ID.String()),
			slog.String("lease_id", job.LeaseID.String()),
			slog.Int("attempts", job.Attempts),
			slog.String("status", string(job.Status)),
			slog.Any("error", err),
		)
		w.metrics.RecordOperation(ctx, "scheduler", "revocation_job", "error")
	}

	return w.jobRepo.Update(context.WithoutCancel(ctx), job)
}

// Sweep revokes live leases past their expiry that no job handled.
func (w *Worker) Sweep(ctx context.Context) {
	count, err := w.leases.SweepExpired(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.Error("lease sweep finished with errors", slog.Int("revoked", count), slog.Any("error", err))
		return
	}
	if count > 0 {
		w.logger.Info("lease sweep finished", slog.Int("revoked", count))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
