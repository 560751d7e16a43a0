// Package app provides the dependency injection container that assembles
// application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authService "github.com/allisson/envsecrets/internal/auth/service"
	authUseCase "github.com/allisson/envsecrets/internal/auth/usecase"
	"github.com/allisson/envsecrets/internal/config"
	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	cryptoService "github.com/allisson/envsecrets/internal/crypto/service"
	cryptoUseCase "github.com/allisson/envsecrets/internal/crypto/usecase"
	"github.com/allisson/envsecrets/internal/database"
	dynamicService "github.com/allisson/envsecrets/internal/dynamicsecrets/service"
	dynamicUseCase "github.com/allisson/envsecrets/internal/dynamicsecrets/usecase"
	"github.com/allisson/envsecrets/internal/http"
	"github.com/allisson/envsecrets/internal/metrics"
	schedulerUseCase "github.com/allisson/envsecrets/internal/scheduler/usecase"
	secretsUseCase "github.com/allisson/envsecrets/internal/secrets/usecase"
)

// Container holds application dependencies. Components are created on first
// access and initialization errors are memoized.
type Container struct {
	config *config.Config

	// ctx is cancelled on Shutdown and stops background janitors.
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Crypto
	kmsService        cryptoService.KMSService
	serverKeyPair     *cryptoDomain.KeyPair
	environmentKeyRepo cryptoUseCase.EnvironmentKeyRepository
	environmentKeyUC   cryptoUseCase.EnvironmentKeyUseCase

	// Auth
	secretService      authService.SecretService
	tokenService       authService.TokenService
	serviceAccountRepo authUseCase.ServiceAccountRepository
	tokenRepo          authUseCase.TokenRepository
	accessRepo         authUseCase.EnvironmentAccessRepository
	serviceAccountUC   authUseCase.ServiceAccountUseCase
	tokenUC            authUseCase.TokenUseCase
	accessUC           authUseCase.AccessUseCase

	// Secrets
	appRepo         secretsUseCase.AppRepository
	environmentRepo secretsUseCase.EnvironmentRepository
	secretRepo      secretsUseCase.SecretRepository
	resolver        secretsUseCase.ReferenceResolver
	secretUC        secretsUseCase.SecretUseCase

	// Dynamic secrets
	providerRegistry        *dynamicService.ProviderRegistry
	dynamicSecretRepo       dynamicUseCase.DynamicSecretRepository
	leaseRepo               dynamicUseCase.LeaseRepository
	leaseEventRepo          dynamicUseCase.LeaseEventRepository
	providerCredentialsRepo dynamicUseCase.ProviderCredentialsRepository
	dynamicSecretUC         dynamicUseCase.DynamicSecretUseCase
	leaseUC                 dynamicUseCase.LeaseUseCase

	// Scheduler
	revocationJobRepo schedulerUseCase.RevocationJobRepository
	scheduler         *schedulerUseCase.Scheduler
	worker            *schedulerUseCase.Worker

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu         sync.Mutex
	inits      map[string]*sync.Once
	initErrors map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		inits:      make(map[string]*sync.Once),
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// lazy runs init once per name and returns its memoized error.
func (c *Container) lazy(name string, init func() error) error {
	c.mu.Lock()
	once, ok := c.inits[name]
	if !ok {
		once = &sync.Once{}
		c.inits[name] = once
	}
	c.mu.Unlock()

	once.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	_ = c.lazy("logger", func() error {
		c.logger = c.initLogger()
		return nil
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	err := c.lazy("db", func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	return c.db, err
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.lazy("txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	return c.txManager, err
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.lazy("metricsProvider", func() (err error) {
		if !c.config.MetricsEnabled {
			return nil
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return nil
	})
	return c.metricsProvider, err
}

// BusinessMetrics returns the business metrics recorder, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.lazy("businessMetrics", func() (err error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		return nil
	})
	return c.businessMetrics, err
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	err := c.lazy("httpServer", func() (err error) {
		c.httpServer, err = c.initHTTPServer()
		return err
	})
	return c.httpServer, err
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.lazy("metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	return c.metricsServer, err
}

// Shutdown releases every initialized resource.
func (c *Container) Shutdown(ctx context.Context) error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.serverKeyPair != nil {
		c.serverKeyPair.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}
	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}
	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}
	leaseHandler, err := c.LeaseHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get lease handler for http server: %w", err)
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.ctx, c.config, http.Handlers{
		Token:  tokenHandler,
		Secret: secretHandler,
		Lease:  leaseHandler,
	}, tokenUseCase, c.TokenService(), metricsProvider)

	return server, nil
}
