package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/envsecrets/internal/config"
	cryptoDomain "github.com/allisson/envsecrets/internal/crypto/domain"
	dynamicDomain "github.com/allisson/envsecrets/internal/dynamicsecrets/domain"
)

func invalidDBConfig() *config.Config {
	return &config.Config{
		LogLevel:             "info",
		DBDriver:             "invalid",
		DBConnectionString:   "invalid",
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		ServerSecret:         strings.Repeat("ab", 32),
		MetricsNamespace:     "envsecrets",
		WorkerInterval:       time.Second,
		WorkerBatchSize:      10,
		WorkerConcurrency:    2,
		WorkerMaxRetries:     3,
		WorkerRetryInterval:  time.Second,
	}
}

func TestNewContainer(t *testing.T) {
	cfg := invalidDBConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "debug"})

	logger := container.Logger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), -4))

	// Singleton
	assert.Same(t, logger, container.Logger())
}

func TestContainerLoggerDefaultLevel(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "bogus"})

	logger := container.Logger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), -4))
	assert.True(t, logger.Enabled(context.Background(), 0))
}

func TestContainerInitializationErrors(t *testing.T) {
	container := NewContainer(invalidDBConfig())

	_, err := container.DB()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")

	// The error is memoized.
	_, err2 := container.DB()
	assert.Equal(t, err, err2)
}

func TestContainerDependentComponentsPropagateDBErrors(t *testing.T) {
	container := NewContainer(invalidDBConfig())

	_, err := container.LeaseUseCase()
	assert.Error(t, err)

	_, err = container.SecretUseCase()
	assert.Error(t, err)

	_, err = container.Worker()
	assert.Error(t, err)

	_, err = container.HTTPServer()
	assert.Error(t, err)
}

func TestContainerServerKeyPair(t *testing.T) {
	t.Run("derives from hex secret", func(t *testing.T) {
		container := NewContainer(invalidDBConfig())

		keyPair, err := container.ServerKeyPair()
		require.NoError(t, err)
		require.NotNil(t, keyPair)

		again, err := container.ServerKeyPair()
		require.NoError(t, err)
		assert.Same(t, keyPair, again)
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := invalidDBConfig()
		cfg.ServerSecret = ""
		container := NewContainer(cfg)

		_, err := container.ServerKeyPair()
		assert.ErrorIs(t, err, cryptoDomain.ErrServerSecretNotSet)
	})
}

func TestContainerProviderRegistry(t *testing.T) {
	container := NewContainer(invalidDBConfig())

	registry, err := container.ProviderRegistry()
	require.NoError(t, err)

	_, err = registry.Get(dynamicDomain.ProviderAWSIAM)
	assert.NoError(t, err)
}

func TestContainerMetricsDisabled(t *testing.T) {
	container := NewContainer(invalidDBConfig())

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, server)
}

func TestContainerMetricsEnabled(t *testing.T) {
	cfg := invalidDBConfig()
	cfg.MetricsEnabled = true
	cfg.MetricsPort = 9090
	container := NewContainer(cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	server, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, server)

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.Nil(t, container.logger)
	assert.Nil(t, container.tokenService)

	container.Logger()
	container.TokenService()

	assert.NotNil(t, container.logger)
	assert.NotNil(t, container.tokenService)
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(invalidDBConfig())

	_, err := container.ServerKeyPair()
	require.NoError(t, err)

	assert.NoError(t, container.Shutdown(context.Background()))
	assert.ErrorIs(t, container.ctx.Err(), context.Canceled)
}
