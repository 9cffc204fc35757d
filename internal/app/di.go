// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/allisson/actiongate/internal/action"
	"github.com/allisson/actiongate/internal/action/handlers"
	"github.com/allisson/actiongate/internal/config"
	credentialRepository "github.com/allisson/actiongate/internal/credential/repository"
	credentialService "github.com/allisson/actiongate/internal/credential/service"
	credentialUsecase "github.com/allisson/actiongate/internal/credential/usecase"
	"github.com/allisson/actiongate/internal/database"
	"github.com/allisson/actiongate/internal/dispatch"
	dispatchhttp "github.com/allisson/actiongate/internal/dispatch/http"
	"github.com/allisson/actiongate/internal/http"
	"github.com/allisson/actiongate/internal/metrics"
	permissionRepository "github.com/allisson/actiongate/internal/permission/repository"
	permissionUsecase "github.com/allisson/actiongate/internal/permission/usecase"
)

// Version is the service version reported by the system.info action.
const Version = "1.0.0"

// Container holds all application dependencies and provides methods to access
// them. Components are created lazily on first access.
type Container struct {
	config    *config.Config
	startedAt time.Time

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Repositories
	credentialRepo credentialUsecase.CredentialRepository
	overrideRepo   permissionUsecase.OverrideRepository

	// Services and use cases
	secretService      credentialService.SecretService
	credentialUseCase  credentialUsecase.CredentialUseCase
	permissionResolver permissionUsecase.Resolver

	// Dispatch
	registry   *action.Registry
	dispatcher *dispatch.Dispatcher

	// Metrics
	metricsProvider *metrics.Provider
	dispatchMetrics *metrics.DispatchMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	credentialRepoInit     sync.Once
	overrideRepoInit       sync.Once
	secretServiceInit      sync.Once
	credentialUseCaseInit  sync.Once
	permissionResolverInit sync.Once
	registryInit           sync.Once
	dispatcherInit         sync.Once
	metricsProviderInit    sync.Once
	dispatchMetricsInit    sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		startedAt:  time.Now().UTC(),
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := database.Connect(database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			c.initErrors["db"] = fmt.Errorf("failed to connect to database: %w", err)
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// CredentialRepository returns the credential repository for the configured
// database driver.
func (c *Container) CredentialRepository() (credentialUsecase.CredentialRepository, error) {
	c.credentialRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["credentialRepo"] = fmt.Errorf("failed to get database for credential repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.credentialRepo = credentialRepository.NewMySQLCredentialRepository(db)
		case "postgres":
			c.credentialRepo = credentialRepository.NewPostgreSQLCredentialRepository(db)
		default:
			c.initErrors["credentialRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["credentialRepo"]; exists {
		return nil, storedErr
	}
	return c.credentialRepo, nil
}

// OverrideRepository returns the permission override repository for the
// configured database driver.
func (c *Container) OverrideRepository() (permissionUsecase.OverrideRepository, error) {
	c.overrideRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["overrideRepo"] = fmt.Errorf("failed to get database for override repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "mysql":
			c.overrideRepo = permissionRepository.NewMySQLOverrideRepository(db)
		case "postgres":
			c.overrideRepo = permissionRepository.NewPostgreSQLOverrideRepository(db)
		default:
			c.initErrors["overrideRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["overrideRepo"]; exists {
		return nil, storedErr
	}
	return c.overrideRepo, nil
}

// SecretService returns the credential secret generator.
func (c *Container) SecretService() credentialService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = credentialService.NewSecretService(c.config.CredentialSecretLength)
	})
	return c.secretService
}

// CredentialUseCase returns the credential lifecycle use case.
func (c *Container) CredentialUseCase() (credentialUsecase.CredentialUseCase, error) {
	c.credentialUseCaseInit.Do(func() {
		credentialRepo, err := c.CredentialRepository()
		if err != nil {
			c.initErrors["credentialUseCase"] = fmt.Errorf("failed to get credential repository for credential use case: %w", err)
			return
		}
		c.credentialUseCase = credentialUsecase.NewCredentialUseCase(
			credentialRepo, c.SecretService(), c.Logger())
	})
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// PermissionResolver returns the permission resolver.
func (c *Container) PermissionResolver() (permissionUsecase.Resolver, error) {
	c.permissionResolverInit.Do(func() {
		overrideRepo, err := c.OverrideRepository()
		if err != nil {
			c.initErrors["permissionResolver"] = fmt.Errorf("failed to get override repository for permission resolver: %w", err)
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["permissionResolver"] = fmt.Errorf("failed to get tx manager for permission resolver: %w", err)
			return
		}
		c.permissionResolver = permissionUsecase.NewResolver(overrideRepo, txManager, c.Logger())
	})
	if storedErr, exists := c.initErrors["permissionResolver"]; exists {
		return nil, storedErr
	}
	return c.permissionResolver, nil
}

// Registry returns the action registry with the built-in catalog discovered.
func (c *Container) Registry() *action.Registry {
	c.registryInit.Do(func() {
		registry := action.NewRegistry(c.Logger())
		registry.AutoDiscover(handlers.Builtin(registry, Version, c.startedAt))
		c.registry = registry
	})
	return c.registry
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// DispatchMetrics returns the dispatch metrics recorder, or nil when metrics
// are disabled.
func (c *Container) DispatchMetrics() (*metrics.DispatchMetrics, error) {
	c.dispatchMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["dispatchMetrics"] = fmt.Errorf("failed to get metrics provider for dispatch metrics: %w", err)
			return
		}
		if provider == nil {
			return
		}
		dispatchMetrics, err := metrics.NewDispatchMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["dispatchMetrics"] = fmt.Errorf("failed to create dispatch metrics: %w", err)
			return
		}
		c.dispatchMetrics = dispatchMetrics
	})
	if storedErr, exists := c.initErrors["dispatchMetrics"]; exists {
		return nil, storedErr
	}
	return c.dispatchMetrics, nil
}

// Dispatcher returns the dispatch pipeline.
func (c *Container) Dispatcher() (*dispatch.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		credentialUseCase, err := c.CredentialUseCase()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get credential use case for dispatcher: %w", err)
			return
		}

		permissionResolver, err := c.PermissionResolver()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get permission resolver for dispatcher: %w", err)
			return
		}

		dispatchMetrics, err := c.DispatchMetrics()
		if err != nil {
			c.initErrors["dispatcher"] = fmt.Errorf("failed to get dispatch metrics for dispatcher: %w", err)
			return
		}

		var recorder dispatch.MetricsRecorder
		if dispatchMetrics != nil {
			recorder = dispatchMetrics
		}

		c.dispatcher = dispatch.NewDispatcher(
			c.Registry(),
			credentialUseCase,
			permissionResolver,
			recorder,
			c.Logger(),
			c.config.IsDevelopment(),
		)
	})
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get database for http server: %w", err)
			return
		}

		dispatcher, err := c.Dispatcher()
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get dispatcher for http server: %w", err)
			return
		}

		server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		server.SetupRouter(c.config, dispatchhttp.NewDispatchHandler(dispatcher))
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
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

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}
