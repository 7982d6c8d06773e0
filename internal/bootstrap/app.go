package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/locvowork/employee_records/internal/cipher"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/handler"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/metrics"
	"github.com/locvowork/employee_records/internal/repository"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/session"
)

type App struct {
	Echo     *echo.Echo
	DB       *sql.DB
	Config   *config.Config
	Registry *prometheus.Registry

	closers []func() error
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{
		Echo:     e,
		Registry: prometheus.NewRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	a.Config = cfg

	// Initialize logging
	logger.InitLogging(cfg.LogFilePath, cfg.LogLevel)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	fieldCipher, err := cipher.New(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize field cipher: %w", err)
	}

	// Initialize database connection
	db, err := database.NewPostgresDB(ctx, DatabaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db

	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		logger.InfoLog(ctx, "Database migrations applied")
	}

	store, err := a.newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}

	indexer, err := NewIndexer(cfg)
	if err != nil {
		return err
	}

	if err := metrics.RegisterMetrics(a.Registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Initialize dependencies
	empRepo := repository.NewEmployeeRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalog := domain.DefaultCatalog()
	empSvc := service.NewEmployeeService(empRepo, fieldCipher, catalog, indexer)
	authSvc := service.NewAuthService(userRepo, store, cfg.SessionTTL)

	a.RegisterMiddlewares()
	a.RegisterRoutes(&handler.Routes{
		Gate:      handler.NewSessionGate(authSvc),
		Auth:      handler.NewAuthHandler(authSvc, handler.CookieConfig{Secure: cfg.SessionCookieSecure, TTL: cfg.SessionTTL}),
		Employees: handler.NewEmployeeHandler(empSvc),
		Catalog:   handler.NewCatalogHandler(catalog),
		Pages:     handler.NewPageHandler(),
		Health:    handler.NewHealthHandler(db),
		Metrics:   metrics.Handler(a.Registry),
	})

	return nil
}

// DatabaseConfig maps the env config onto the connection settings.
func DatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}
}

// NewIndexer returns the Elasticsearch index, or a nil interface when no URL
// is configured so that search reports itself as disabled.
func NewIndexer(cfg *config.Config) (domain.EmployeeIndexer, error) {
	if !cfg.SearchEnabled() {
		return nil, nil
	}
	es, err := database.NewElasticSearchClient(cfg.ElasticURL, cfg.ElasticIndex)
	if err != nil {
		return nil, err
	}
	return es, nil
}

func (a *App) newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.SessionStore != config.SessionStoreDatastore {
		return session.NewMemoryStore(), nil
	}
	client, err := database.NewDatastoreClient(ctx, cfg.DatastoreProjectID)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	logger.InfoLog(ctx, "Sessions are stored in Datastore project %s", cfg.DatastoreProjectID)
	return session.NewDatastoreStore(client), nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(handler.RequestLogger())
	a.Echo.Use(handler.Metrics())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(routes *handler.Routes) {
	routes.Register(a.Echo)
}

// Run serves until Shutdown is called.
func (a *App) Run() error {
	err := a.Echo.Start(":" + a.Config.AppPort)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server and releases the database and session store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	for _, closeFn := range a.closers {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if a.DB != nil {
		if cerr := a.DB.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
