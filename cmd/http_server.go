package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/auth"
	"github.com/frahmantamala/permit-service/internal/core/events"
	"github.com/frahmantamala/permit-service/internal/permit"
	permitPostgres "github.com/frahmantamala/permit-service/internal/permit/postgres"
	"github.com/frahmantamala/permit-service/internal/transport"
	"github.com/frahmantamala/permit-service/internal/transport/rest"
	"github.com/frahmantamala/permit-service/internal/transport/swagger"
	"github.com/frahmantamala/permit-service/internal/user"
	userPostgres "github.com/frahmantamala/permit-service/internal/user/postgres"
	"github.com/frahmantamala/permit-service/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	Gorm          *gorm.DB
	Router        *chi.Mux
	EventBus      *events.EventBus
	PermitService *permit.Service
	UserService   *user.Service
	Logger        *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.EventBus.Wait(ctx); err != nil {
			deps.Logger.Warn("Event handlers still running at shutdown", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)
	rest.RegisterAllRoutes(deps.Router, deps.Config.Server, deps.Config.IsProduction(), rest.Handlers{
		Health: rest.NewHealthHandler(deps.DB, deps.Logger),
		Permit: permit.NewHandler(base, deps.PermitService),
		User:   user.NewHandler(base, deps.UserService),
	}, deps.Logger)
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Configure(logger.Options{
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})

	if _, err := swagger.Load(ctx); err != nil {
		return nil, fmt.Errorf("invalid embedded api document: %w", err)
	}

	db, err := initDB(ctx, config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config.IsProduction())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	tokens := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.JWTIssuer)
	policy := user.TokenPolicy{
		ReadTTL:   config.Security.ReadTokenTTL,
		CreateTTL: config.Security.CreateTokenTTL,
	}

	return &Dependencies{
		Config:        config,
		DB:            db,
		Gorm:          gormDB,
		Router:        chi.NewRouter(),
		EventBus:      bus,
		PermitService: permit.NewService(permitPostgres.NewPermitRepository(gormDB), bus, lg),
		UserService:   user.NewService(userPostgres.NewUserRepository(db), tokens, policy, bus, lg),
		Logger:        lg,
	}, nil
}

// initDB opens the shared pgx pool and waits up to ConnectTimeout for it to answer.
func initDB(ctx context.Context, cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Open(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := dbConn.PingContext(pingCtx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both count against one limit.
func initGorm(db *sqlx.DB, production bool) (*gorm.DB, error) {
	level := gormLogger.Info
	if production {
		level = gormLogger.Warn
	}

	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
	})
}
