package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/audit"
	auditpg "github.com/pcoutinho/legal-management/internal/audit/postgres"
	"github.com/pcoutinho/legal-management/internal/auth"
	authpg "github.com/pcoutinho/legal-management/internal/auth/postgres"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/company"
	companypg "github.com/pcoutinho/legal-management/internal/company/postgres"
	"github.com/pcoutinho/legal-management/internal/core/events"
	"github.com/pcoutinho/legal-management/internal/group"
	grouppg "github.com/pcoutinho/legal-management/internal/group/postgres"
	"github.com/pcoutinho/legal-management/internal/legalcalc"
	legalcalcpg "github.com/pcoutinho/legal-management/internal/legalcalc/postgres"
	"github.com/pcoutinho/legal-management/internal/legalcase"
	legalcasepg "github.com/pcoutinho/legal-management/internal/legalcase/postgres"
	"github.com/pcoutinho/legal-management/internal/permission"
	permissionpg "github.com/pcoutinho/legal-management/internal/permission/postgres"
	"github.com/pcoutinho/legal-management/internal/role"
	rolepg "github.com/pcoutinho/legal-management/internal/role/postgres"
	"github.com/pcoutinho/legal-management/internal/transport/rest"
	"github.com/pcoutinho/legal-management/internal/transport/swagger"
	"github.com/pcoutinho/legal-management/internal/user"
	userpg "github.com/pcoutinho/legal-management/internal/user/postgres"
	"github.com/pcoutinho/legal-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	SQL    *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.SQL.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	sqlDB, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Fail fast on a broken OpenAPI document; the UI serves it verbatim.
	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		log.Warn("openapi spec failed validation, swagger UI may misbehave", "error", err)
	}

	eventBus := events.NewEventBus(log)
	authorizer := authz.NewEngine(log)

	auditRepo := auditpg.NewAuditRepository(gormDB)
	recorder := audit.NewBusRecorder(eventBus, auditRepo, log)
	auditService := audit.NewService(auditRepo, authorizer, log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewRepository(gormDB), tokenGen, recorder, config.Security.BCryptCost, log)

	userService := user.NewService(userpg.NewUserRepository(gormDB), authorizer, recorder, authService, authService, log)
	companyService := company.NewService(companypg.NewCompanyRepository(gormDB), authorizer, recorder, log)
	roleService := role.NewService(rolepg.NewRoleRepository(gormDB), authorizer, recorder, authService, log)
	permissionService := permission.NewService(permissionpg.NewPermissionRepository(gormDB), authorizer, recorder, log)
	groupService := group.NewService(grouppg.NewGroupRepository(gormDB), authorizer, recorder, authService, log)
	caseService := legalcase.NewService(legalcasepg.NewLegalCaseRepository(gormDB), authorizer, recorder, log)
	calcService := legalcalc.NewService(legalcalcpg.NewCalculationRepository(gormDB), authorizer, recorder, log)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(authService),
		User:        user.NewHandler(userService),
		Company:     company.NewHandler(companyService),
		Role:        role.NewHandler(roleService),
		Permission:  permission.NewHandler(permissionService),
		Group:       group.NewHandler(groupService),
		LegalCase:   legalcase.NewHandler(caseService),
		Calculation: legalcalc.NewHandler(calcService),
		Audit:       audit.NewHandler(auditService),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB.DB, handlers, authorizer, log)

	return &Dependencies{
		Config: config,
		SQL:    sqlDB,
		Gorm:   gormDB,
		Router: router,
		Logger: log,
	}, nil
}

// initDB opens one pgx connection pool and hands it to both sqlx (health
// checks, raw queries) and gorm (repositories).
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	sqlDB, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return sqlDB, gormDB, nil
}
