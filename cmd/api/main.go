package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openlims/lims-backend/api/routes"
	authsvc "github.com/openlims/lims-backend/internal/auth"
	component "github.com/openlims/lims-backend/internal/components"
	transaction "github.com/openlims/lims-backend/internal/transactions"
	user "github.com/openlims/lims-backend/internal/users"
	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db"
	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/logger"
	"github.com/openlims/lims-backend/pkg/metrics"
	"github.com/openlims/lims-backend/pkg/migrate"
	"github.com/openlims/lims-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := prepareSchema(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to prepare schema", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedSampleData {
		if err := component.SeedIfEmpty(ctx, dbClient.DB(), logg); err != nil {
			logg.Error(ctx, "failed to seed sample inventory", err)
			os.Exit(1)
		}
	}

	if err := user.SeedAdmin(ctx, dbClient.DB(), cfg.Admin, cfg.Password, logg); err != nil {
		logg.Error(ctx, "failed to seed admin user", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured, login rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	componentService := component.NewService(
		component.NewRepository(dbClient.DB()),
		transaction.NewRepository(dbClient.DB()),
		dbClient,
		cfg.Pagination,
	)
	authService := authsvc.NewService(user.NewRepository(dbClient.DB()), cfg.JWT, logg)

	router := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		DB:               dbClient,
		Redis:            redisClient,
		AuthService:      authService,
		ComponentService: componentService,
		HTTPMetrics:      metrics.NewHTTPMetrics(registry),
		MetricsGatherer:  registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(runCtx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

// prepareSchema keeps sqlite databases usable without the migration CLI.
// The goose SQL files target postgres; sqlite schemas come from the models.
func prepareSchema(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.DB.Driver == config.DriverSQLite {
		return client.DB().WithContext(ctx).AutoMigrate(
			&models.Component{},
			&models.User{},
			&models.Transaction{},
		)
	}
	return migrate.MaybeRunDev(ctx, cfg, logg, client)
}
