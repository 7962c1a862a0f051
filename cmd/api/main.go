package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/userhub-io/identity-api/docs" // Swagger docs (generated)
	"github.com/userhub-io/identity-api/internal/auth"
	"github.com/userhub-io/identity-api/internal/config"
	"github.com/userhub-io/identity-api/internal/database"
	httpServer "github.com/userhub-io/identity-api/internal/http"
	"github.com/userhub-io/identity-api/internal/logging"
	"github.com/userhub-io/identity-api/internal/user"
)

// @title           Identity API
// @version         1.0
// @description     Identity and access management core: local and social login, role-based authorization, user directory and activity tracking.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_backend", cfg.Auth.Backend,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Token backend: same key material, interchangeable wire formats.
	var tokenService auth.TokenService
	switch cfg.Auth.Backend {
	case config.TokenBackendJWT:
		tokenService, err = auth.NewJWTService(cfg.Auth.TokenKey)
	default:
		tokenService, err = auth.NewPasetoService(cfg.Auth.TokenKey)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	hasher := auth.NewPasswordHasher()

	userRepo := user.NewRepository(db)
	profileCache := user.NewProfileCache(redisClient)
	userService := user.NewService(userRepo, profileCache, hasher, logger)

	authService := auth.NewService(
		userService,
		hasher,
		tokenService,
		cfg.Auth.AccessTokenDuration,
		logger,
	)

	authHandler := auth.NewHandler(authService, logger)
	userHandler := httpServer.NewUserHandler(userService, logger)
	guard := auth.NewMiddleware(tokenService)

	router := httpServer.NewRouter(cfg, authHandler, userHandler, guard, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the database, verifies the connection, applies pending
// migrations and returns a Bun DB instance.
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if cfg.MigrateOnStart {
		if err := database.Migrate(sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
