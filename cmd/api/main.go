package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/lumipay/lumipay-api/docs" // Swagger docs (generated)
	"github.com/lumipay/lumipay-api/internal/auth"
	"github.com/lumipay/lumipay-api/internal/config"
	"github.com/lumipay/lumipay-api/internal/database"
	"github.com/lumipay/lumipay-api/internal/email"
	httpServer "github.com/lumipay/lumipay-api/internal/http"
	"github.com/lumipay/lumipay-api/internal/ledger"
	"github.com/lumipay/lumipay-api/internal/logging"
	"github.com/lumipay/lumipay-api/internal/ratelimit"
	"github.com/lumipay/lumipay-api/internal/user"
)

// @title           LumiPay API
// @version         1.0
// @description     Demonstration fintech backend: registration, login, and money transfer against a relational ledger.

// @contact.name   API Support
// @contact.email  support@lumipay.dev

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_scheme", cfg.Auth.TokenScheme,
	)

	// Initialize database connection
	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Apply schema migrations before accepting traffic
	if err := database.RunMigrations(context.Background(), db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	resetTokenRepo := auth.NewResetTokenRepository(db)
	txRepo := ledger.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize token service
	tokenService, err := initTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		resetTokenRepo,
		tokenService,
		emailService,
		logger,
		cfg.Auth.SessionTokenDuration,
		cfg.Ledger.OpeningBalance,
	)

	// Initialize ledger service
	ledgerService := ledger.NewService(db, userRepo, txRepo, logger)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.SessionTokenDuration,
	)
	authMiddleware := auth.NewMiddleware(tokenService)
	ledgerHandler := ledger.NewHandler(ledgerService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, ledgerHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
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
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initTokenService builds the session token service selected by TOKEN_SCHEME.
func initTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenScheme {
	case config.TokenSchemeJWT:
		return auth.NewJWTService(cfg.SigningKey), nil
	default:
		return auth.NewPasetoService(cfg.SigningKey)
	}
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
