package main

import (
	"bank-lab/auth"
	grpcServer "bank-lab/infrastructure/grpc/server"
	httpServer "bank-lab/infrastructure/http/server"
	"bank-lab/internal"
	"bank-lab/repositories"
	"bank-lab/runtime"
	"bank-lab/runtime/workers"
	"bank-lab/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and owns their lifecycle so deferred cleanups
// (badger first of all) always execute before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	envFile := pflag.String("env-file", ".env", "Path to an optional .env file")
	pflag.Parse()
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return exitConfig, fmt.Errorf("env file error: %w", err)
	}

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	threshold, err := config.Threshold()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core components
	registry := runtime.NewRegistry(config.RegistryShards)
	notifier := runtime.NewNotifier(logger, registry)
	queue := runtime.NewComplianceQueue(logger, config.ComplianceQueueSize)

	accountRepository := repositories.NewAccountRepository(db, logger)
	complianceRepository := repositories.NewComplianceRepository(db)
	userRepository := repositories.NewUserRepository(db)

	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	ledger := services.NewLedger(logger, accountRepository, notifier)
	transactions := services.NewTransactionService(logger, ledger, accountRepository, notifier, queue,
		threshold, config.LimitTransactions)
	authService := services.NewAuthService(userRepository, tokens, config.Admins())

	// 4. Background workers under supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(workers.NewHeartbeatWorker(logger, registry, queue, config.HeartbeatInterval))
	for range config.ComplianceWorkers {
		sup.Add(workers.NewComplianceWorker(logger, queue.Jobs(), complianceRepository, notifier,
			config.ComplianceReviewDuration))
	}
	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		sup.Run(ctx)
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		inspector := internal.NewInspector(logger, db, "/inspect", func() map[string]any {
			return map[string]any{"connections": registry.Stats(), "compliance_queue": queue.Len()}
		})
		debugAddr := fmt.Sprintf("%s:%d", config.Host, config.DebugPort)
		logger.Info("Debug Badger inspector available", "url", "http://"+debugAddr+"/inspect")
		go func() { _ = inspector.Listen(debugAddr) }()
		defer func() { _ = inspector.Shutdown() }()
	}

	// 5. Servers
	errChan := make(chan error, 2)

	healthAddr := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
	listener, err := net.Listen("tcp", healthAddr)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", healthAddr, err)
	}
	health := grpcServer.NewHealthServer(logger)
	go func() {
		if err := health.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()

	api := httpServer.New(httpServer.Dependencies{
		Log:             logger,
		Auth:            authService,
		Ledger:          ledger,
		Transactions:    transactions,
		Verifier:        tokens,
		Registry:        registry,
		Notifier:        notifier,
		BufferSize:      config.ConnectionBufferSize,
		DeliveryTimeout: config.DeliveryTimeout,
	})
	go func() {
		if err := api.Listen(fmt.Sprintf("%s:%d", config.Host, config.Port)); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	health.SetServing(true)

	// 6. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Graceful shutdown: stop advertising, drain HTTP, then the workers.
	logger.Info("Shutting down gracefully...")
	health.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	health.Stop()
	queue.Close()
	sup.Stop()
	<-supervisorDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}
