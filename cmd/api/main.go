package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletpalz/internal/config"
	"walletpalz/internal/database"
	"walletpalz/internal/handlers"
	"walletpalz/internal/logger"
	"walletpalz/internal/middleware"
	"walletpalz/internal/rates"
	"walletpalz/internal/realtime"
	"walletpalz/internal/server"
	"walletpalz/internal/services"
	"walletpalz/internal/validator"
	"walletpalz/internal/worker"
)

// @title           WalletPalz API
// @version         1.0
// @description     WalletPalz is a personal finance application for tracking income and expenses across currencies, setting category budgets and receiving budget alerts.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const (
	shutdownTimeout = 15 * time.Second
	alertQueueSize  = 256
	hubBuffer       = 32
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background infrastructure
	rateClient := rates.NewClient(&http.Client{Timeout: appConfig.RatesTimeout}, appConfig.RatesAPIURL)
	rateService := rates.NewService(rateClient, appConfig.RatesCacheTTL)
	hub := realtime.NewHub(hubBuffer)
	jobs := worker.NewDispatcher(appConfig.AlertWorkers, alertQueueSize)
	limiter := middleware.NewRateLimiter(appConfig.RateLimitRPS, appConfig.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	settingsService := services.NewSettingsService(db)
	auditService := services.NewAuditService(db)
	alertService := services.NewAlertService(db, rateService, hub)
	notificationService := services.NewNotificationService(db, hub)
	transactionService := services.NewTransactionService(db, settingsService, rateService, alertService, jobs)
	budgetService := services.NewBudgetService(db, settingsService, rateService, transactionService)
	dashboardService := services.NewDashboardService(settingsService, rateService, transactionService, budgetService)
	exportService := services.NewExportService(db, userService, settingsService, transactionService)

	// Initialize handlers
	router := server.NewRouter(server.Handlers{
		Auth:          handlers.NewAuthHandler(userService, exportService, auditService),
		Transactions:  handlers.NewTransactionHandler(transactionService, auditService),
		Budgets:       handlers.NewBudgetHandler(budgetService, auditService),
		Settings:      handlers.NewSettingsHandler(settingsService, auditService),
		Notifications: handlers.NewNotificationHandler(notificationService, hub),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		Rates:         handlers.NewRatesHandler(settingsService, rateService),
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting WalletPalz backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown error: %v", err)
	}
	// Let queued alert checks finish before the database goes away.
	if err := jobs.Close(shutdownCtx); err != nil {
		log.Warnf("alert jobs did not finish: %v", err)
	}
	return nil
}
