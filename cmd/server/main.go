package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcontract "github.com/condoerp/backend/internal/application/contract"
	"github.com/condoerp/backend/internal/domain/shared"
	"github.com/condoerp/backend/internal/infrastructure/billing"
	"github.com/condoerp/backend/internal/infrastructure/cache"
	"github.com/condoerp/backend/internal/infrastructure/config"
	"github.com/condoerp/backend/internal/infrastructure/event"
	"github.com/condoerp/backend/internal/infrastructure/logger"
	"github.com/condoerp/backend/internal/infrastructure/notification"
	"github.com/condoerp/backend/internal/infrastructure/persistence"
	"github.com/condoerp/backend/internal/infrastructure/scheduler"
	"github.com/condoerp/backend/internal/interfaces/http/handler"
	"github.com/condoerp/backend/internal/interfaces/http/middleware"
	"github.com/condoerp/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Condo Billing API
//	@version		1.0
//	@description	Condominium fee contract backend: amortization schedules, installment payments and late-fee accrual.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Condo Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	historyRepo := persistence.NewGormChargeHistoryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Billing adapters bridge the contract context to the invoice ledger
	invoicing := billing.NewInvoicingAdapter(invoiceRepo, log)

	// Accounting wiring
	defaultJournal, settlementJournal, feeJournal := cfg.Billing.JournalUUIDs()
	settings := appcontract.Settings{
		DefaultJournalID:    defaultJournal,
		SettlementJournalID: settlementJournal,
		FeeJournalID:        feeJournal,
	}

	// Payment idempotency store: Redis when enabled, in-memory otherwise
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	idempotencyCfg := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Reminder delivery
	notifier := notification.NewLogNotifier(log)

	// Initialize application services. Payment and accrual share one lock
	// registry so they serialize against each other per contract.
	contractLocks := appcontract.NewContractLocks()
	contractService := appcontract.NewContractService(contractRepo, invoicing, settings, log)
	paymentService := appcontract.NewPaymentService(txScope, idempotencyStore, idempotencyCfg, contractLocks, log)
	lateFeeService := appcontract.NewLateFeeService(txScope, invoicing, settings, contractLocks, log)
	reminderService := appcontract.NewReminderService(contractRepo, notifier, cfg.Reminder.DaysAhead, log)
	reportService := appcontract.NewReportService(contractRepo, historyRepo, invoiceRepo, paymentRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	activityHandler := appcontract.NewActivityHandler(log)
	idempotentActivity := event.NewIdempotentHandler(activityHandler, idempotencyStore, log,
		event.WithIdempotencyConfig(idempotencyCfg))
	eventBus.Subscribe(idempotentActivity)

	log.Info("Event handlers registered",
		zap.Strings("activity_events", activityHandler.EventTypes()))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	contractService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	lateFeeService.SetEventPublisher(eventBus)

	// Initialize billing cron scheduler (if enabled)
	var cronScheduler *scheduler.BillingCronScheduler
	if cfg.Scheduler.Enabled {
		cronConfig := scheduler.DefaultBillingCronConfig()
		cronConfig.Enabled = true
		if cfg.Scheduler.JobTimeout > 0 {
			cronConfig.JobTimeout = cfg.Scheduler.JobTimeout
		}
		accrualSpec, err := scheduler.ParseCronSchedule(cfg.Scheduler.LateFeeCronSchedule, cronConfig.AccrualSchedule)
		if err != nil {
			log.Fatal("Invalid late fee cron schedule", zap.Error(err))
		}
		cronConfig.AccrualSchedule = accrualSpec
		reminderSpec, err := scheduler.ParseCronSchedule(cfg.Scheduler.ReminderCronSchedule, cronConfig.ReminderSchedule)
		if err != nil {
			log.Fatal("Invalid reminder cron schedule", zap.Error(err))
		}
		cronConfig.ReminderSchedule = reminderSpec

		executor := scheduler.NewBillingJobExecutor(lateFeeService, reminderService, log)
		companies := persistence.NewGormCompanyDirectory(db.DB)
		jobRuns := scheduler.NewJobRunRepository(db.DB)

		cronScheduler = scheduler.NewBillingCronScheduler(cronConfig, executor, companies, jobRuns, log)
		if err := cronScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := cronScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Duration("job_timeout", cronConfig.JobTimeout))
	}

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(contractService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	lateFeeHandler := handler.NewLateFeeHandler(lateFeeService)
	reminderHandler := handler.NewReminderHandler(reminderService)
	reportHandler := handler.NewReportHandler(reportService)
	schedulerHandler := handler.NewSchedulerHandler(cronScheduler)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Company - Resolve the owning company
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	companyConfig := middleware.DefaultCompanyConfig()
	companyConfig.DefaultCompanyID = cfg.App.CompanyID
	companyConfig.Required = false
	companyConfig.Logger = log
	engine.Use(middleware.CompanyMiddlewareWithConfig(companyConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(&router.ContractRoutes{
		Contracts: contractHandler,
		Payments:  paymentHandler,
		LateFees:  lateFeeHandler,
		Reports:   reportHandler,
	})
	r.Register(&router.BillingRoutes{
		LateFees:  lateFeeHandler,
		Reminders: reminderHandler,
		Reports:   reportHandler,
	})
	r.Register(&router.SchedulerRoutes{Scheduler: schedulerHandler})
	r.Register(&router.SystemRoutes{System: systemHandler})
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
