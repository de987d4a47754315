package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KowsickReddy/TravelGo/config"
	"github.com/KowsickReddy/TravelGo/cron"
	"github.com/KowsickReddy/TravelGo/database"
	"github.com/KowsickReddy/TravelGo/handlers"
	"github.com/KowsickReddy/TravelGo/middleware"
	"github.com/KowsickReddy/TravelGo/routes"
	"github.com/KowsickReddy/TravelGo/services/booking"
	"github.com/KowsickReddy/TravelGo/services/catalog"
	"github.com/KowsickReddy/TravelGo/services/inventory"
	"github.com/KowsickReddy/TravelGo/services/notification"
	"github.com/KowsickReddy/TravelGo/services/payment"
	"github.com/KowsickReddy/TravelGo/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open storage: %v", err)
	}

	pingers := map[string]utils.Pinger{"database": store.Ping}

	var searchCache catalog.SearchCache
	if cfg.RedisAddr != "" {
		redisClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
		if err != nil {
			logger.Warn("Redis unavailable, search cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			searchCache = catalog.NewRedisSearchCache(redisClient, cfg.ServiceCacheTTL, logger)
			pingers["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	// Payment gateway.
	var gateway payment.Gateway = payment.OfflineGateway{}
	if cfg.StripeSecretKey != "" {
		gateway, err = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.UPIMerchantID, nil)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize payment gateway: %v", err)
		}
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payment gateway offline",
			zap.Bool("degraded", true), zap.Bool("fallbackEnabled", cfg.PaymentFallbackEnabled))
	}

	// Notifications.
	email := notification.NewEmailSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	}, logger)
	var sender notification.Sender = email
	var taskClient *asynq.Client
	var taskWorker *asynq.Server
	if cfg.NotifyMode == "asynq" {
		taskClient = asynq.NewClient(cron.QueueRedisOpt(cfg))
		sender = notification.NewTaskSender(taskClient, cfg.NotifyTaskQueue)
		taskWorker = cron.InitNotificationWorker(ctx, cfg, email, logger)
	}
	notifications := notification.NewQueue(sender, cfg.NotifyQueueSize, cfg.NotifyWorkers, logger)

	// services.
	ledger := inventory.NewLedger(store.Services, logger)
	bookingService := booking.NewBookingService(store, ledger, gateway, notifications, logger, booking.Options{
		FallbackEnabled: cfg.PaymentFallbackEnabled,
		RefundOnCancel:  cfg.RefundOnCancel,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	catalogService := catalog.NewCatalogService(store.Services, ledger, searchCache, logger)

	if cfg.DBDriver == "memory" || !cfg.IsProduction() {
		if _, err := catalog.Seed(ctx, store.Services, logger); err != nil {
			logger.Warn("Failed to seed service catalog", zap.Error(err))
		}
	}

	sweeper, err := cron.StartStalePaymentSweeper(ctx, cfg.StalePaymentSweep, cfg.PaymentTTL, bookingService, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to schedule stale payment sweeper: %v", err)
	}

	monitor := utils.NewHealthMonitor(pingers)
	monitor.Start(ctx, 30*time.Second)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		logger.Warn("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = []byte("travelgo-development-secret")
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	webhookHandler := handlers.NewPaymentWebhookHandler(bookingService, cfg.StripeWebhookSecret, logger)
	if cfg.StripeWebhookSecret == "" {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, payment webhooks will be rejected")
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		JWTSecret:     jwtSecret,
		HealthHandler: handlers.NewHealthHandler(monitor),

		// Catalog endpoints.
		SearchServicesHandler:   catalogHandler.SearchServices,
		GetServiceHandler:       catalogHandler.GetService,
		CreateServiceHandler:    catalogHandler.CreateService,
		UpdatePriceHandler:      catalogHandler.UpdatePrice,
		RelistServiceHandler:    catalogHandler.RelistService,
		SetServiceActiveHandler: catalogHandler.SetServiceActive,

		// Booking endpoints.
		CreateBookingHandler:   bookingHandler.CreateBooking,
		ListBookingsHandler:    bookingHandler.ListBookings,
		GetBookingHandler:      bookingHandler.GetBooking,
		InitiatePaymentHandler: bookingHandler.InitiatePayment,
		VerifyPaymentHandler:   bookingHandler.VerifyPayment,
		CancelBookingHandler:   bookingHandler.CancelBooking,

		PaymentWebhookHandler: webhookHandler.HandleStripeEvent,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	<-sweeper.Stop().Done()
	cancel()

	if err := notifications.Close(shutdownCtx); err != nil {
		logger.Warn("main: notification queue not drained", zap.Error(err))
	}
	if taskClient != nil {
		_ = taskClient.Close()
	}
	if taskWorker != nil {
		taskWorker.Shutdown()
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("main: failed to close storage", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
