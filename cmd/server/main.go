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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hearth-catering/service-booking/internal/application"
	"github.com/hearth-catering/service-booking/internal/config"
	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	bookingEvents "github.com/hearth-catering/service-booking/internal/events"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/internal/handler"
	"github.com/hearth-catering/service-booking/internal/repository"
	"github.com/hearth-catering/service-booking/pkg/database"
	"github.com/hearth-catering/service-booking/pkg/health"
	"github.com/hearth-catering/service-booking/pkg/kafka"
	"github.com/hearth-catering/service-booking/pkg/logger"
	"github.com/hearth-catering/service-booking/pkg/middleware"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.Bool("kafka", cfg.KafkaConfig.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else if err := repository.RunMigrations(ctx, db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Load the menu catalog and pricing policy
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	calculator := bookingDomain.NewStandardSettlementCalculator(
		catalog,
		cfg.PricingConfig.TransportFee,
		cfg.PricingConfig.ServiceChargeBps,
	)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	blockedDateRepo := repository.NewGormBlockedDateRepository(db)
	unresolvedRepo := repository.NewGormUnresolvedRepository(db)

	// Notifications and lifecycle events go to Kafka when enabled, otherwise to the log
	var (
		notifier  application.Notifier       = application.NewLogNotifier(log)
		publisher application.EventPublisher = application.NewLogPublisher(log)
		producer  *kafka.Producer
	)
	if cfg.KafkaConfig.Enabled {
		producer = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		notifier = bookingEvents.NewKafkaNotifier(producer)
		publisher = bookingEvents.NewKafkaPublisher(producer)
	}

	// Payment links are optional; without gateway credentials contracts carry no checkout URL
	var links application.PaymentLinkCreator
	if cfg.GatewayConfig.BaseURL != "" && cfg.GatewayConfig.SecretKey != "" {
		links = gateway.NewClient(cfg.GatewayConfig.BaseURL, cfg.GatewayConfig.SecretKey, cfg.GatewayConfig.Timeout)
	} else {
		log.Warn("payment gateway credentials not set, contracts will be sent without payment links")
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		blockedDateRepo,
		catalog,
		calculator,
		notifier,
		publisher,
		links,
		log,
	)
	calendarService := application.NewCalendarService(blockedDateRepo, log)
	processor := application.NewReconciliationProcessor(
		bookingRepo,
		unresolvedRepo,
		publisher,
		cfg.GatewayConfig.WebhookSecret,
		cfg.GatewayConfig.SignatureTolerance,
		log,
	)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewCalendarHandler(calendarService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminHandler(bookingService, processor).RegisterRoutes(&router.RouterGroup)
	handler.NewWebhookHandler(processor).RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		gatewayConsumer := bookingEvents.NewGatewayNotificationConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			processor,
			log,
		)
		defer func() { _ = gatewayConsumer.Close() }()

		g.Go(func() error {
			log.Info("starting gateway notification consumer", zap.String("group", groupID))
			if err := gatewayConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("gateway notification consumer: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-booking...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server forced shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("service-booking exited with error", zap.Error(err))
		return
	}
	log.Info("service-booking stopped")
}
