package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "camera-rental-backend/internal/api/grpc"
	httpapi "camera-rental-backend/internal/api/http"
	"camera-rental-backend/internal/config"
	"camera-rental-backend/internal/database"
	"camera-rental-backend/internal/jobs"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/notify"
	"camera-rental-backend/internal/repository/postgres"
	"camera-rental-backend/internal/scheduler"
	"camera-rental-backend/internal/security"
	"camera-rental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	withScheduler := flag.Bool("with-scheduler", false, "Run the cron jobs inside the server process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Camera Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_port", cfg.Server.GRPCPort)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	var revoked security.RevocationStore
	if cfg.Redis.Addr != "" {
		client, err := security.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		revoked = security.NewRedisRevocationStore(client)
		logger.Info("Using redis token revocation store", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis not configured, token revocations are kept in memory")
		revoked = security.NewMemoryRevocationStore()
	}
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	// Initialize Email Delivery
	var sender notify.Sender
	if cfg.SendGrid.APIKey != "" {
		sender = notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Info("SendGrid not configured, e-mails are logged only")
		sender = notify.NewLogSender()
	}
	queue := notify.NewQueue(sender, cfg.Notify.Workers, cfg.Notify.QueueSize, cfg.Notify.MaxRetries)
	queue.Start(ctx)
	mailer := notify.NewMailer(queue)

	// Initialize Services
	clock := service.NewSystemClock()
	svcs := httpapi.Services{
		Auth:      service.NewAuthService(store.UserRepository, tokenManager, revoked, clock),
		Customers: service.NewCustomerService(store.CustomerRepository),
		Equipment: service.NewEquipmentService(store.EquipmentTypeRepository, store.EquipmentRepository),
		Rentals: service.NewRentalService(
			store.RentalRepository,
			store.EquipmentRepository,
			store.CustomerRepository,
			store.PaymentRepository,
			mailer,
			clock,
		),
		Payments: service.NewPaymentService(
			store.RentalRepository,
			store.EquipmentRepository,
			store.PaymentRepository,
			service.NewPDFReceiptRenderer(cfg.SendGrid.FromName),
			mailer,
			clock,
			service.NewULIDGenerator(),
		),
	}

	// Set up HTTP server
	httpServer := &http.Server{
		Addr: cfg.GetServerAddress(),
		Handler: httpapi.NewHandler(svcs, httpapi.Options{
			RequestTimeout:     cfg.RequestTimeout(),
			LoginPerMinute:     cfg.RateLimit.LoginPerMinute,
			LoginBurst:         cfg.RateLimit.Burst,
			CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
			DB:                 db,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Set up gRPC health server
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer, healthServer := grpcapi.NewServer()
		go grpcapi.WatchDatabase(ctx, healthServer, db, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
		defer grpcServer.GracefulStop()
	}

	if *withScheduler {
		cronScheduler, err := scheduler.NewScheduler(jobs.NewJobRunner(store.RentalRepository, store.EquipmentRepository, cfg))
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	queue.Wait()
	logger.Info("Server stopped. Goodbye!")
}
