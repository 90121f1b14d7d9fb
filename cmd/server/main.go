package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "voltride-backend/internal/api/http"
	"voltride-backend/internal/availability"
	"voltride-backend/internal/config"
	"voltride-backend/internal/jobs"
	"voltride-backend/internal/logger"
	"voltride-backend/internal/repository/postgres"
	"voltride-backend/internal/scheduler"
	"voltride-backend/internal/security"
	"voltride-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Voltride Reservation Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.Portal.Secret,
		time.Duration(cfg.Portal.TokenExpiryMinute)*time.Minute,
	)

	// Initialize Notifiers
	notifier := service.MultiNotifier{service.LogNotifier{}}
	if cfg.Mail.Enabled {
		logger.Info("Mail notifications enabled", "from", cfg.Mail.FromEmail)
		notifier = append(notifier, service.NewEmailNotifier(cfg.Mail.APIKey, cfg.Mail.FromEmail, cfg.Mail.FromName))
	}

	// Initialize Services
	index := availability.NewIndex(store.Reservations())
	reservationSvc := service.NewReservationService(store, index, notifier)
	snapshotSvc := service.NewSnapshotService(store)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(store, cfg)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// One sweep right away; cron covers the rest.
	go jobRunner.SweepFleetIntegrity()

	// Set up HTTP server
	server := httpapi.NewServer(reservationSvc, snapshotSvc, store.Catalog(), tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), server.Handler()); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
