package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"

	"voltride-backend/internal/config"
	"voltride-backend/internal/jobs"
	"voltride-backend/internal/logger"
	"voltride-backend/internal/repository/postgres"
)

// One-shot runner for the maintenance jobs. The server schedules the same
// jobs through cron; this binary exists for operators and CI.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	job := flag.String("job", "all", "Job to run: 'integrity', 'overdue' or 'all'")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Voltride Sweep Runner...", "job", *job)

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

	runner := jobs.NewJobRunner(postgres.NewStore(db), cfg)

	switch *job {
	case "integrity":
		runner.SweepFleetIntegrity()
	case "overdue":
		runner.FlagOverdueReservations()
	case "all":
		runner.RunAll()
	default:
		log.Fatalf("Unknown job: %s", *job)
	}
}
