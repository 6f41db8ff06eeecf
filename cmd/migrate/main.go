package main

import (
	"database/sql"
	"flag"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/config"
	"invocation-adapter/internal/database"
)

func main() {
	var (
		dsn     = flag.String("db", "", "Database connection string (defaults to DB_CONNECTION_STRING)")
		action  = flag.String("action", "up", "Migration action: up, down, status")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			logger.WithError(err).Fatal("Failed to load configuration")
		}
		*dsn = cfg.Database.ConnectionString
	}

	logger.WithFields(logrus.Fields{
		"dsn":    *dsn,
		"action": *action,
	}).Info("Starting migration tool")

	db, err := sql.Open("sqlite3", *dsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	manager := database.NewMigrationManager(db, logger)

	switch *action {
	case "up":
		err = manager.RunMigrations()
	case "down":
		err = manager.RollbackMigration()
	case "status":
		err = showMigrationStatus(manager)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(manager *database.MigrationManager) error {
	status, err := manager.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
