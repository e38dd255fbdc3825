package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"member-info-api/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/members.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	connectionManager := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath: absDBPath,
		AutoMigrate:  false,
		Logger:       logger,
	})
	if err := connectionManager.Connect(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer connectionManager.Close()

	migrationManager := connectionManager.GetMigrationManager()

	switch *action {
	case "up":
		err = migrationManager.RunMigrations()
	case "down":
		err = migrationManager.RollbackMigration()
	case "status":
		err = showMigrationStatus(migrationManager)
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(m *database.MigrationManager) error {
	status, err := m.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)

	return nil
}
