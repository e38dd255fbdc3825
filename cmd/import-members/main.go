package main

import (
	"context"
	"flag"
	"fmt"

	"member-info-api/internal/config"
	"member-info-api/internal/migration"
	"member-info-api/pkg/server"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		filePath = flag.String("file", "./data/members.json", "JSON file holding an array of member records")
		dryRun   = flag.Bool("dry-run", false, "Validate records without writing to the store")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	container, err := server.NewContainer(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	logger := container.Logger
	logger.WithFields(logrus.Fields{
		"file":    *filePath,
		"store":   cfg.Store.Type,
		"dry_run": *dryRun,
	}).Info("Starting member import")

	members, err := migration.ReadFile(*filePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read member file")
	}

	importer := migration.NewJSONImporter(container.MemberService, logger)

	var result *migration.ImportResult
	if *dryRun {
		result = importer.Validate(members)
	} else {
		result, err = importer.Import(context.Background(), members)
		if err != nil {
			logger.WithError(err).Fatal("Import failed")
		}
	}

	fmt.Printf("\n=== Import Results ===\n")
	fmt.Printf("Records processed: %d\n", result.Processed)
	fmt.Printf("Records imported: %d\n", result.Imported)
	fmt.Printf("Records skipped (already exist): %d\n", result.Skipped)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  ✗ %s\n", errMsg)
		}
	}
}
