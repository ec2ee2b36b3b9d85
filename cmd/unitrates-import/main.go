package main

import (
	"context"
	"os"
	"time"

	"unitrates/internal/amqp"
	"unitrates/internal/cli"
	"unitrates/internal/importer"
	applog "unitrates/internal/log"
	gsheet "unitrates/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentImporter, os.Getenv("LOG_LEVEL"))

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateImport(); err != nil {
		logger.Error("Import configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	source, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	imp := importer.New(source, repo, cfg.CompiledSheetName, cfg.DetailsSheetName)

	logger.Info("Starting import",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"compiled_sheet", cfg.CompiledSheetName,
		"details_sheet", cfg.DetailsSheetName)

	count, err := imp.Run(ctx)
	if err != nil {
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Import finished", "records", count, "store", cfg.SQLiteDBPath)

	// Tell running servers to reload their filter catalog.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		if err := amqpClient.PublishDatasetReload(ctx, repo.Identifier(), count); err != nil {
			logger.Error("Failed to publish dataset reload", "error", err)
			os.Exit(1)
		}
		logger.Info("Dataset reload published", "exchange", cfg.AMQPExchange)
	}
}
