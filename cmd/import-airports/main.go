package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unklstewy/arrivals-board/internal/db"
	"github.com/unklstewy/arrivals-board/internal/logging"
	"github.com/unklstewy/arrivals-board/pkg/airports"
	"github.com/unklstewy/arrivals-board/pkg/config"
)

// Airport Importer
// Loads the airport name table from a JSON file or URL into PostgreSQL so
// the board can run with directory.source = "postgres".
//
// The JSON format is the same one the board reads directly:
//
//	[{"icao": "RJAA", "koreanName": "나리타", "englishName": "Narita"}, ...]

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	file := flag.String("file", "", "Airport JSON file (default: directory.path from config)")
	url := flag.String("url", "", "Airport JSON URL (overrides -file)")
	dryRun := flag.Bool("dry-run", false, "Validate the input without writing to the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logging.New(cfg.Logging, logging.Options{Console: true})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer lg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source airports.Source
	switch {
	case *url != "":
		source = airports.NewHTTPSource(*url)
	case *file != "":
		source = airports.FileSource{Path: *file}
	default:
		source = airports.FileSource{Path: cfg.Directory.Path}
	}

	if err := run(ctx, cfg, source, *dryRun, lg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, source airports.Source, dryRun bool, logger *slog.Logger) error {
	records, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load airports: %w", err)
	}

	dir := airports.NewDirectory(records)
	logger.Info("airports loaded", slog.Int("records", len(records)), slog.Int("unique", dir.Len()))

	if dryRun {
		logger.Info("dry run, database not touched")
		return nil
	}

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.InitSchema(ctx); err != nil {
		return err
	}

	n, err := db.NewAirportRepository(database).Upsert(ctx, records)
	if err != nil {
		return err
	}

	stats, err := database.GetStats(ctx)
	if err != nil {
		return err
	}
	logger.Info("airports imported", slog.Int("written", n), slog.Any("total", stats["airports"]))
	return nil
}
