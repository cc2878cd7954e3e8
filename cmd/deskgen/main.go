package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/export"
	"github.com/PSavvateev/cs-data-generator/internal/metrics"
	"github.com/PSavvateev/cs-data-generator/internal/orchestrator"
	"github.com/PSavvateev/cs-data-generator/internal/report"
)

func main() {
	// CLI flags
	var (
		outDir      = flag.String("out", "exports", "Output directory for CSV files")
		configFile  = flag.String("config", "", "Optional YAML config file")
		seed        = flag.Int64("seed", 0, "Random seed (overrides config when non-zero)")
		numTickets  = flag.Int("tickets", 0, "Number of tickets (overrides config when non-zero)")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dbURL       = flag.String("db", "", "Optional Postgres URL to load the dataset into")
		dbSchema    = flag.String("db-schema", "deskgen", "Postgres schema name")
		metricsPush = flag.String("metrics-push", "", "Optional Pushgateway URL")
		showReport  = flag.Bool("report", true, "Print the dataset summary")
	)
	flag.Parse()

	// Setup logger
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Str("service", "deskgen").
		Str("run_id", uuid.New().String()).
		Logger()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *numTickets != 0 {
		cfg.NumTickets = *numTickets
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	metrics.ResetGauges()
	started := time.Now()

	orch := orchestrator.New(cfg, logger)
	ds, err := orch.Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("generation failed")
	}

	metrics.GenerationDurationSeconds.Observe(time.Since(started).Seconds())
	metrics.Observe(ds, orch.Reassigned)

	if *showReport {
		report.Print(os.Stdout, cfg, ds, orch.Reassigned)
	}

	if err := export.WriteCSV(ds, *outDir); err != nil {
		logger.Fatal().Err(err).Msg("failed to write CSV export")
	}
	logger.Info().Str("dir", *outDir).Msg("CSV export written")

	var sink export.Sink = export.NewNoopSink()
	if *dbURL != "" {
		sink, err = export.NewPostgresSink(*dbURL, *dbSchema, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid database settings")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := sink.Store(ctx, ds); err != nil {
		logger.Fatal().Err(err).Msg("failed to load dataset into postgres")
	}

	if *metricsPush != "" {
		if err := push.New(*metricsPush, "deskgen").Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error().Err(err).Msg("failed to push metrics")
		} else {
			logger.Info().Msg("metrics pushed to Pushgateway")
		}
	}
}
