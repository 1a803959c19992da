package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"distress/internal/platform/config"
	"distress/internal/platform/logger"
	"distress/internal/platform/postgres"
	"distress/internal/property"
)

// ccodsync refreshes the property index from a downloaded CCOD export.
// It is run on the Land Registry's monthly publication cadence.
func main() {
	var zipPath string
	flag.StringVar(&zipPath, "zip", "", "path to the CCOD zip export")
	flag.Parse()

	log := logger.New()
	if zipPath == "" {
		log.Error("missing required -zip flag")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("property index unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loader := property.NewLoader(property.NewPostgresStore(db), log)
	rows, err := loader.LoadZip(ctx, zipPath)
	if err != nil {
		log.Error("ccod sync failed", "rows_loaded", rows, "error", err)
		os.Exit(1)
	}
	log.Info("ccod sync complete", "rows_loaded", rows)
}
