// Package main provides the observation ingestion entry point.
// Reads firm-year observations from CSV or XLSX and loads them into the
// observation store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"panel-lab/internal/dataset"
	"panel-lab/internal/domain"
	"panel-lab/internal/storage"
	"panel-lab/internal/storage/memory"
	"panel-lab/internal/storage/migrations"
	pgstore "panel-lab/internal/storage/postgres"
)

func main() {
	csvPath := flag.String("csv", "", "Path to observation CSV file")
	xlsxPath := flag.String("xlsx", "", "Path to observation XLSX file (first sheet)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (dry run)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags)

	if *csvPath == "" && *xlsxPath == "" {
		logger.Fatal("No input specified. Use --csv or --xlsx")
	}
	if *csvPath != "" && *xlsxPath != "" {
		logger.Fatal("Specify only one of --csv and --xlsx")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	observations, err := loadObservations(*csvPath, *xlsxPath)
	if err != nil {
		logger.Fatalf("Load observations: %v", err)
	}
	logger.Printf("Loaded %d observations", len(observations))

	store, cleanup, err := createObservationStore(ctx, *postgresDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Create store: %v", err)
	}
	defer cleanup()

	if err := store.InsertBulk(ctx, observations); err != nil {
		logger.Fatalf("Insert observations: %v", err)
	}
	logger.Printf("Ingested %d observations", len(observations))
}

func loadObservations(csvPath, xlsxPath string) ([]*domain.Observation, error) {
	if csvPath != "" {
		return dataset.LoadCSV(csvPath)
	}
	return dataset.LoadXLSX(xlsxPath)
}

func createObservationStore(ctx context.Context, dsn string, useMemory bool, logger *log.Logger) (storage.ObservationStore, func(), error) {
	if useMemory || dsn == "" {
		logger.Printf("Using in-memory storage (data is discarded on exit)")
		return memory.NewObservationStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pgstore.NewObservationStore(pool), pool.Close, nil
}
