// Package main provides the analysis pipeline entry point.
// Executes: load observations → panel preparation → regression ladder →
// report generation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"panel-lab/internal/dataset"
	"panel-lab/internal/domain"
	"panel-lab/internal/orchestrator"
	"panel-lab/internal/panel"
	"panel-lab/internal/regress"
	"panel-lab/internal/reporting"
	"panel-lab/internal/storage"
	chstore "panel-lab/internal/storage/clickhouse"
	"panel-lab/internal/storage/memory"
	"panel-lab/internal/storage/migrations"
	pgstore "panel-lab/internal/storage/postgres"
)

func main() {
	input := flag.String("input", "", "Observation CSV or XLSX file (used when no PostgreSQL DSN)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the enriched panel copy")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	excelOut := flag.Bool("excel", true, "Write the Excel workbook alongside the text outputs")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[analyze] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *input, logger)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	variable := panel.ColAffectedRatioLag1

	orch := orchestrator.New(orchestrator.Options{
		ObservationStore: stores.observations,
		PanelRowStore:    stores.panelRows,
		ResultStore:      stores.results,
		Specs:            regress.BaselineLadder(),
		Variable:         variable,
		Verbose:          *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("Pipeline error: %v", err)
	}

	fmt.Printf("Pipeline completed:\n")
	fmt.Printf("  Observations: %d\n", result.ObservationsLoaded)
	fmt.Printf("  Panel rows:   %d\n", result.RowsPrepared)
	fmt.Printf("  Fitted:       %d\n", result.SpecsFitted)
	fmt.Printf("  Failed:       %d\n", result.SpecsFailed)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	if result.Table == nil {
		logger.Println("No observations, skipping report generation")
		return
	}

	if err := writeOutputs(result, variable, *outputDir, *excelOut); err != nil {
		logger.Fatalf("Write outputs: %v", err)
	}
	fmt.Printf("Outputs written to %s\n", *outputDir)
}

func writeOutputs(result *orchestrator.RunResult, variable, outputDir string, excelOut bool) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	report, err := reporting.NewGenerator(variable).Generate(result.Table, result.Results)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	outputs := map[string]string{
		"REPORT.md":      reporting.RenderMarkdown(report),
		"comparison.csv": reporting.RenderComparisonCSV(report.Comparison),
		"panel.csv":      reporting.RenderPanelCSV(result.Table.Rows()),
	}
	for name, content := range outputs {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	if excelOut {
		path := filepath.Join(outputDir, "RESULTS.xlsx")
		if err := reporting.WriteExcel(report, path); err != nil {
			return fmt.Errorf("write excel workbook: %w", err)
		}
	}
	return nil
}

// analysisStores groups the three stores the orchestrator needs.
type analysisStores struct {
	observations storage.ObservationStore
	panelRows    storage.PanelRowStore
	results      storage.RegressionResultStore
}

func createStores(ctx context.Context, postgresDSN, clickhouseDSN, input string, logger *log.Logger) (*analysisStores, func(), error) {
	stores := &analysisStores{}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, err
		}
		stores.observations = pgstore.NewObservationStore(pool)
		stores.results = pgstore.NewRegressionResultStore(pool)
	} else {
		if input == "" {
			return nil, nil, fmt.Errorf("no input: use --input or --postgres-dsn")
		}
		observations, err := loadObservations(input)
		if err != nil {
			return nil, nil, err
		}
		logger.Printf("Loaded %d observations from %s", len(observations), input)

		obsStore := memory.NewObservationStore()
		if err := obsStore.InsertBulk(ctx, observations); err != nil {
			return nil, nil, err
		}
		stores.observations = obsStore
		stores.results = memory.NewRegressionResultStore()
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { conn.Close() })
		stores.panelRows = chstore.NewPanelRowStore(conn)
		logger.Printf("ClickHouse panel copy enabled")
	} else {
		stores.panelRows = memory.NewPanelRowStore()
	}

	return stores, cleanup, nil
}

func loadObservations(input string) ([]*domain.Observation, error) {
	switch filepath.Ext(input) {
	case ".xlsx":
		return dataset.LoadXLSX(input)
	default:
		return dataset.LoadCSV(input)
	}
}
