// Package orchestrator provides end-to-end pipeline orchestration.
// It coordinates: load observations → panel preparation → regression
// ladder → persistence.
package orchestrator

import (
	"context"
	"fmt"
	"log"

	"panel-lab/internal/panel"
	"panel-lab/internal/regress"
	"panel-lab/internal/storage"
)

// Orchestrator coordinates the pipeline execution.
type Orchestrator struct {
	observationStore storage.ObservationStore
	panelRowStore    storage.PanelRowStore
	resultStore      storage.RegressionResultStore

	specs    []regress.Specification
	variable string

	verbose bool
}

// Options for creating Orchestrator.
type Options struct {
	// ObservationStore is required; the other stores are optional and
	// skipped when nil.
	ObservationStore storage.ObservationStore
	PanelRowStore    storage.PanelRowStore
	ResultStore      storage.RegressionResultStore

	// Specs is the ladder of regressions to fit. Variable names the
	// regressor extracted into the comparison records.
	Specs    []regress.Specification
	Variable string

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		observationStore: opts.ObservationStore,
		panelRowStore:    opts.PanelRowStore,
		resultStore:      opts.ResultStore,
		specs:            opts.Specs,
		variable:         opts.Variable,
		verbose:          opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ObservationsLoaded int
	RowsPrepared       int
	SpecsFitted        int
	SpecsFailed        int
	Errors             []string

	// Table and Results carry the in-memory outputs for report
	// generation by the caller.
	Table   *panel.Table
	Results []*regress.FitResult
}

// Run executes the full pipeline.
// Phases:
//  1. Load observations
//  2. Prepare panel (sort, lag, derive)
//  3. Persist enriched panel rows
//  4. Fit regression ladder
//  5. Persist comparison records
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	o.log("Phase 1: Loading observations...")
	observations, err := o.observationStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load observations) failed: %w", err)
	}
	result.ObservationsLoaded = len(observations)
	o.log("  Found %d observations", len(observations))

	if len(observations) == 0 {
		return result, nil
	}

	o.log("Phase 2: Preparing panel...")
	table, err := panel.Prepare(observations)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (panel preparation) failed: %w", err)
	}
	result.RowsPrepared = table.NumRows()
	result.Table = table
	o.log("  Prepared %d rows for %d entities (numerator: %s)",
		table.NumRows(), table.EntityCount(), table.Numerator)

	if o.panelRowStore != nil {
		o.log("Phase 3: Persisting panel rows...")
		if err := o.panelRowStore.InsertBulk(ctx, table.Rows()); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist panel rows: %v", err))
			o.log("  Persist failed: %v", err)
		}
	} else {
		o.log("Phase 3: Skipping panel persistence (no store)")
	}

	o.log("Phase 4: Fitting %d specifications...", len(o.specs))
	results := regress.RunBatch(table, o.specs)
	result.Results = results
	for _, r := range results {
		if r.Err != nil {
			result.SpecsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Spec.Label, r.Err))
			o.log("  %s: FAILED: %v", r.Spec.Label, r.Err)
		} else {
			result.SpecsFitted++
			o.log("  %s: n=%d entities=%d r2=%.4f", r.Spec.Label, r.N, r.EntityCount, r.R2)
		}
	}

	if o.resultStore != nil {
		o.log("Phase 5: Persisting comparison records...")
		records := regress.Records(results, o.variable)
		if err := o.resultStore.InsertBulk(ctx, records); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist records: %v", err))
			o.log("  Persist failed: %v", err)
		}
	} else {
		o.log("Phase 5: Skipping record persistence (no store)")
	}

	o.log("Pipeline completed: %d observations, %d rows, %d fitted, %d failed",
		result.ObservationsLoaded, result.RowsPrepared, result.SpecsFitted, result.SpecsFailed)

	return result, nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf(format, args...)
	}
}
