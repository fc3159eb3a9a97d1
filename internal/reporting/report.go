package reporting

import (
	"time"

	"panel-lab/internal/describe"
	"panel-lab/internal/panel"
	"panel-lab/internal/regress"
)

// Report is the structured output of one analysis run. Renderers and the
// Excel writer serialize it; the core produces only this record.
type Report struct {
	GeneratedAt time.Time

	DataSummary DataSummary

	// Comparison has one row per specification, in batch order, with
	// failure marker rows kept in place.
	Comparison []regress.ComparisonRow

	Descriptives []describe.Summary
	Correlation  *describe.Correlation

	// Failures lists failed specification labels with reasons, for a
	// quick scan without reading the whole table.
	Failures []string
}

// DataSummary describes the panel the run was computed over.
type DataSummary struct {
	Observations int
	Entities     int
	PeriodMin    int
	PeriodMax    int
	// NumeratorTier records which fallback supplied the ROA numerator.
	NumeratorTier string
}

// Generator assembles reports from a prepared panel and fitted results.
type Generator struct {
	variable string
	now      func() time.Time
}

// NewGenerator creates a report generator tracking the given variable of
// interest across specifications.
func NewGenerator(variable string) *Generator {
	return &Generator{
		variable: variable,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// DescriptiveColumns is the default variable set for the descriptive
// statistics and correlation blocks.
var DescriptiveColumns = []string{
	panel.ColROA,
	panel.ColAffectedRatioLag1,
	panel.ColAffectedRatio,
	panel.ColLogAssets,
	panel.ColLeverage,
}

// Generate builds the report for one analysis run.
func (g *Generator) Generate(table *panel.Table, results []*regress.FitResult) (*Report, error) {
	summaries, err := describe.Summaries(table, DescriptiveColumns)
	if err != nil {
		return nil, err
	}
	corr, err := describe.CorrelationMatrix(table, DescriptiveColumns)
	if err != nil {
		return nil, err
	}

	comparison := regress.ComparisonTable(results, g.variable)

	var failures []string
	for _, row := range comparison {
		if row.Failed {
			failures = append(failures, row.Label+": "+row.FailureReason)
		}
	}

	periods := table.Periods()
	summary := DataSummary{
		Observations:  table.NumRows(),
		Entities:      table.EntityCount(),
		NumeratorTier: table.Numerator.String(),
	}
	for i, p := range periods {
		if i == 0 || p < summary.PeriodMin {
			summary.PeriodMin = p
		}
		if i == 0 || p > summary.PeriodMax {
			summary.PeriodMax = p
		}
	}

	return &Report{
		GeneratedAt:  g.now(),
		DataSummary:  summary,
		Comparison:   comparison,
		Descriptives: summaries,
		Correlation:  corr,
		Failures:     failures,
	}, nil
}
