package reporting

import (
	"strings"
	"testing"
	"time"

	"panel-lab/internal/domain"
	"panel-lab/internal/panel"
	"panel-lab/internal/regress"
)

func fixtureTable(t *testing.T) *panel.Table {
	t.Helper()
	oibdp := func(v float64) *float64 { return &v }
	var observations []*domain.Observation
	for i, e := range []string{"A", "B", "C"} {
		for p := 2001; p <= 2004; p++ {
			observations = append(observations, &domain.Observation{
				EntityID:        e,
				Period:          p,
				AffectedRatio:   float64(p-2001) * 0.1,
				TotalAssets:     100 + float64(i*50) + float64(p-2001)*10,
				NetIncome:       5 + float64(i),
				TotalDebt:       40,
				OperatingIncome: oibdp(10 + float64(i) + float64(p-2001)),
			})
		}
	}
	table, err := panel.Prepare(observations)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return table
}

func fixtureResults(t *testing.T, table *panel.Table) []*regress.FitResult {
	t.Helper()
	specs := []regress.Specification{
		{
			Label:      "Model 1: Pooled OLS",
			Dependent:  panel.ColROA,
			Regressors: []string{panel.ColAffectedRatioLag1},
			SEMode:     regress.SEPlain,
		},
		{
			Label:      "Broken",
			Dependent:  panel.ColROA,
			Regressors: []string{"NO_SUCH_COLUMN"},
			SEMode:     regress.SEPlain,
		},
	}
	return regress.RunBatch(table, specs)
}

func TestGenerate(t *testing.T) {
	table := fixtureTable(t)
	results := fixtureResults(t, table)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report, err := NewGenerator(panel.ColAffectedRatioLag1).
		WithClock(func() time.Time { return fixed }).
		Generate(table, results)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want fixed clock", report.GeneratedAt)
	}
	if report.DataSummary.Observations != 12 || report.DataSummary.Entities != 3 {
		t.Errorf("data summary = %+v", report.DataSummary)
	}
	if report.DataSummary.PeriodMin != 2001 || report.DataSummary.PeriodMax != 2004 {
		t.Errorf("period range = %d-%d", report.DataSummary.PeriodMin, report.DataSummary.PeriodMax)
	}
	if report.DataSummary.NumeratorTier != "OIBDP" {
		t.Errorf("numerator tier = %s", report.DataSummary.NumeratorTier)
	}
	if len(report.Comparison) != 2 {
		t.Fatalf("comparison rows = %d, want 2", len(report.Comparison))
	}
	if len(report.Failures) != 1 || !strings.HasPrefix(report.Failures[0], "Broken:") {
		t.Errorf("failures = %v", report.Failures)
	}
	if len(report.Descriptives) != len(DescriptiveColumns) {
		t.Errorf("descriptives = %d, want %d", len(report.Descriptives), len(DescriptiveColumns))
	}
	if report.Correlation == nil || len(report.Correlation.Columns) != len(DescriptiveColumns) {
		t.Error("correlation block missing or wrong width")
	}
}

func TestRenderMarkdown(t *testing.T) {
	table := fixtureTable(t)
	report, err := NewGenerator(panel.ColAffectedRatioLag1).Generate(table, fixtureResults(t, table))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"## Data Summary",
		"## Specification Comparison",
		"| Model 1: Pooled OLS |",
		"| Broken | FAILED |",
		"### Failed Specifications",
		"## Descriptive Statistics",
		"## Correlation Matrix",
		"| ROA Numerator | OIBDP |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderComparisonCSV(t *testing.T) {
	table := fixtureTable(t)
	report, err := NewGenerator(panel.ColAffectedRatioLag1).Generate(table, fixtureResults(t, table))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	csv := RenderComparisonCSV(report.Comparison)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "label,variable,estimate") {
		t.Errorf("header = %q", lines[0])
	}
	// Failed row renders empty statistic cells, not NaN.
	if strings.Contains(lines[2], "NaN") {
		t.Errorf("failed row leaks NaN: %q", lines[2])
	}
	if !strings.Contains(lines[2], "true") {
		t.Errorf("failed row missing failure flag: %q", lines[2])
	}
}

func TestRenderPanelCSV(t *testing.T) {
	table := fixtureTable(t)
	csv := RenderPanelCSV(table.Rows())

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 13 {
		t.Fatalf("lines = %d, want header + 12 rows", len(lines))
	}
	// First row of each firm has no lag values: empty cells after state.
	if !strings.Contains(lines[1], ",,") {
		t.Errorf("first firm-year should have empty derived cells: %q", lines[1])
	}
	if strings.Contains(csv, "NaN") {
		t.Error("panel CSV leaks NaN")
	}
}
