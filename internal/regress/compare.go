package regress

import (
	"math"

	"panel-lab/internal/domain"
)

// ComparisonRow is one line of the cross-specification comparison table:
// the variable of interest's estimate tracked across tightening
// specifications, with flags describing each fit.
type ComparisonRow struct {
	Label        string
	Variable     string
	Estimate     float64 // NaN when failed or variable not in the model
	StdErr       float64
	PValue       float64
	CILower      float64
	CIUpper      float64
	R2           float64
	N            int
	EntityCount  int
	FixedEffects string
	SEMode       string

	Failed        bool
	FailureReason string
}

// ComparisonTable builds one row per fitted specification, in the batch's
// original order. Failed specifications keep a marker row. When a
// successful fit does not contain the variable of interest (robustness
// models with a substitute regressor), the row stays with NaN statistics.
func ComparisonTable(results []*FitResult, variable string) []ComparisonRow {
	rows := make([]ComparisonRow, len(results))
	for i, res := range results {
		row := ComparisonRow{
			Label:        res.Spec.Label,
			Variable:     variable,
			Estimate:     math.NaN(),
			StdErr:       math.NaN(),
			PValue:       math.NaN(),
			CILower:      math.NaN(),
			CIUpper:      math.NaN(),
			R2:           math.NaN(),
			FixedEffects: res.Spec.FixedEffectsString(),
			SEMode:       seModeString(res.Spec.SEMode),
		}

		if res.Err != nil {
			row.Failed = true
			row.FailureReason = res.Err.Error()
			rows[i] = row
			continue
		}

		row.R2 = res.R2
		row.N = res.N
		row.EntityCount = res.EntityCount
		if c, ok := res.Coefficient(variable); ok {
			row.Estimate = c.Estimate
			row.StdErr = c.StdErr
			row.PValue = c.PValue
			row.CILower = c.CILower
			row.CIUpper = c.CIUpper
		}
		rows[i] = row
	}
	return rows
}

// Records flattens comparison rows into persistable regression records,
// preserving batch order.
func Records(results []*FitResult, variable string) []*domain.RegressionRecord {
	rows := ComparisonTable(results, variable)
	records := make([]*domain.RegressionRecord, len(rows))
	for i, row := range rows {
		records[i] = &domain.RegressionRecord{
			Label:         row.Label,
			Position:      i,
			Dependent:     results[i].Spec.Dependent,
			Variable:      row.Variable,
			Estimate:      row.Estimate,
			StdErr:        row.StdErr,
			PValue:        row.PValue,
			CILower:       row.CILower,
			CIUpper:       row.CIUpper,
			R2:            row.R2,
			N:             row.N,
			EntityCount:   row.EntityCount,
			FixedEffects:  row.FixedEffects,
			SEMode:        row.SEMode,
			Failed:        row.Failed,
			FailureReason: row.FailureReason,
		}
	}
	return records
}

func seModeString(mode SEMode) string {
	if mode == "" {
		return string(SEPlain)
	}
	return string(mode)
}
