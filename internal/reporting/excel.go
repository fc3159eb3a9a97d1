package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// Excel sheet names, one per report block.
const (
	sheetRegression   = "Regression_Results"
	sheetDescriptives = "Descriptive_Statistics"
	sheetCorrelation  = "Correlation_Matrix"
	sheetDefinitions  = "Variable_Definitions"
)

// variableDefinitions documents the analysis variables on their own sheet.
var variableDefinitions = [][2]string{
	{"AFFECTED_RATIO", "Fraction of the firm's facilities hit by a disaster in the year, 0 to 1"},
	{"AFFECTED_RATIO_LAG1", "AFFECTED_RATIO from the firm's prior observed year"},
	{"AFFECTED_RATIO_LAG2", "AFFECTED_RATIO from two observed years back"},
	{"ROA", "Operating income proxy divided by prior-year total assets"},
	{"ROA_CONTEMP", "Net income divided by same-year total assets"},
	{"AT_LAG1", "Total assets from the firm's prior observed year"},
	{"LOG_ASSETS", "Natural log of total assets"},
	{"LEVERAGE", "Total debt divided by total assets"},
}

// WriteExcel writes the report as a multi-sheet XLSX workbook.
func WriteExcel(r *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetRegression); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if err := writeRegressionSheet(f, r); err != nil {
		return err
	}
	if err := writeDescriptivesSheet(f, r); err != nil {
		return err
	}
	if err := writeCorrelationSheet(f, r); err != nil {
		return err
	}
	if err := writeDefinitionsSheet(f); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRegressionSheet(f *excelize.File, r *Report) error {
	header := []interface{}{
		"Specification", "Variable", "Coefficient", "Std Error", "P-value",
		"CI Lower", "CI Upper", "R2", "N", "Firms", "Fixed Effects", "SE Mode", "Status",
	}
	if err := writeRow(f, sheetRegression, 1, header); err != nil {
		return err
	}
	for i, row := range r.Comparison {
		status := "OK"
		if row.Failed {
			status = "FAILED: " + row.FailureReason
		}
		values := []interface{}{
			row.Label, row.Variable,
			cellFloat(row.Estimate), cellFloat(row.StdErr), cellFloat(row.PValue),
			cellFloat(row.CILower), cellFloat(row.CIUpper), cellFloat(row.R2),
			row.N, row.EntityCount, row.FixedEffects, row.SEMode, status,
		}
		if err := writeRow(f, sheetRegression, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeDescriptivesSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet(sheetDescriptives); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetDescriptives, err)
	}
	header := []interface{}{
		"Variable", "N", "Mean", "Std", "Min", "P10", "P25", "Median", "P75", "P90", "Max",
	}
	if err := writeRow(f, sheetDescriptives, 1, header); err != nil {
		return err
	}
	for i, s := range r.Descriptives {
		values := []interface{}{
			s.Variable, s.Count,
			cellFloat(s.Mean), cellFloat(s.Std), cellFloat(s.Min),
			cellFloat(s.P10), cellFloat(s.P25), cellFloat(s.Median),
			cellFloat(s.P75), cellFloat(s.P90), cellFloat(s.Max),
		}
		if err := writeRow(f, sheetDescriptives, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeCorrelationSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet(sheetCorrelation); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetCorrelation, err)
	}
	if r.Correlation == nil {
		return nil
	}
	header := make([]interface{}, 0, len(r.Correlation.Columns)+1)
	header = append(header, "")
	for _, c := range r.Correlation.Columns {
		header = append(header, c)
	}
	if err := writeRow(f, sheetCorrelation, 1, header); err != nil {
		return err
	}
	for i, c := range r.Correlation.Columns {
		values := make([]interface{}, 0, len(r.Correlation.Columns)+1)
		values = append(values, c)
		for j := range r.Correlation.Columns {
			values = append(values, cellFloat(r.Correlation.Matrix[i][j]))
		}
		if err := writeRow(f, sheetCorrelation, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeDefinitionsSheet(f *excelize.File) error {
	if _, err := f.NewSheet(sheetDefinitions); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheetDefinitions, err)
	}
	if err := writeRow(f, sheetDefinitions, 1, []interface{}{"Variable", "Definition"}); err != nil {
		return err
	}
	for i, def := range variableDefinitions {
		if err := writeRow(f, sheetDefinitions, i+2, []interface{}{def[0], def[1]}); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes one row of values starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell coordinates (%d,%d): %w", col+1, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// cellFloat leaves missing statistics as empty cells instead of NaN text.
func cellFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return ""
	}
	return v
}
