package reporting

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"panel-lab/internal/panel"
)

func TestWriteExcel(t *testing.T) {
	table := fixtureTable(t)
	report, err := NewGenerator(panel.ColAffectedRatioLag1).Generate(table, fixtureResults(t, table))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "RESULTS.xlsx")
	if err := WriteExcel(report, path); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{sheetRegression, sheetDescriptives, sheetCorrelation, sheetDefinitions}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i, s := range want {
		if sheets[i] != s {
			t.Errorf("sheet %d = %s, want %s", i, sheets[i], s)
		}
	}

	// Header and first data row of the regression sheet.
	if v, err := f.GetCellValue(sheetRegression, "A1"); err != nil || v != "Specification" {
		t.Errorf("A1 = %q (%v), want Specification", v, err)
	}
	if v, err := f.GetCellValue(sheetRegression, "A2"); err != nil || v != "Model 1: Pooled OLS" {
		t.Errorf("A2 = %q (%v)", v, err)
	}

	// Failed row carries its reason in the status column.
	if v, err := f.GetCellValue(sheetRegression, "M3"); err != nil || len(v) < len("FAILED") || v[:6] != "FAILED" {
		t.Errorf("M3 = %q (%v), want FAILED prefix", v, err)
	}

	// Correlation diagonal is 1.
	if v, err := f.GetCellValue(sheetCorrelation, "B2"); err != nil || v != "1" {
		t.Errorf("correlation B2 = %q (%v), want 1", v, err)
	}

	// Definitions sheet documents every analysis variable.
	if v, err := f.GetCellValue(sheetDefinitions, "A2"); err != nil || v != "AFFECTED_RATIO" {
		t.Errorf("definitions A2 = %q (%v)", v, err)
	}
}
