package regress

import (
	"math"
	"testing"

	"panel-lab/internal/domain"
	"panel-lab/internal/panel"
)

func TestComparisonTable_TracksVariableAcrossSpecs(t *testing.T) {
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 3), obs("A", 2002, 2, 5),
		obs("A", 2003, 3, 7), obs("A", 2004, 4, 10),
		obs("B", 2001, 2, 4), obs("B", 2002, 3, 6),
		obs("B", 2003, 4, 8), obs("B", 2004, 5, 11),
	})

	good := simpleSpec()
	failing := simpleSpec()
	failing.Label = "failing"
	failing.Regressors = []string{"MISSING"}

	results := RunBatch(table, []Specification{good, failing})
	rows := ComparisonTable(results, panel.ColAffectedRatio)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	if rows[0].Failed {
		t.Fatalf("first row failed: %s", rows[0].FailureReason)
	}
	if math.IsNaN(rows[0].Estimate) {
		t.Error("first row estimate is NaN")
	}
	if rows[0].N != 8 || rows[0].EntityCount != 2 {
		t.Errorf("first row n = %d entities = %d, want 8 and 2", rows[0].N, rows[0].EntityCount)
	}
	if rows[0].FixedEffects != "none" || rows[0].SEMode != "plain" {
		t.Errorf("first row flags = %s / %s", rows[0].FixedEffects, rows[0].SEMode)
	}

	if !rows[1].Failed || rows[1].FailureReason == "" {
		t.Error("second row should carry a failure marker with a reason")
	}
	if !math.IsNaN(rows[1].Estimate) || !math.IsNaN(rows[1].R2) {
		t.Error("failed row statistics should be NaN")
	}
	if rows[1].Label != "failing" {
		t.Errorf("order not preserved: %q", rows[1].Label)
	}
}

func TestComparisonTable_VariableAbsentFromModel(t *testing.T) {
	// A robustness model that swaps the variable of interest for a
	// substitute keeps its row with NaN statistics, not an omission.
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 3), obs("A", 2002, 2, 5),
		obs("A", 2003, 3, 7), obs("A", 2004, 4, 10),
	})

	results := RunBatch(table, []Specification{simpleSpec()})
	rows := ComparisonTable(results, "SOME_OTHER_VARIABLE")

	if rows[0].Failed {
		t.Fatal("fit itself did not fail")
	}
	if !math.IsNaN(rows[0].Estimate) {
		t.Errorf("estimate for absent variable = %v, want NaN", rows[0].Estimate)
	}
	if math.IsNaN(rows[0].R2) || rows[0].N != 4 {
		t.Error("fit-level statistics should still be reported")
	}
}

func TestRecords_PreservesOrderAndPositions(t *testing.T) {
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 3), obs("A", 2002, 2, 5),
		obs("A", 2003, 3, 7), obs("A", 2004, 4, 10),
	})

	a := simpleSpec()
	a.Label = "first"
	b := simpleSpec()
	b.Label = "second"
	b.Regressors = []string{"MISSING"}

	records := Records(RunBatch(table, []Specification{a, b}), panel.ColAffectedRatio)

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for i, r := range records {
		if r.Position != i {
			t.Errorf("record %d position = %d", i, r.Position)
		}
		if r.Dependent != panel.ColNetIncome {
			t.Errorf("record %d dependent = %s", i, r.Dependent)
		}
		if r.Variable != panel.ColAffectedRatio {
			t.Errorf("record %d variable = %s", i, r.Variable)
		}
	}
	if records[0].Failed || !records[1].Failed {
		t.Error("failure flags do not match batch outcomes")
	}
}
