package describe

import (
	"errors"
	"math"
	"testing"

	"panel-lab/internal/domain"
	"panel-lab/internal/panel"
)

func prepared(t *testing.T, observations []*domain.Observation) *panel.Table {
	t.Helper()
	table, err := panel.Prepare(observations)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return table
}

func obs(entity string, period int, affected, income float64) *domain.Observation {
	return &domain.Observation{
		EntityID:      entity,
		Period:        period,
		AffectedRatio: affected,
		TotalAssets:   100,
		NetIncome:     income,
		TotalDebt:     40,
	}
}

func TestSummaries_SkipsMissing(t *testing.T) {
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 5),
		obs("A", 2002, 2, 5),
		obs("A", 2003, math.NaN(), 5),
		obs("A", 2004, 3, 5),
	})

	summaries, err := Summaries(table, []string{panel.ColAffectedRatio})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	s := summaries[0]

	if s.Count != 3 {
		t.Errorf("count = %d, want 3 (NaN skipped)", s.Count)
	}
	if math.Abs(s.Mean-2) > 1e-12 {
		t.Errorf("mean = %v, want 2", s.Mean)
	}
	if s.Min != 1 || s.Max != 3 {
		t.Errorf("min/max = %v/%v, want 1/3", s.Min, s.Max)
	}
	if math.Abs(s.Median-2) > 1e-12 {
		t.Errorf("median = %v, want 2", s.Median)
	}
	// Sample standard deviation of {1, 2, 3} is 1.
	if math.Abs(s.Std-1) > 1e-12 {
		t.Errorf("std = %v, want 1", s.Std)
	}
}

func TestSummaries_EmptyColumn(t *testing.T) {
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, math.NaN(), 5),
		obs("A", 2002, math.NaN(), 5),
	})

	summaries, err := Summaries(table, []string{panel.ColAffectedRatio})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	s := summaries[0]
	if s.Count != 0 {
		t.Errorf("count = %d, want 0", s.Count)
	}
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Median) {
		t.Error("moments of an empty column should be NaN")
	}
}

func TestSummaries_UnknownColumn(t *testing.T) {
	table := prepared(t, []*domain.Observation{obs("A", 2001, 1, 5)})
	_, err := Summaries(table, []string{"NO_SUCH"})
	if !errors.Is(err, panel.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestCorrelationMatrix_ListwiseDeletion(t *testing.T) {
	// One row misses AFFECTED_RATIO; it drops from every pair, not just
	// pairs involving that column.
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 2),
		obs("A", 2002, 2, 4),
		obs("A", 2003, math.NaN(), 6),
		obs("A", 2004, 4, 8),
	})

	corr, err := CorrelationMatrix(table, []string{panel.ColAffectedRatio, panel.ColNetIncome})
	if err != nil {
		t.Fatalf("CorrelationMatrix: %v", err)
	}

	if corr.N != 3 {
		t.Errorf("N = %d, want 3", corr.N)
	}
	if corr.Matrix[0][0] != 1 || corr.Matrix[1][1] != 1 {
		t.Error("diagonal should be 1")
	}
	// Over the remaining rows income = 2 * ratio exactly.
	if math.Abs(corr.Matrix[0][1]-1) > 1e-12 {
		t.Errorf("corr = %v, want 1", corr.Matrix[0][1])
	}
	if corr.Matrix[0][1] != corr.Matrix[1][0] {
		t.Error("matrix not symmetric")
	}
}

func TestCorrelationMatrix_NegativeCorrelation(t *testing.T) {
	table := prepared(t, []*domain.Observation{
		obs("A", 2001, 1, 8),
		obs("A", 2002, 2, 6),
		obs("A", 2003, 3, 4),
		obs("A", 2004, 4, 2),
	})

	corr, err := CorrelationMatrix(table, []string{panel.ColAffectedRatio, panel.ColNetIncome})
	if err != nil {
		t.Fatalf("CorrelationMatrix: %v", err)
	}
	if math.Abs(corr.Matrix[0][1]+1) > 1e-12 {
		t.Errorf("corr = %v, want -1", corr.Matrix[0][1])
	}
}
