// Package panel transforms a raw firm-year table into a regression-ready
// table: stable (entity, period) sort, row-wise lag variables, the ROA
// profitability ratio, and log/ratio controls. All operations are pure
// and missingness propagates as NaN instead of raising.
package panel

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"panel-lab/internal/domain"
)

// Errors returned by panel preparation.
var (
	// ErrUnknownColumn is returned when a requested column does not exist
	// in the prepared table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateObservation is returned when two observations share the
	// same (entity, period) key.
	ErrDuplicateObservation = errors.New("duplicate (entity, period) observation")
)

// Prepare builds the analysis table from raw observations.
//
// Order of operations is fixed: stable sort by (entity, period), lag
// construction, ratio construction, log/ratio controls. Input order does
// not matter; the same logical panel always yields the same table.
func Prepare(observations []*domain.Observation) (*Table, error) {
	sorted := make([]*domain.Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EntityID != sorted[j].EntityID {
			return sorted[i].EntityID < sorted[j].EntityID
		}
		return sorted[i].Period < sorted[j].Period
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].EntityID == sorted[i-1].EntityID && sorted[i].Period == sorted[i-1].Period {
			return nil, fmt.Errorf("%w: entity %s period %d",
				ErrDuplicateObservation, sorted[i].EntityID, sorted[i].Period)
		}
	}

	n := len(sorted)
	t := &Table{
		entities: make([]string, n),
		periods:  make([]int, n),
		cols:     make(map[string][]float64),
		labels:   make(map[string][]string),
	}

	affected := make([]float64, n)
	assets := make([]float64, n)
	income := make([]float64, n)
	debt := make([]float64, n)
	states := make([]string, n)
	for i, o := range sorted {
		t.entities[i] = o.EntityID
		t.periods[i] = o.Period
		affected[i] = o.AffectedRatio
		assets[i] = o.TotalAssets
		income[i] = o.NetIncome
		debt[i] = o.TotalDebt
		states[i] = o.State
	}
	t.rebuildEntityStarts()

	t.addColumn(ColAffectedRatio, affected)
	t.addColumn(ColTotalAssets, assets)
	t.addColumn(ColNetIncome, income)
	t.addColumn(ColTotalDebt, debt)
	t.labels[LabelState] = states

	// Lags over prior observed rows per entity.
	lag1, err := t.lag(ColAffectedRatio, 1)
	if err != nil {
		return nil, err
	}
	t.addColumn(ColAffectedRatioLag1, lag1)

	lag2, err := t.lag(ColAffectedRatio, 2)
	if err != nil {
		return nil, err
	}
	t.addColumn(ColAffectedRatioLag2, lag2)

	atLag1, err := t.lag(ColTotalAssets, 1)
	if err != nil {
		return nil, err
	}
	t.addColumn(ColAssetsLag1, atLag1)

	// ROA numerator with the documented fallback chain:
	// OIBDP -> net income + depreciation -> net income.
	numerator, tier := roaNumerator(sorted)
	t.Numerator = tier

	roa := make([]float64, n)
	for i := range roa {
		roa[i] = safeDivide(numerator[i], atLag1[i])
	}
	t.addColumn(ColROA, roa)

	roaContemp := make([]float64, n)
	for i := range roaContemp {
		roaContemp[i] = safeDivide(income[i], assets[i])
	}
	t.addColumn(ColROAContemp, roaContemp)

	logAssets := make([]float64, n)
	for i := range logAssets {
		if assets[i] > 0 {
			logAssets[i] = math.Log(assets[i])
		} else {
			logAssets[i] = math.NaN()
		}
	}
	t.addColumn(ColLogAssets, logAssets)

	leverage := make([]float64, n)
	for i := range leverage {
		leverage[i] = safeDivide(debt[i], assets[i])
	}
	t.addColumn(ColLeverage, leverage)

	return t, nil
}

// roaNumerator selects the operating-income proxy for the whole panel.
// A tier is usable when at least one observation carries the field; rows
// without it get NaN and drop out at the filtering stage.
func roaNumerator(sorted []*domain.Observation) ([]float64, NumeratorSource) {
	hasOIBDP := false
	hasDepreciation := false
	for _, o := range sorted {
		if o.OperatingIncome != nil {
			hasOIBDP = true
		}
		if o.Depreciation != nil {
			hasDepreciation = true
		}
	}

	numerator := make([]float64, len(sorted))
	switch {
	case hasOIBDP:
		for i, o := range sorted {
			if o.OperatingIncome != nil {
				numerator[i] = *o.OperatingIncome
			} else {
				numerator[i] = math.NaN()
			}
		}
		return numerator, NumeratorOperatingIncome
	case hasDepreciation:
		for i, o := range sorted {
			if o.Depreciation != nil {
				numerator[i] = o.NetIncome + *o.Depreciation
			} else {
				numerator[i] = math.NaN()
			}
		}
		return numerator, NumeratorIncomePlusDepreciation
	default:
		for i, o := range sorted {
			numerator[i] = o.NetIncome
		}
		return numerator, NumeratorNetIncome
	}
}

// safeDivide returns NaN for a missing or zero denominator instead of an
// infinity that would silently survive arithmetic downstream.
func safeDivide(num, den float64) float64 {
	if math.IsNaN(num) || math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return num / den
}

// Rows exports the enriched panel as flat records for storage and
// downstream inspection. NaN becomes nil.
func (t *Table) Rows() []*domain.PanelRow {
	rows := make([]*domain.PanelRow, t.NumRows())
	for i := range rows {
		rows[i] = &domain.PanelRow{
			EntityID:          t.entities[i],
			Period:            t.periods[i],
			AffectedRatio:     t.cols[ColAffectedRatio][i],
			TotalAssets:       t.cols[ColTotalAssets][i],
			NetIncome:         t.cols[ColNetIncome][i],
			TotalDebt:         t.cols[ColTotalDebt][i],
			State:             t.labels[LabelState][i],
			AffectedRatioLag1: nilIfNaN(t.cols[ColAffectedRatioLag1][i]),
			AffectedRatioLag2: nilIfNaN(t.cols[ColAffectedRatioLag2][i]),
			AssetsLag1:        nilIfNaN(t.cols[ColAssetsLag1][i]),
			ROA:               nilIfNaN(t.cols[ColROA][i]),
			ROAContemp:        nilIfNaN(t.cols[ColROAContemp][i]),
			LogAssets:         nilIfNaN(t.cols[ColLogAssets][i]),
			Leverage:          nilIfNaN(t.cols[ColLeverage][i]),
		}
	}
	return rows
}

func nilIfNaN(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
