package domain

import "math"

// Observation is one raw firm-year row of the panel.
// Corresponds to the observations table in PostgreSQL.
type Observation struct {
	EntityID        string   // firm identifier (PERMNO-style, opaque)
	Period          int      // fiscal year
	AffectedRatio   float64  // fraction of facilities hit by a disaster, [0,1]; NaN if unknown
	TotalAssets     float64  // NaN if missing
	NetIncome       float64  // NaN if missing
	TotalDebt       float64  // NaN if missing
	OperatingIncome *float64 // OIBDP, nil when the source lacks the column
	Depreciation    *float64 // nil when the source lacks the column
	State           string   // headquarters state, empty if unknown; used for group clustering
}

// HasTotalAssets reports whether total assets carry a usable value.
func (o *Observation) HasTotalAssets() bool {
	return !math.IsNaN(o.TotalAssets)
}
