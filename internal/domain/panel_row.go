package domain

// PanelRow is one enriched firm-year row after panel preparation.
// Corresponds to the panel_rows table in ClickHouse. Nil pointers mark
// values that are undefined for the row (first observed period, zero
// denominator, non-positive assets).
type PanelRow struct {
	EntityID      string
	Period        int
	AffectedRatio float64
	TotalAssets   float64
	NetIncome     float64
	TotalDebt     float64
	State         string

	AffectedRatioLag1 *float64 // exposure from the prior observed row, nil if none
	AffectedRatioLag2 *float64 // exposure from two observed rows back, nil if fewer
	AssetsLag1        *float64 // total assets from the prior observed row, nil if none

	ROA        *float64 // operating numerator / lagged assets, nil if undefined
	ROAContemp *float64 // net income / contemporaneous assets, nil if undefined
	LogAssets  *float64 // ln(total assets), nil for non-positive assets
	Leverage   *float64 // total debt / total assets, nil if denominator missing or zero
}
