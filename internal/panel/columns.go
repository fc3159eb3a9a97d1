package panel

// Column names of the prepared panel. These follow the variable naming of
// the replicated study so reports read the same as the published tables.
const (
	ColAffectedRatio     = "AFFECTED_RATIO"
	ColAffectedRatioLag1 = "AFFECTED_RATIO_LAG1"
	ColAffectedRatioLag2 = "AFFECTED_RATIO_LAG2"
	ColTotalAssets       = "TOTAL_ASSETS"
	ColAssetsLag1        = "AT_LAG1"
	ColNetIncome         = "NET_INCOME"
	ColTotalDebt         = "TOTAL_DEBT"
	ColROA               = "ROA"
	ColROAContemp        = "ROA_CONTEMP"
	ColLogAssets         = "LOG_ASSETS"
	ColLeverage          = "LEVERAGE"
)

// Categorical (label) columns.
const (
	LabelState = "STATE"
)
