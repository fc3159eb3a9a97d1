package domain

// RegressionRecord is one persisted row of the cross-specification
// comparison table. Corresponds to the regression_results table in
// PostgreSQL. Failed specifications keep their row with Failed set so a
// reader can see the specification was attempted.
type RegressionRecord struct {
	Label         string  // specification label, unique per run
	Position      int     // original position in the batch, preserves narrative order
	Dependent     string  // dependent variable name
	Variable      string  // variable of interest
	Estimate      float64 // NaN when failed or variable absent
	StdErr        float64
	PValue        float64
	CILower       float64
	CIUpper       float64
	R2            float64
	N             int
	EntityCount   int
	FixedEffects  string // "none", "year", "firm", "firm+year"
	SEMode        string // "plain", "cluster_entity", "cluster_group"
	Failed        bool
	FailureReason string
}
