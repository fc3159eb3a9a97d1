package reporting

import (
	"fmt"
	"math"
	"strings"

	"panel-lab/internal/domain"
	"panel-lab/internal/regress"
)

// RenderComparisonCSV renders the specification comparison table as CSV.
func RenderComparisonCSV(rows []regress.ComparisonRow) string {
	var sb strings.Builder

	sb.WriteString("label,variable,estimate,std_error,p_value,ci_lower,ci_upper,")
	sb.WriteString("r2,n,firms,fixed_effects,se_mode,failed,failure_reason\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%d,%d,%s,%s,%t,%s\n",
			csvEscape(row.Label),
			row.Variable,
			csvFloat(row.Estimate),
			csvFloat(row.StdErr),
			csvFloat(row.PValue),
			csvFloat(row.CILower),
			csvFloat(row.CIUpper),
			csvFloat(row.R2),
			row.N,
			row.EntityCount,
			row.FixedEffects,
			row.SEMode,
			row.Failed,
			csvEscape(row.FailureReason),
		))
	}

	return sb.String()
}

// RenderPanelCSV renders the enriched panel for downstream inspection.
func RenderPanelCSV(rows []*domain.PanelRow) string {
	var sb strings.Builder

	sb.WriteString("entity_id,period,affected_ratio,total_assets,net_income,total_debt,state,")
	sb.WriteString("affected_ratio_lag1,affected_ratio_lag2,at_lag1,roa,roa_contemp,log_assets,leverage\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.EntityID,
			r.Period,
			csvFloat(r.AffectedRatio),
			csvFloat(r.TotalAssets),
			csvFloat(r.NetIncome),
			csvFloat(r.TotalDebt),
			r.State,
			csvPtr(r.AffectedRatioLag1),
			csvPtr(r.AffectedRatioLag2),
			csvPtr(r.AssetsLag1),
			csvPtr(r.ROA),
			csvPtr(r.ROAContemp),
			csvPtr(r.LogAssets),
			csvPtr(r.Leverage),
		))
	}

	return sb.String()
}

// csvFloat renders a float, leaving missing values as empty cells.
func csvFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}

func csvPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
