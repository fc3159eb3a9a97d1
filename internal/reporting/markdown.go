package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Disaster Exposure and Firm Profitability\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Observations | %d |\n", r.DataSummary.Observations))
	sb.WriteString(fmt.Sprintf("| Firms | %d |\n", r.DataSummary.Entities))
	sb.WriteString(fmt.Sprintf("| Years | %d-%d |\n", r.DataSummary.PeriodMin, r.DataSummary.PeriodMax))
	sb.WriteString(fmt.Sprintf("| ROA Numerator | %s |\n", r.DataSummary.NumeratorTier))
	sb.WriteString("\n")

	sb.WriteString("## Specification Comparison\n\n")
	if len(r.Comparison) > 0 {
		sb.WriteString(fmt.Sprintf("Variable of interest: `%s`\n\n", r.Comparison[0].Variable))
		sb.WriteString("| Specification | Coefficient | Std Error | P-value | R2 | N | Firms | FE | SE Mode |\n")
		sb.WriteString("|---------------|-------------|-----------|---------|----|---|-------|----|---------|\n")
		for _, row := range r.Comparison {
			if row.Failed {
				sb.WriteString(fmt.Sprintf("| %s | FAILED | - | - | - | - | - | %s | %s |\n",
					row.Label, row.FixedEffects, row.SEMode))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.4f | %d | %d | %s | %s |\n",
				row.Label,
				formatSigned(row.Estimate),
				formatStat(row.StdErr),
				formatStat(row.PValue),
				row.R2, row.N, row.EntityCount,
				row.FixedEffects, row.SEMode))
		}
	} else {
		sb.WriteString("No specifications were run.\n")
	}
	sb.WriteString("\n")

	if len(r.Failures) > 0 {
		sb.WriteString("### Failed Specifications\n\n")
		for _, f := range r.Failures {
			sb.WriteString(fmt.Sprintf("- %s\n", f))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Descriptive Statistics\n\n")
	sb.WriteString("| Variable | N | Mean | Std | Min | P10 | P25 | Median | P75 | P90 | Max |\n")
	sb.WriteString("|----------|---|------|-----|-----|-----|-----|--------|-----|-----|-----|\n")
	for _, s := range r.Descriptives {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Variable, s.Count,
			formatStat(s.Mean), formatStat(s.Std), formatStat(s.Min),
			formatStat(s.P10), formatStat(s.P25), formatStat(s.Median),
			formatStat(s.P75), formatStat(s.P90), formatStat(s.Max)))
	}
	sb.WriteString("\n")

	if r.Correlation != nil {
		sb.WriteString(fmt.Sprintf("## Correlation Matrix (N=%d)\n\n", r.Correlation.N))
		sb.WriteString("| |")
		for _, c := range r.Correlation.Columns {
			sb.WriteString(" " + c + " |")
		}
		sb.WriteString("\n|-|")
		for range r.Correlation.Columns {
			sb.WriteString("-|")
		}
		sb.WriteString("\n")
		for i, c := range r.Correlation.Columns {
			sb.WriteString("| " + c + " |")
			for j := range r.Correlation.Columns {
				sb.WriteString(fmt.Sprintf(" %.4f |", r.Correlation.Matrix[i][j]))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatStat renders a statistic, leaving NaN visible as a dash.
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6f", v)
}

// formatSigned renders an estimate with an explicit sign, the way the
// study's tables print coefficients.
func formatSigned(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%+.6f", v)
}
