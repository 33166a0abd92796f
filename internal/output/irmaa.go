package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// FormatIRMAAAnalysis renders the breach and warning years of an IRMAA
// analysis followed by its recommendations.
func FormatIRMAAAnalysis(analysis *domain.IRMAAAnalysis) string {
	if analysis == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("IRMAA ANALYSIS") + "\n")

	if len(analysis.HighRiskYears) > 0 {
		sb.WriteString(fmt.Sprintf("  %-6s %-8s %14s %14s %14s %12s\n",
			"Year", "Status", "MAGI", "Threshold", "Distance", "Cost"))
		for _, y := range analysis.HighRiskYears {
			status := string(y.RiskStatus)
			if y.RiskStatus == domain.IRMAARiskBreach {
				status = y.TierLevel
			}
			sb.WriteString(fmt.Sprintf("  %-6d %-8s %14s %14s %14s %12s\n",
				y.Year, status,
				FormatCurrency(y.MAGI),
				FormatCurrency(y.Threshold),
				FormatCurrency(y.DistanceToThreshold),
				FormatCurrency(y.AnnualCost)))
		}
		sb.WriteString("\n")
	}

	if analysis.FirstBreachYear > 0 {
		sb.WriteString(fmt.Sprintf("  First surcharge year: %d; %d years with surcharges costing %s\n",
			analysis.FirstBreachYear, len(analysis.YearsWithBreaches), FormatCurrency(analysis.TotalIRMAACost)))
	}
	if n := len(analysis.YearsWithWarnings); n > 0 {
		sb.WriteString(fmt.Sprintf("  %d years within $10,000 of the first tier\n", n))
	}
	for _, rec := range analysis.Recommendations {
		sb.WriteString("  - " + rec + "\n")
	}
	return sb.String()
}
