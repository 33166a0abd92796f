package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates the metrics table, the conversion schedule and the
// recommendations.
func (tf *TableFormatter) Format(result *domain.ComparisonResult) (string, error) {
	var sb strings.Builder

	sb.WriteString("ROTH CONVERSION COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	if result.Baseline != nil {
		sb.WriteString(fmt.Sprintf("Projection: %d-%d\n", result.Baseline.Summary.FirstYear, result.Baseline.Summary.LastYear))
	}
	if result.RothWithdrawalStartYear > 0 {
		sb.WriteString(fmt.Sprintf("Roth withdrawals begin: %d\n", result.RothWithdrawalStartYear))
	}
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 13

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Metric",
		numWidth, "Baseline",
		numWidth, "Conversion",
		numWidth, "Difference",
		numWidth, "Change"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, key := range domain.MetricOrder {
		m := result.Metrics[key]
		sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
			nameWidth, tf.truncate(MetricLabel(key), nameWidth),
			numWidth, "$"+tf.formatDecimal(m.Baseline),
			numWidth, "$"+tf.formatDecimal(m.Conversion),
			numWidth, tf.deltaSymbol(m.Difference)+"$"+tf.formatDecimal(m.Difference.Abs()),
			numWidth, m.PercentChange.StringFixed(1)+"%"))
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(result.Schedule) > 0 {
		sb.WriteString("\nCONVERSION SCHEDULE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, c := range result.Schedule {
			sb.WriteString(fmt.Sprintf("%d  %-*s %*s\n", c.Year, nameWidth, tf.truncate(c.Source, nameWidth),
				numWidth, "$"+c.Amount.StringFixed(2)))
		}
	}

	if recs := GenerateRecommendations(result); len(recs) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range recs {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// formatDecimal formats a decimal for display (in thousands)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns the sign shown before a difference
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of the expense difference
func (tf *TableFormatter) FormatCompact(result *domain.ComparisonResult) string {
	m := result.Metrics[domain.MetricTotalExpenses]
	change := "="
	if m.Difference.IsPositive() {
		change = fmt.Sprintf("+$%s", tf.formatDecimal(m.Difference))
	} else if m.Difference.IsNegative() {
		change = fmt.Sprintf("-$%s", tf.formatDecimal(m.Difference.Abs()))
	}
	return fmt.Sprintf("Total expenses: %s | Final Roth: $%s",
		change, tf.formatDecimal(result.Metrics[domain.MetricFinalRoth].Conversion))
}
