package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/domain"
)

// ConsoleFormatter renders summary cards, the yearly table, final balances,
// the IRMAA analysis and any warnings.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	s := result.Summary

	title := "RETIREMENT PROJECTION"
	if result.Name != "" {
		title += ": " + result.Name
	}
	fmt.Fprintln(&buf, TitleStyle.Render(title))
	fmt.Fprintln(&buf, SubtitleStyle.Render(fmt.Sprintf("%d-%d, %d years", s.FirstYear, s.LastYear, len(result.Rows))))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, MetricGrid(SummaryCards(s), 4))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, YearTable(result))
	fmt.Fprintln(&buf)

	if len(s.FinalBalances) > 0 {
		fmt.Fprintln(&buf, TitleStyle.Render("FINAL BALANCES"))
		for _, key := range domain.SortedKeys(s.FinalBalances) {
			label := key
			if info, ok := result.Source(key); ok && info.Name != "" {
				label = info.Name
			}
			fmt.Fprintf(&buf, "  %-28s %16s\n", label, FormatCurrency(s.FinalBalances[key]))
		}
		fmt.Fprintln(&buf)
	}

	buf.WriteString(FormatIRMAAAnalysis(calculation.AnalyzeIRMAARisk(result.Rows)))

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, WarningStyle.Render("WARNINGS"))
		for _, w := range warnings {
			fmt.Fprintf(&buf, "  - %s\n", w)
		}
	}
	return buf.Bytes(), nil
}

// SummaryCards builds the lifetime metric cards of a run.
func SummaryCards(s domain.Summary) []*MetricCard {
	bracket := s.TopBracketReached
	if bracket == "" {
		bracket = "none"
	}
	irmaa := NewMetricCard("Total IRMAA", FormatCurrency(s.TotalIRMAA))
	if s.IRMAAEverReached {
		irmaa.WithDescription("surcharge reached")
	}
	return []*MetricCard{
		NewMetricCard("Lifetime Federal Tax", FormatCurrency(s.LifetimeTax)).WithDescription("top bracket " + bracket),
		NewMetricCard("Lifetime State Tax", FormatCurrency(s.LifetimeStateTax)),
		NewMetricCard("Lifetime Medicare", FormatCurrency(s.LifetimeMedicare)),
		irmaa,
		NewMetricCard("Total RMDs", FormatCurrency(s.TotalRMDs)),
		NewMetricCard("Roth Conversions", FormatCurrency(s.TotalConversions)),
		NewMetricCard("Cumulative Net Income", FormatCurrency(s.CumulativeNetIncome)),
		NewMetricCard("Final Balances", FormatCurrency(sumValues(s.FinalBalances))),
	}
}

// YearTable renders one line per projected year.
func YearTable(result *domain.RunResult) string {
	headers := []string{"Year", "Ages", "Filing", "Gross", "AGI", "Taxable", "Federal", "Bracket", "State",
		"Medicare", "RMD", "Conversion", "Net", "Flags"}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(ColorPrimary)
			}
			if col >= 3 && col != 7 && col != 13 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})

	for _, r := range result.Rows {
		ages := ageString(r.PrimaryAge)
		if r.SpouseAge != nil {
			ages += "/" + ageString(r.SpouseAge)
		}
		t.Row(
			fmt.Sprintf("%d", r.Year),
			ages,
			r.FilingStatus.TableLabel(),
			r.TotalGrossIncome.StringFixed(0),
			r.AGI.StringFixed(0),
			r.TaxableIncome.StringFixed(0),
			r.FederalTax.StringFixed(0),
			r.TaxBracket,
			r.StateTax.StringFixed(0),
			r.TotalMedicare.StringFixed(0),
			r.TotalRMD.StringFixed(0),
			r.RothConversion.StringFixed(0),
			r.NetIncome.StringFixed(0),
			rowFlags(r),
		)
	}
	return t.String()
}

func rowFlags(r domain.YearRow) string {
	var flags []string
	if r.RMDEnforced {
		flags = append(flags, "RMD")
	}
	if r.IRMAASurcharge {
		flags = append(flags, fmt.Sprintf("IRMAA%d", r.IRMAATier))
	}
	if len(r.Warnings) > 0 {
		flags = append(flags, "!")
	}
	return strings.Join(flags, " ")
}

func sumValues(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
