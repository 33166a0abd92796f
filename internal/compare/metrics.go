package compare

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// EstateTerms are the inputs of the inheritance estimate.
type EstateTerms struct {
	Exemption decimal.Decimal
	Rate      decimal.Decimal
}

// MetricsCalculator extracts lifetime metrics from a run.
type MetricsCalculator struct {
	Estate EstateTerms
}

// NewMetricsCalculator creates a metrics calculator
func NewMetricsCalculator(estate EstateTerms) *MetricsCalculator {
	return &MetricsCalculator{Estate: estate}
}

// CalculateMetrics returns every comparison metric for one run. Medicare is
// the base premiums only; surcharges are reported as total_irmaa.
func (mc *MetricsCalculator) CalculateMetrics(run *domain.RunResult) map[domain.MetricKey]decimal.Decimal {
	s := run.Summary
	roth, estate := splitFinalBalances(run)
	medicare := s.LifetimeMedicare.Sub(s.TotalIRMAA)
	inheritance := calculation.InheritanceTax(estate, mc.Estate.Exemption, mc.Estate.Rate)

	return map[domain.MetricKey]decimal.Decimal{
		domain.MetricLifetimeTax:         s.LifetimeTax,
		domain.MetricLifetimeMedicare:    medicare,
		domain.MetricTotalIRMAA:          s.TotalIRMAA,
		domain.MetricTotalRMDs:           s.TotalRMDs,
		domain.MetricCumulativeNetIncome: s.CumulativeNetIncome,
		domain.MetricFinalRoth:           roth,
		domain.MetricInheritanceTax:      inheritance,
		domain.MetricTotalExpenses:       s.LifetimeTax.Add(medicare).Add(s.TotalIRMAA).Add(inheritance),
	}
}

// splitFinalBalances sums the last row's ending balances into Roth and
// taxable-estate totals.
func splitFinalBalances(run *domain.RunResult) (roth, estate decimal.Decimal) {
	if len(run.Rows) == 0 {
		return decimal.Zero, decimal.Zero
	}
	last := run.Rows[len(run.Rows)-1]
	for key, balance := range last.EndingBalances {
		if info, ok := run.Source(key); ok && info.Type.IsRoth() {
			roth = roth.Add(balance)
			continue
		}
		estate = estate.Add(balance)
	}
	return roth, estate
}

// CompareMetrics pairs baseline and conversion values for every metric.
func CompareMetrics(baseline, conversion map[domain.MetricKey]decimal.Decimal) map[domain.MetricKey]domain.MetricComparison {
	out := make(map[domain.MetricKey]domain.MetricComparison, len(domain.MetricOrder))
	for _, key := range domain.MetricOrder {
		b, c := baseline[key], conversion[key]
		out[key] = domain.MetricComparison{
			Baseline:      b,
			Conversion:    c,
			Difference:    c.Sub(b),
			PercentChange: PercentChange(b, c),
		}
	}
	return out
}

// PercentChange is (conversion - baseline) / |baseline| * 100. A zero
// baseline yields 0 when nothing changed and 100 signed like the difference
// otherwise.
func PercentChange(baseline, conversion decimal.Decimal) decimal.Decimal {
	diff := conversion.Sub(baseline)
	if baseline.IsZero() {
		switch diff.Sign() {
		case 0:
			return decimal.Zero
		case 1:
			return oneHundred
		default:
			return oneHundred.Neg()
		}
	}
	return diff.Mul(oneHundred).DivRound(baseline.Abs(), 16)
}

// BuildAssetSeries collects each source's ending balance for every year of
// both runs, keyed by source name.
func BuildAssetSeries(baseline, conversion *domain.RunResult) domain.AssetSeries {
	series := domain.AssetSeries{
		Years:      make([]int, 0, len(baseline.Rows)),
		Baseline:   balanceSeries(baseline),
		Conversion: balanceSeries(conversion),
	}
	for _, row := range baseline.Rows {
		series.Years = append(series.Years, row.Year)
	}
	return series
}

func balanceSeries(run *domain.RunResult) map[string][]decimal.Decimal {
	out := make(map[string][]decimal.Decimal)
	labels := seriesLabels(run.Sources)
	for _, info := range run.Sources {
		label := labels[info.Key]
		values := make([]decimal.Decimal, len(run.Rows))
		tracked := false
		for i, row := range run.Rows {
			if v, ok := row.EndingBalances[info.Key]; ok {
				values[i] = v
				tracked = true
			}
		}
		if tracked {
			out[label] = values
		}
	}
	return out
}

// seriesLabels names each source by its display name, falling back to the
// key when the name is empty or shared.
func seriesLabels(sources []domain.SourceInfo) map[string]string {
	counts := make(map[string]int, len(sources))
	for _, s := range sources {
		counts[s.Name]++
	}
	labels := make(map[string]string, len(sources))
	for _, s := range sources {
		if s.Name == "" || counts[s.Name] > 1 {
			labels[s.Key] = s.Key
			continue
		}
		labels[s.Key] = s.Name
	}
	return labels
}

// ConversionSchedule lists the conversions actually made, by year and source.
func ConversionSchedule(run *domain.RunResult) []domain.ConversionYear {
	schedule := []domain.ConversionYear{}
	for _, row := range run.Rows {
		for _, key := range domain.SortedKeys(row.Conversions) {
			schedule = append(schedule, domain.ConversionYear{Year: row.Year, Source: key, Amount: row.Conversions[key]})
		}
	}
	return schedule
}

// GenerateRecommendations summarizes the trade-off in plain sentences.
func GenerateRecommendations(result *domain.ComparisonResult) []string {
	recommendations := []string{}
	m := result.Metrics
	if len(result.Schedule) == 0 {
		return append(recommendations, "No conversions were made; both projections are identical")
	}

	expenses := m[domain.MetricTotalExpenses].Difference
	switch {
	case expenses.IsNegative():
		recommendations = append(recommendations,
			fmt.Sprintf("Converting lowers total expenses by $%s", expenses.Abs().StringFixed(0)))
	case expenses.IsPositive():
		recommendations = append(recommendations,
			fmt.Sprintf("Converting raises total expenses by $%s", expenses.StringFixed(0)))
	}

	if rmds := m[domain.MetricTotalRMDs].Difference; rmds.IsNegative() {
		recommendations = append(recommendations,
			fmt.Sprintf("Required distributions fall by $%s over the projection", rmds.Abs().StringFixed(0)))
	}
	if irmaa := m[domain.MetricTotalIRMAA].Difference; irmaa.IsPositive() {
		recommendations = append(recommendations,
			fmt.Sprintf("Conversions add $%s of IRMAA surcharges; consider smaller annual amounts", irmaa.StringFixed(0)))
	}
	if roth := m[domain.MetricFinalRoth].Conversion; roth.IsPositive() {
		recommendations = append(recommendations,
			fmt.Sprintf("The Roth account ends at $%s, passing to heirs tax free", roth.StringFixed(0)))
	}
	return recommendations
}
