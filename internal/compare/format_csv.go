package compare

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// Formatter renders a comparison result.
type Formatter interface {
	Format(result *domain.ComparisonResult) (string, error)
}

var metricLabels = map[domain.MetricKey]string{
	domain.MetricLifetimeTax:         "Lifetime Federal Tax",
	domain.MetricLifetimeMedicare:    "Lifetime Medicare",
	domain.MetricTotalIRMAA:          "Total IRMAA",
	domain.MetricTotalRMDs:           "Total RMDs",
	domain.MetricCumulativeNetIncome: "Cumulative Net Income",
	domain.MetricFinalRoth:           "Final Roth Balance",
	domain.MetricInheritanceTax:      "Inheritance Tax",
	domain.MetricTotalExpenses:       "Total Expenses",
}

// MetricLabel returns the display name of key.
func MetricLabel(key domain.MetricKey) string {
	if label, ok := metricLabels[key]; ok {
		return label
	}
	return string(key)
}

// CSVFormatter formats comparison metrics as CSV
type CSVFormatter struct{}

// Format writes one line per metric in presentation order.
func (cf *CSVFormatter) Format(result *domain.ComparisonResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{"Metric", "Key", "Baseline", "Conversion", "Difference", "Percent Change"}
	if err := writer.Write(header); err != nil {
		return "", err
	}
	for _, key := range domain.MetricOrder {
		m := result.Metrics[key]
		if err := writer.Write([]string{
			MetricLabel(key),
			string(key),
			m.Baseline.StringFixed(2),
			m.Conversion.StringFixed(2),
			m.Difference.StringFixed(2),
			m.PercentChange.StringFixed(2),
		}); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatSeries writes the yearly asset balances of both runs, one column per
// run and source.
func (cf *CSVFormatter) FormatSeries(series domain.AssetSeries) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	baseNames := sortedSeriesNames(series.Baseline)
	convNames := sortedSeriesNames(series.Conversion)
	header := []string{"Year"}
	for _, name := range baseNames {
		header = append(header, "Baseline: "+name)
	}
	for _, name := range convNames {
		header = append(header, "Conversion: "+name)
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i, year := range series.Years {
		record := []string{formatInt(year)}
		for _, name := range baseNames {
			record = append(record, valueAt(series.Baseline[name], i))
		}
		for _, name := range convNames {
			record = append(record, valueAt(series.Conversion[name], i))
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
