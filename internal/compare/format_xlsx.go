package compare

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/output"
)

// XLSXFormatter writes a comparison workbook: the metrics, the conversion
// schedule, both yearly projections and the asset series.
type XLSXFormatter struct{}

// Build assembles the workbook in memory.
func (xf *XLSXFormatter) Build(result *domain.ComparisonResult) (*xlsx.File, error) {
	f := xlsx.NewFile()

	metrics, err := f.AddSheet("Metrics")
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add metrics sheet")
	}
	output.AddHeaderRow(metrics, "Metric", "Baseline", "Conversion", "Difference", "Percent Change")
	for _, key := range domain.MetricOrder {
		m := result.Metrics[key]
		row := metrics.AddRow()
		row.AddCell().SetString(MetricLabel(key))
		output.AddMoneyCell(row, m.Baseline)
		output.AddMoneyCell(row, m.Conversion)
		output.AddMoneyCell(row, m.Difference)
		output.AddMoneyCell(row, m.PercentChange.Round(2))
	}

	schedule, err := f.AddSheet("Schedule")
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add schedule sheet")
	}
	output.AddHeaderRow(schedule, "Year", "Source", "Amount")
	for _, c := range result.Schedule {
		row := schedule.AddRow()
		row.AddCell().SetInt(c.Year)
		row.AddCell().SetString(c.Source)
		output.AddMoneyCell(row, c.Amount)
	}

	if result.Baseline != nil {
		if err := output.AddRunSheet(f, "Baseline", result.Baseline); err != nil {
			return nil, err
		}
	}
	if result.Conversion != nil {
		if err := output.AddRunSheet(f, "Conversion", result.Conversion); err != nil {
			return nil, err
		}
	}

	assets, err := f.AddSheet("Assets")
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add assets sheet")
	}
	baseNames := sortedSeriesNames(result.Series.Baseline)
	convNames := sortedSeriesNames(result.Series.Conversion)
	header := []string{"Year"}
	for _, name := range baseNames {
		header = append(header, "Baseline: "+name)
	}
	for _, name := range convNames {
		header = append(header, "Conversion: "+name)
	}
	output.AddHeaderRow(assets, header...)
	for i, year := range result.Series.Years {
		row := assets.AddRow()
		row.AddCell().SetInt(year)
		for _, name := range baseNames {
			if values := result.Series.Baseline[name]; i < len(values) {
				output.AddMoneyCell(row, values[i])
			}
		}
		for _, name := range convNames {
			if values := result.Series.Conversion[name]; i < len(values) {
				output.AddMoneyCell(row, values[i])
			}
		}
	}
	return f, nil
}

// Write streams the workbook to w.
func (xf *XLSXFormatter) Write(result *domain.ComparisonResult, w io.Writer) error {
	f, err := xf.Build(result)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write workbook")
}

// Save writes the workbook to path.
func (xf *XLSXFormatter) Save(result *domain.ComparisonResult, path string) error {
	f, err := xf.Build(result)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}
