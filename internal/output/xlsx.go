package output

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// XLSXFormatter writes a workbook with the yearly rows and the summary.
type XLSXFormatter struct{}

func (x XLSXFormatter) Name() string { return "xlsx" }

func (x XLSXFormatter) Format(result *domain.RunResult) ([]byte, error) {
	f := xlsx.NewFile()
	if err := AddRunSheet(f, "Projection", result); err != nil {
		return nil, err
	}
	if err := addSummarySheet(f, result.Summary); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "xlsx: write workbook")
	}
	return buf.Bytes(), nil
}

// AddHeaderRow appends a row of bold labels.
func AddHeaderRow(sheet *xlsx.Sheet, labels ...string) {
	row := sheet.AddRow()
	style := xlsx.NewStyle()
	style.Font.Bold = true
	style.ApplyFont = true
	for _, label := range labels {
		cell := row.AddCell()
		cell.SetString(label)
		cell.SetStyle(style)
	}
}

// AddMoneyCell appends a numeric cell formatted to cents.
func AddMoneyCell(row *xlsx.Row, amount decimal.Decimal) {
	row.AddCell().SetFloatWithFormat(amount.InexactFloat64(), "#,##0.00")
}

// AddRunSheet appends a sheet named name with one row per projected year.
func AddRunSheet(f *xlsx.File, name string, result *domain.RunResult) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %s", name)
	}

	balances := sourceColumns(result, func(r domain.YearRow) map[string]decimal.Decimal { return r.EndingBalances })
	labels := []string{"Year", "Primary Age", "Spouse Age", "Filing Status", "Gross Income", "SS Taxable", "AGI",
		"MAGI", "Taxable Income", "Federal Tax", "Bracket", "State Tax", "Medicare", "IRMAA", "RMD",
		"Roth Conversion", "Roth Withdrawal", "Net Income"}
	for _, key := range balances {
		labels = append(labels, "Balance: "+key)
	}
	AddHeaderRow(sheet, labels...)

	for _, r := range result.Rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(ageString(r.PrimaryAge))
		row.AddCell().SetString(ageString(r.SpouseAge))
		row.AddCell().SetString(r.FilingStatus.TableLabel())
		AddMoneyCell(row, r.TotalGrossIncome)
		AddMoneyCell(row, r.SSTaxable)
		AddMoneyCell(row, r.AGI)
		AddMoneyCell(row, r.MAGI)
		AddMoneyCell(row, r.TaxableIncome)
		AddMoneyCell(row, r.FederalTax)
		row.AddCell().SetString(r.TaxBracket)
		AddMoneyCell(row, r.StateTax)
		AddMoneyCell(row, r.TotalMedicare)
		AddMoneyCell(row, r.TotalIRMAA())
		AddMoneyCell(row, r.TotalRMD)
		AddMoneyCell(row, r.RothConversion)
		AddMoneyCell(row, r.RothWithdrawal)
		AddMoneyCell(row, r.NetIncome)
		for _, key := range balances {
			AddMoneyCell(row, r.EndingBalances[key])
		}
	}
	return nil
}

func addSummarySheet(f *xlsx.File, s domain.Summary) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	AddHeaderRow(sheet, "Metric", "Value")
	for _, item := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Lifetime Federal Tax", s.LifetimeTax},
		{"Lifetime State Tax", s.LifetimeStateTax},
		{"Lifetime Medicare", s.LifetimeMedicare},
		{"Total IRMAA", s.TotalIRMAA},
		{"Total RMDs", s.TotalRMDs},
		{"Total Conversions", s.TotalConversions},
		{"Cumulative Net Income", s.CumulativeNetIncome},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(item.label)
		AddMoneyCell(row, item.value)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("Top Bracket")
	row.AddCell().SetString(s.TopBracketReached)
	for _, key := range domain.SortedKeys(s.FinalBalances) {
		row := sheet.AddRow()
		row.AddCell().SetString("Final Balance: " + key)
		AddMoneyCell(row, s.FinalBalances[key])
	}
	return nil
}
