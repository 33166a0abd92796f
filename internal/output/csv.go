package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// CSVFormatter writes one record per projected year. Per-source values
// follow the fixed columns as gross, rmd, conversion and balance groups.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.RunResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	groups := []struct {
		prefix string
		pick   func(domain.YearRow) map[string]decimal.Decimal
	}{
		{"gross", func(r domain.YearRow) map[string]decimal.Decimal { return r.Gross }},
		{"rmd", func(r domain.YearRow) map[string]decimal.Decimal { return r.RMDs }},
		{"conversion", func(r domain.YearRow) map[string]decimal.Decimal { return r.Conversions }},
		{"balance", func(r domain.YearRow) map[string]decimal.Decimal { return r.EndingBalances }},
	}
	columns := make([][]string, len(groups))

	header := []string{"year", "primary_age", "spouse_age", "filing_status", "total_gross_income", "ss_gross",
		"ss_taxable", "tax_exempt_interest", "agi", "magi", "irmaa_magi", "deduction", "taxable_income",
		"federal_tax", "tax_bracket", "state_tax", "medicare_part_b", "medicare_part_d", "irmaa_part_b",
		"irmaa_part_d", "total_medicare", "irmaa_tier", "total_rmd", "roth_conversion", "roth_withdrawal",
		"net_income", "irmaa_surcharge", "rmd_enforced"}
	for i, g := range groups {
		columns[i] = sourceColumns(result, g.pick)
		for _, key := range columns[i] {
			header = append(header, g.prefix+":"+key)
		}
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range result.Rows {
		record := []string{
			fmt.Sprintf("%d", r.Year),
			ageString(r.PrimaryAge),
			ageString(r.SpouseAge),
			string(r.FilingStatus),
			r.TotalGrossIncome.StringFixed(2),
			r.SSGross.StringFixed(2),
			r.SSTaxable.StringFixed(2),
			r.TaxExemptInterest.StringFixed(2),
			r.AGI.StringFixed(2),
			r.MAGI.StringFixed(2),
			r.IRMAAMAGI.StringFixed(2),
			r.Deduction.StringFixed(2),
			r.TaxableIncome.StringFixed(2),
			r.FederalTax.StringFixed(2),
			r.TaxBracket,
			r.StateTax.StringFixed(2),
			r.MedicarePartB.StringFixed(2),
			r.MedicarePartD.StringFixed(2),
			r.IRMAAPartB.StringFixed(2),
			r.IRMAAPartD.StringFixed(2),
			r.TotalMedicare.StringFixed(2),
			fmt.Sprintf("%d", r.IRMAATier),
			r.TotalRMD.StringFixed(2),
			r.RothConversion.StringFixed(2),
			r.RothWithdrawal.StringFixed(2),
			r.NetIncome.StringFixed(2),
			fmt.Sprintf("%t", r.IRMAASurcharge),
			fmt.Sprintf("%t", r.RMDEnforced),
		}
		for i, g := range groups {
			values := g.pick(r)
			for _, key := range columns[i] {
				record = append(record, values[key].StringFixed(2))
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
