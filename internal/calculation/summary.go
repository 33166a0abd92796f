package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

const centPlaces = 2

func roundMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v.RoundBank(centPlaces)
	}
	return out
}

// RoundRow returns row with every money value rounded to cents using
// banker's rounding. Maps are copied. Net income is recomputed from the
// rounded amounts.
func RoundRow(row domain.YearRow) domain.YearRow {
	r := func(d decimal.Decimal) decimal.Decimal { return d.RoundBank(centPlaces) }

	row.Gross = roundMap(row.Gross)
	row.TotalGrossIncome = r(row.TotalGrossIncome)
	row.SSGross = r(row.SSGross)
	row.SSTaxable = r(row.SSTaxable)
	row.TaxExemptInterest = r(row.TaxExemptInterest)
	row.AGI = r(row.AGI)
	row.MAGI = r(row.MAGI)
	row.IRMAAMAGI = r(row.IRMAAMAGI)
	row.Deduction = r(row.Deduction)
	row.TaxableIncome = r(row.TaxableIncome)
	row.FederalTax = r(row.FederalTax)
	row.StateTax = r(row.StateTax)
	row.MedicarePartB = r(row.MedicarePartB)
	row.MedicarePartD = r(row.MedicarePartD)
	row.IRMAAPartB = r(row.IRMAAPartB)
	row.IRMAAPartD = r(row.IRMAAPartD)
	// the total is the sum of its rounded parts so rows stay additive
	row.TotalMedicare = row.MedicarePartB.Add(row.MedicarePartD).Add(row.IRMAAPartB).Add(row.IRMAAPartD)
	row.IRMAAFirstThreshold = r(row.IRMAAFirstThreshold)
	row.IRMAANextThreshold = r(row.IRMAANextThreshold)
	row.RMDs = roundMap(row.RMDs)
	row.TotalRMD = r(row.TotalRMD)
	row.Conversions = roundMap(row.Conversions)
	row.RothConversion = r(row.RothConversion)
	row.RothWithdrawal = r(row.RothWithdrawal)
	row.EndingBalances = roundMap(row.EndingBalances)
	row.NetIncome = row.TotalGrossIncome.Sub(row.FederalTax).Sub(row.StateTax).Sub(row.TotalMedicare)
	return row
}

// Summarize folds emitted rows into lifetime totals.
func Summarize(rows []domain.YearRow) domain.Summary {
	s := domain.Summary{FinalBalances: map[string]decimal.Decimal{}}
	if len(rows) == 0 {
		return s
	}
	s.FirstYear = rows[0].Year
	s.LastYear = rows[len(rows)-1].Year

	topRate := decimal.NewFromInt(-1)
	for _, row := range rows {
		s.LifetimeTax = s.LifetimeTax.Add(row.FederalTax)
		s.LifetimeStateTax = s.LifetimeStateTax.Add(row.StateTax)
		s.LifetimeMedicare = s.LifetimeMedicare.Add(row.TotalMedicare)
		s.TotalIRMAA = s.TotalIRMAA.Add(row.TotalIRMAA())
		s.TotalRMDs = s.TotalRMDs.Add(row.TotalRMD)
		s.TotalConversions = s.TotalConversions.Add(row.RothConversion)
		s.CumulativeNetIncome = s.CumulativeNetIncome.Add(row.NetIncome)
		if row.IRMAASurcharge {
			s.IRMAAEverReached = true
		}
		if rate, ok := bracketRate(row.TaxBracket); ok && rate.GreaterThan(topRate) && row.TaxableIncome.IsPositive() {
			topRate = rate
			s.TopBracketReached = row.TaxBracket
		}
	}
	for k, v := range rows[len(rows)-1].EndingBalances {
		s.FinalBalances[k] = v
	}
	return s
}

// bracketRate parses a label such as "22%".
func bracketRate(label string) (decimal.Decimal, bool) {
	if len(label) < 2 || label[len(label)-1] != '%' {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(label[:len(label)-1])
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}
