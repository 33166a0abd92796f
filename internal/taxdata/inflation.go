package taxdata

import (
	"github.com/shopspring/decimal"
)

// CompoundFactor returns the product of (1 + rate) over rates.
func CompoundFactor(rates []decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, r := range rates {
		factor = factor.Mul(decimal.NewFromInt(1).Add(r))
	}
	return factor
}

// ConstantFactor returns (1 + rate)^(year - baseYear), or 1 when year is not
// after baseYear.
func ConstantFactor(rate decimal.Decimal, baseYear, year int) decimal.Decimal {
	if year <= baseYear || rate.IsZero() {
		return decimal.NewFromInt(1)
	}
	rates := make([]decimal.Decimal, year-baseYear)
	for i := range rates {
		rates[i] = rate
	}
	return CompoundFactor(rates)
}

// InflateIRMAATiers scales every threshold by factor. Surcharge amounts are
// left alone; the engine inflates premiums separately. The input slice is not
// modified.
func InflateIRMAATiers(tiers []IRMAATier, factor decimal.Decimal) []IRMAATier {
	out := make([]IRMAATier, len(tiers))
	for i, t := range tiers {
		out[i] = IRMAATier{Threshold: t.Threshold.Mul(factor), PartB: t.PartB, PartD: t.PartD}
	}
	return out
}

// InflateDeduction scales the deduction and its per-flag addition by factor.
func InflateDeduction(d Deduction, factor decimal.Decimal) Deduction {
	return Deduction{Amount: d.Amount.Mul(factor), Additional: d.Additional.Mul(factor)}
}
