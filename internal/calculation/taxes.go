package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

// TAX CALCULATION NOTES:
//
// 1. Federal brackets, standard deductions and SS thresholds come from the
//    per-year tables; a year with no table uses the latest earlier one.
//
// 2. Brackets are half-open [Min, Max). Income exactly on an edge is taxed
//    entirely in the lower bracket and reports the lower label.
//
// 3. State tax is a flat rate on AGI less the (state or federal) deduction,
//    with retirement income and Social Security removed per the state rule.

var (
	decimalHalf       = decimal.NewFromFloat(0.5)
	decimalEightyFive = decimal.NewFromFloat(0.85)
)

// FederalTaxCalculator walks an ordered bracket list.
type FederalTaxCalculator struct {
	Brackets []taxdata.Bracket
}

// NewFederalTaxCalculator creates a calculator over brackets ordered by Min.
func NewFederalTaxCalculator(brackets []taxdata.Bracket) *FederalTaxCalculator {
	return &FederalTaxCalculator{Brackets: brackets}
}

// CalculateFederalTax returns the tax on taxableIncome and the label of the
// top bracket entered.
func (ftc *FederalTaxCalculator) CalculateFederalTax(taxableIncome decimal.Decimal) (decimal.Decimal, string) {
	if len(ftc.Brackets) == 0 {
		return decimal.Zero, ""
	}
	label := ftc.Brackets[0].Label()
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, label
	}

	totalTax := decimal.Zero
	for _, bracket := range ftc.Brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		top := taxableIncome
		if !bracket.Unbounded {
			top = decimal.Min(taxableIncome, bracket.Max)
		}
		incomeInBracket := top.Sub(bracket.Min)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
			label = bracket.Label()
		}
		if bracket.Unbounded || taxableIncome.LessThanOrEqual(bracket.Max) {
			break
		}
	}
	return totalTax, label
}

// TaxableSocialSecurity returns the portion of ssGross that enters federal
// taxable income. Provisional income is AGI excluding Social Security plus
// tax-exempt interest plus half of the benefit.
func TaxableSocialSecurity(ssGross, agiExcludingSS, taxExemptInterest decimal.Decimal, thresholds taxdata.SSThresholds) decimal.Decimal {
	if ssGross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	provisional := agiExcludingSS.Add(taxExemptInterest).Add(ssGross.Mul(decimalHalf))
	base, additional := thresholds.Base, thresholds.Additional

	switch {
	case provisional.LessThanOrEqual(base):
		return decimal.Zero
	case provisional.LessThanOrEqual(additional):
		return decimal.Min(ssGross.Mul(decimalHalf), provisional.Sub(base).Mul(decimalHalf))
	default:
		firstTier := decimal.Min(ssGross.Mul(decimalHalf), additional.Sub(base).Mul(decimalHalf))
		taxable := provisional.Sub(additional).Mul(decimalEightyFive).Add(firstTier)
		return decimal.Min(ssGross.Mul(decimalEightyFive), taxable)
	}
}

// StateTaxInput is the slice of a year's income the state rule needs.
type StateTaxInput struct {
	// AGI is the federal adjusted gross income, including taxable Social Security.
	AGI decimal.Decimal
	// FederalDeduction is the deduction applied federally.
	FederalDeduction decimal.Decimal
	// StateDeduction replaces FederalDeduction when set.
	StateDeduction *decimal.Decimal
	// RetirementIncome is taxable pension, IRA, 401k and annuity gross in AGI.
	RetirementIncome decimal.Decimal
	// SSTaxable is the federally taxable Social Security in AGI.
	SSTaxable decimal.Decimal
}

// StateTaxCalculator applies a flat state rule.
type StateTaxCalculator struct {
	Rule taxdata.StateRule
}

// NewStateTaxCalculator creates a calculator for rule.
func NewStateTaxCalculator(rule taxdata.StateRule) *StateTaxCalculator {
	return &StateTaxCalculator{Rule: rule}
}

// CalculateStateTax returns the state tax for the year. Retirement-exempt
// states drop retirement gross and Social Security from the base; otherwise
// Social Security stays in only when the state taxes it.
func (stc *StateTaxCalculator) CalculateStateTax(in StateTaxInput) decimal.Decimal {
	if stc.Rule.Rate.IsZero() {
		return decimal.Zero
	}
	base := in.AGI
	if stc.Rule.RetirementExempt {
		base = base.Sub(in.RetirementIncome).Sub(in.SSTaxable)
	} else if !stc.Rule.SSTaxed {
		base = base.Sub(in.SSTaxable)
	}
	deduction := in.FederalDeduction
	if in.StateDeduction != nil {
		deduction = *in.StateDeduction
	}
	base = base.Sub(deduction)
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return base.Mul(stc.Rule.Rate)
}

// InheritanceTax estimates estate tax on the taxable estate above exemption.
func InheritanceTax(estate, exemption, rate decimal.Decimal) decimal.Decimal {
	excess := estate.Sub(exemption)
	if excess.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return excess.Mul(rate)
}
