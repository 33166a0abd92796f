package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

const (
	earlyTierMonths       = 36
	maxDelayedClaimingAge = 70
)

var (
	delayedCreditRate = decimal.NewFromFloat(0.08) // per year
	decimalOneHundred = decimal.NewFromInt(100)
	// early reductions are counted in 1/3600ths: 5/9 of 1% is 20/3600 and
	// 5/12 of 1% is 15/3600
	earlyReductionDenominator = decimal.NewFromInt(3600)
)

// ClaimingFactor scales the full-retirement-age benefit for claiming at
// claimAge. Early claiming loses 5/9 of 1% for each of the first 36 months
// and 5/12 of 1% for each month beyond; delayed claiming earns 8% per year
// up to age 70.
func ClaimingFactor(claimAge, fullRetirementAge int) decimal.Decimal {
	switch {
	case claimAge == fullRetirementAge:
		return decimalOne
	case claimAge < fullRetirementAge:
		monthsEarly := (fullRetirementAge - claimAge) * 12
		firstTier := monthsEarly
		if firstTier > earlyTierMonths {
			firstTier = earlyTierMonths
		}
		units := 20*firstTier + 15*(monthsEarly-firstTier)
		return decimalOne.Sub(decimal.NewFromInt(int64(units)).Div(earlyReductionDenominator))
	default:
		delayed := claimAge
		if delayed > maxDelayedClaimingAge {
			delayed = maxDelayedClaimingAge
		}
		return decimalOne.Add(delayedCreditRate.Mul(decimal.NewFromInt(int64(delayed - fullRetirementAge))))
	}
}

// SocialSecurityCalculator projects annual benefits for Social Security
// sources under the scenario's claiming and adjustment options.
type SocialSecurityCalculator struct {
	FullRetirementAge int
	Adjustment        *domain.SSAdjustment
	Reduction         *domain.Reduction2030
}

// NewSocialSecurityCalculator creates a calculator from scenario options.
func NewSocialSecurityCalculator(fra int, scenario *domain.Scenario) *SocialSecurityCalculator {
	return &SocialSecurityCalculator{
		FullRetirementAge: fra,
		Adjustment:        scenario.SSAdjustment,
		Reduction:         scenario.Reduction2030,
	}
}

// ClaimAge is the age benefits start for src.
func ClaimAge(src *domain.IncomeSource) int {
	if src.ClaimingAge > 0 {
		return src.ClaimingAge
	}
	return src.WithdrawalStartAge
}

// AnnualBenefit returns the gross benefit src pays in year at age. The FRA
// amount is scaled by the claiming factor, compounded by COLA from the claim
// year, and then adjusted. Adjustments take effect in their year and persist
// for every later year. A zero end age means benefits run for life.
func (ssc *SocialSecurityCalculator) AnnualBenefit(src *domain.IncomeSource, age, year int) decimal.Decimal {
	claimAge := ClaimAge(src)
	if age < claimAge || (src.WithdrawalEndAge > 0 && age > src.WithdrawalEndAge) {
		return decimal.Zero
	}
	benefit := src.MonthlyAmount.Mul(decimalTwelve).Mul(ClaimingFactor(claimAge, ssc.FullRetirementAge))
	if years := age - claimAge; years > 0 && !src.COLA.IsZero() {
		benefit = benefit.Mul(onePlus(src.COLA).Pow(decimal.NewFromInt(int64(years))))
	}

	if r := ssc.Reduction; r != nil && r.Enabled && year >= domain.Reduction2030Year {
		benefit = benefit.Mul(decimalOne.Sub(r.Percent.Div(decimalOneHundred)))
	}
	if adj := ssc.Adjustment; adj != nil && year >= adj.Year {
		benefit = applyAdjustment(benefit, adj)
	}
	if benefit.IsNegative() {
		return decimal.Zero
	}
	return benefit
}

func applyAdjustment(benefit decimal.Decimal, adj *domain.SSAdjustment) decimal.Decimal {
	var delta decimal.Decimal
	if adj.Type == domain.AdjustPercent {
		delta = benefit.Mul(adj.Amount.Div(decimalOneHundred))
	} else {
		delta = adj.Amount
	}
	if adj.Direction == domain.AdjustDecrease {
		return benefit.Sub(delta)
	}
	return benefit.Add(delta)
}
