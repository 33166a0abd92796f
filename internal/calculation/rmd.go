package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

// RMDCalculator computes required minimum distributions from the Uniform
// Lifetime Table.
type RMDCalculator struct {
	StartAge int
	Table    taxdata.RMDTable
}

// NewRMDCalculator creates a calculator enforcing distributions from startAge.
func NewRMDCalculator(startAge int, table taxdata.RMDTable) *RMDCalculator {
	return &RMDCalculator{StartAge: startAge, Table: table}
}

// IsRMDAge reports whether age is subject to a required distribution.
func (rc *RMDCalculator) IsRMDAge(age int) bool {
	return age >= rc.StartAge
}

// CalculateRMD returns priorBalance divided by the distribution period for
// age, or zero when age is below the start age or the balance is empty.
func (rc *RMDCalculator) CalculateRMD(priorBalance decimal.Decimal, age int) decimal.Decimal {
	if !rc.IsRMDAge(age) || priorBalance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	period, ok := rc.Table.Period(age)
	if !ok {
		return decimal.Zero
	}
	return priorBalance.DivRound(period, 16)
}
