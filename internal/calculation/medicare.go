package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

// MedicareCalculator computes Part B and Part D premiums including IRMAA
// surcharges for one year.
type MedicareCalculator struct {
	Base  taxdata.MedicareBase
	Tiers []taxdata.IRMAATier
	// Scale multiplies the annual surcharges (irmaa_percent_scale).
	Scale decimal.Decimal
	// PartBFactor and PartDFactor inflate premiums and surcharges from the
	// table year to the projection year.
	PartBFactor decimal.Decimal
	PartDFactor decimal.Decimal
}

// MedicareCost is one eligible person's annual Medicare cost.
type MedicareCost struct {
	PartB      decimal.Decimal
	PartD      decimal.Decimal
	IRMAAPartB decimal.Decimal
	IRMAAPartD decimal.Decimal
}

// Total is base premiums plus surcharges.
func (mc MedicareCost) Total() decimal.Decimal {
	return mc.PartB.Add(mc.PartD).Add(mc.IRMAAPartB).Add(mc.IRMAAPartD)
}

// NewMedicareCalculator creates a calculator with no inflation and a scale of one.
func NewMedicareCalculator(base taxdata.MedicareBase, tiers []taxdata.IRMAATier) *MedicareCalculator {
	return &MedicareCalculator{
		Base:        base,
		Tiers:       tiers,
		Scale:       decimalOne,
		PartBFactor: decimalOne,
		PartDFactor: decimalOne,
	}
}

// IRMAATier returns the tier that applies to magi, or false when magi is at
// or below every threshold. Tiers are scanned from the highest threshold
// down; a MAGI exactly on a threshold stays in the tier below it.
func IRMAATier(magi decimal.Decimal, tiers []taxdata.IRMAATier) (taxdata.IRMAATier, bool) {
	for i := len(tiers) - 1; i >= 0; i-- {
		if magi.GreaterThan(tiers[i].Threshold) {
			return tiers[i], true
		}
	}
	return taxdata.IRMAATier{}, false
}

// CalculateIRMAASurcharge returns the annual Part B and Part D surcharges for
// magi, scaled and inflated.
func (mc *MedicareCalculator) CalculateIRMAASurcharge(magi decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	tier, ok := IRMAATier(magi, mc.Tiers)
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	partB := tier.PartB.Mul(decimalTwelve).Mul(mc.Scale).Mul(mc.PartBFactor)
	partD := tier.PartD.Mul(decimalTwelve).Mul(mc.Scale).Mul(mc.PartDFactor)
	return partB, partD
}

// CalculateAnnualCost returns one eligible person's annual cost: twelve months
// of inflated base premiums plus the IRMAA surcharges.
func (mc *MedicareCalculator) CalculateAnnualCost(magi decimal.Decimal) MedicareCost {
	irmaaB, irmaaD := mc.CalculateIRMAASurcharge(magi)
	return MedicareCost{
		PartB:      mc.Base.PartB.Mul(mc.PartBFactor).Mul(decimalTwelve),
		PartD:      mc.Base.PartD.Mul(mc.PartDFactor).Mul(decimalTwelve),
		IRMAAPartB: irmaaB,
		IRMAAPartD: irmaaD,
	}
}

// IsMedicareEligible reports whether age has reached the Medicare entry age.
func IsMedicareEligible(age, medicareAge int) bool {
	return age >= medicareAge
}
