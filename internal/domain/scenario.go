package domain

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultMortalityAge = 90
	DefaultMedicareAge  = 65
	// Reduction2030Year is the year the assumed legislative Social Security cut lands.
	Reduction2030Year = 2030
)

// AdjustmentDirection is the sign of a one-time Social Security adjustment.
type AdjustmentDirection string

const (
	AdjustIncrease AdjustmentDirection = "increase"
	AdjustDecrease AdjustmentDirection = "decrease"
)

// AdjustmentType selects how SSAdjustment.Amount is interpreted.
type AdjustmentType string

const (
	AdjustPercent AdjustmentType = "percent"
	AdjustDollar  AdjustmentType = "dollar"
)

// SSAdjustment is a year-indexed change to Social Security benefits. Percent
// amounts are whole percentages (23 means 23%); dollar amounts are annual.
type SSAdjustment struct {
	Direction AdjustmentDirection `yaml:"direction" json:"direction"`
	Type      AdjustmentType      `yaml:"type" json:"type"`
	Amount    decimal.Decimal     `yaml:"amount" json:"amount"`
	Year      int                 `yaml:"year" json:"year"`
}

// Reduction2030 models an assumed across-the-board benefit cut.
type Reduction2030 struct {
	Enabled bool            `yaml:"enabled" json:"enabled"`
	Percent decimal.Decimal `yaml:"percent" json:"percent"`
}

// DeductionPolicy selects standard or custom federal deductions.
type DeductionPolicy string

const (
	DeductionStandard DeductionPolicy = "standard"
	DeductionCustom   DeductionPolicy = "custom"
)

// RothConversionPlan converts AnnualAmount every year for Duration years
// beginning at StartYear.
type RothConversionPlan struct {
	StartYear    int             `yaml:"start_year" json:"start_year"`
	Duration     int             `yaml:"duration" json:"duration"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
}

// InWindow reports whether year is one of the planned conversion years.
func (p *RothConversionPlan) InWindow(year int) bool {
	if p == nil || p.Duration < 1 {
		return false
	}
	return year >= p.StartYear && year < p.StartYear+p.Duration
}

// EndYear is the last year of the window.
func (p *RothConversionPlan) EndYear() int {
	return p.StartYear + p.Duration - 1
}

// Scenario configures one projection.
type Scenario struct {
	Name                string `yaml:"name" json:"name"`
	RetirementAge       int    `yaml:"retirement_age" json:"retirement_age"`
	SpouseRetirementAge int    `yaml:"spouse_retirement_age" json:"spouse_retirement_age"`
	MedicareAge         int    `yaml:"medicare_age" json:"medicare_age"`
	MortalityAge        int    `yaml:"mortality_age" json:"mortality_age"`
	SpouseMortalityAge  int    `yaml:"spouse_mortality_age" json:"spouse_mortality_age"`
	CurrentYear         int    `yaml:"current_year" json:"current_year"`
	StartYear           int    `yaml:"start_year" json:"start_year"`

	PartBInflationRate     decimal.Decimal  `yaml:"part_b_inflation_rate" json:"part_b_inflation_rate"`
	PartDInflationRate     decimal.Decimal  `yaml:"part_d_inflation_rate" json:"part_d_inflation_rate"`
	IRMAAPercentScale      *decimal.Decimal `yaml:"irmaa_percent_scale" json:"irmaa_percent_scale"`
	ThresholdInflationRate decimal.Decimal  `yaml:"threshold_inflation_rate" json:"threshold_inflation_rate"`

	SSIncludeIRMAA *bool          `yaml:"ss_include_irmaa" json:"ss_include_irmaa"`
	SSAdjustment   *SSAdjustment  `yaml:"ss_adjustment,omitempty" json:"ss_adjustment,omitempty"`
	Reduction2030  *Reduction2030 `yaml:"reduction_2030,omitempty" json:"reduction_2030,omitempty"`

	DeductionPolicy          DeductionPolicy  `yaml:"deduction_policy" json:"deduction_policy"`
	ApplyStandardDeduction   *bool            `yaml:"apply_standard_deduction" json:"apply_standard_deduction"`
	FederalDeductionOverride *decimal.Decimal `yaml:"federal_deduction_override,omitempty" json:"federal_deduction_override,omitempty"`
	StateDeductionOverride   *decimal.Decimal `yaml:"state_deduction_override,omitempty" json:"state_deduction_override,omitempty"`
	TaxExemptInterest        decimal.Decimal  `yaml:"tax_exempt_interest" json:"tax_exempt_interest"`

	RothConversion          *RothConversionPlan        `yaml:"roth_conversion,omitempty" json:"roth_conversion,omitempty"`
	RothGrowthRate          decimal.Decimal            `yaml:"roth_growth_rate" json:"roth_growth_rate"`
	RothWithdrawalAmount    decimal.Decimal            `yaml:"roth_withdrawal_amount" json:"roth_withdrawal_amount"`
	RothWithdrawalStartYear int                        `yaml:"roth_withdrawal_start_year" json:"roth_withdrawal_start_year"`
	AssetConversionMap      map[string]decimal.Decimal `yaml:"asset_conversion_map,omitempty" json:"asset_conversion_map,omitempty"`

	EstateExemption *decimal.Decimal `yaml:"estate_exemption,omitempty" json:"estate_exemption,omitempty"`
}

// Clone returns a deep copy; maps and pointers are not shared with s.
func (s Scenario) Clone() Scenario {
	s.SSIncludeIRMAA = cloneBool(s.SSIncludeIRMAA)
	s.ApplyStandardDeduction = cloneBool(s.ApplyStandardDeduction)
	s.IRMAAPercentScale = cloneDecimal(s.IRMAAPercentScale)
	s.FederalDeductionOverride = cloneDecimal(s.FederalDeductionOverride)
	s.StateDeductionOverride = cloneDecimal(s.StateDeductionOverride)
	s.EstateExemption = cloneDecimal(s.EstateExemption)
	if s.SSAdjustment != nil {
		adj := *s.SSAdjustment
		s.SSAdjustment = &adj
	}
	if s.Reduction2030 != nil {
		r := *s.Reduction2030
		s.Reduction2030 = &r
	}
	if s.RothConversion != nil {
		plan := *s.RothConversion
		s.RothConversion = &plan
	}
	if s.AssetConversionMap != nil {
		m := make(map[string]decimal.Decimal, len(s.AssetConversionMap))
		for k, v := range s.AssetConversionMap {
			m[k] = v
		}
		s.AssetConversionMap = m
	}
	return s
}

// ClearRoth nulls every Roth conversion and withdrawal field.
func (s *Scenario) ClearRoth() {
	s.RothConversion = nil
	s.AssetConversionMap = nil
	s.RothWithdrawalAmount = decimal.Zero
	s.RothWithdrawalStartYear = 0
}

// IncludeSSInIRMAA defaults to true when unset.
func (s *Scenario) IncludeSSInIRMAA() bool {
	return s.SSIncludeIRMAA == nil || *s.SSIncludeIRMAA
}

// IRMAAScale is the surcharge multiplier, one when unset. An explicit zero
// switches surcharges off.
func (s *Scenario) IRMAAScale() decimal.Decimal {
	if s.IRMAAPercentScale == nil {
		return decimal.NewFromInt(1)
	}
	return *s.IRMAAPercentScale
}

// UsesStandardDeduction defaults to true when unset.
func (s *Scenario) UsesStandardDeduction() bool {
	return s.ApplyStandardDeduction == nil || *s.ApplyStandardDeduction
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (s *Scenario) ApplyDefaults() {
	if s.MedicareAge == 0 {
		s.MedicareAge = DefaultMedicareAge
	}
	if s.MortalityAge == 0 {
		s.MortalityAge = DefaultMortalityAge
	}
	if s.SpouseMortalityAge == 0 {
		s.SpouseMortalityAge = s.MortalityAge
	}
	if s.SpouseRetirementAge == 0 {
		s.SpouseRetirementAge = s.RetirementAge
	}
	if s.StartYear == 0 {
		s.StartYear = s.CurrentYear
	}
	if s.DeductionPolicy == "" {
		s.DeductionPolicy = DeductionStandard
	}
	if s.Reduction2030 != nil && s.Reduction2030.Enabled && s.Reduction2030.Percent.IsZero() {
		s.Reduction2030.Percent = decimal.NewFromInt(23)
	}
}

// Validate checks a defaulted scenario for contradictions.
func (s *Scenario) Validate() error {
	if s.CurrentYear <= 0 {
		return NewConfigError("scenario.current_year", "is required")
	}
	if s.StartYear < s.CurrentYear {
		return NewConfigError("scenario.start_year", "start year %d precedes current year %d", s.StartYear, s.CurrentYear)
	}
	if s.RetirementAge <= 0 {
		return NewConfigError("scenario.retirement_age", "is required")
	}
	if s.RetirementAge > s.MortalityAge {
		return NewConfigError("scenario.retirement_age", "retirement age %d exceeds mortality age %d",
			s.RetirementAge, s.MortalityAge)
	}
	if s.SpouseRetirementAge > s.SpouseMortalityAge {
		return NewConfigError("scenario.spouse_retirement_age", "retirement age %d exceeds mortality age %d",
			s.SpouseRetirementAge, s.SpouseMortalityAge)
	}
	if s.IRMAAPercentScale != nil && s.IRMAAPercentScale.IsNegative() {
		return NewConfigError("scenario.irmaa_percent_scale", "must not be negative")
	}
	if s.DeductionPolicy != DeductionStandard && s.DeductionPolicy != DeductionCustom {
		return NewConfigError("scenario.deduction_policy", "must be standard or custom, got %q", s.DeductionPolicy)
	}
	if s.DeductionPolicy == DeductionCustom && s.FederalDeductionOverride == nil {
		return NewConfigError("scenario.federal_deduction_override", "is required for a custom deduction policy")
	}
	if s.TaxExemptInterest.IsNegative() {
		return NewConfigError("scenario.tax_exempt_interest", "must not be negative")
	}
	if s.RothGrowthRate.LessThan(minRate) {
		return NewConfigError("scenario.roth_growth_rate", "must not be below -1")
	}
	if adj := s.SSAdjustment; adj != nil {
		if adj.Direction != AdjustIncrease && adj.Direction != AdjustDecrease {
			return NewConfigError("scenario.ss_adjustment.direction", "must be increase or decrease")
		}
		if adj.Type != AdjustPercent && adj.Type != AdjustDollar {
			return NewConfigError("scenario.ss_adjustment.type", "must be percent or dollar")
		}
		if adj.Year == 0 {
			return NewConfigError("scenario.ss_adjustment.year", "is required")
		}
	}
	if plan := s.RothConversion; plan != nil {
		if plan.Duration < 0 {
			return NewConfigError("scenario.roth_conversion.duration", "must not be negative")
		}
		if plan.Duration < 1 && plan.AnnualAmount.IsPositive() {
			return NewConfigError("scenario.roth_conversion.duration", "must be at least 1 when an annual amount is set")
		}
		if plan.AnnualAmount.IsNegative() {
			return NewConfigError("scenario.roth_conversion.annual_amount", "must not be negative")
		}
	}
	for id, amount := range s.AssetConversionMap {
		if amount.IsNegative() {
			return NewConfigError("scenario.asset_conversion_map["+id+"]", "must not be negative")
		}
	}
	return nil
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
