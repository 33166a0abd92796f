package domain

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// IncomeType discriminates income sources. The set is closed: ParseIncomeType
// rejects anything not listed here.
type IncomeType string

const (
	IncomeSocialSecurity    IncomeType = "social_security"
	IncomePension           IncomeType = "pension"
	IncomeWage              IncomeType = "wage"
	IncomeTraditional401k   IncomeType = "traditional_401k"
	IncomeTraditionalIRA    IncomeType = "traditional_ira"
	IncomeRothIRA           IncomeType = "roth_ira"
	IncomeRoth401k          IncomeType = "roth_401k"
	IncomeAnnuity           IncomeType = "annuity"
	IncomeLifeInsuranceLoan IncomeType = "life_insurance_loan"
	IncomeRental            IncomeType = "rental"
	IncomeOtherTaxable      IncomeType = "other_taxable"
	IncomeOtherTaxFree      IncomeType = "other_tax_free"
	IncomeSyntheticRoth     IncomeType = "synthetic_roth"
)

var knownIncomeTypes = map[IncomeType]struct{}{
	IncomeSocialSecurity:    {},
	IncomePension:           {},
	IncomeWage:              {},
	IncomeTraditional401k:   {},
	IncomeTraditionalIRA:    {},
	IncomeRothIRA:           {},
	IncomeRoth401k:          {},
	IncomeAnnuity:           {},
	IncomeLifeInsuranceLoan: {},
	IncomeRental:            {},
	IncomeOtherTaxable:      {},
	IncomeOtherTaxFree:      {},
	IncomeSyntheticRoth:     {},
}

// ParseIncomeType returns the IncomeType named by s.
func ParseIncomeType(s string) (IncomeType, error) {
	t := IncomeType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownIncomeTypes[t]; !ok {
		return "", eris.Wrapf(ErrConfig, "unknown income type %q", s)
	}
	return t, nil
}

// Valid reports whether t is a known income type.
func (t IncomeType) Valid() bool {
	_, ok := knownIncomeTypes[t]
	return ok
}

// IsTraditional reports tax-deferred accounts subject to RMDs.
func (t IncomeType) IsTraditional() bool {
	return t == IncomeTraditional401k || t == IncomeTraditionalIRA
}

// IsRoth reports accounts whose withdrawals are never taxed.
func (t IncomeType) IsRoth() bool {
	return t == IncomeRothIRA || t == IncomeRoth401k || t == IncomeSyntheticRoth
}

// HasBalance reports whether the type carries an account balance. Income
// streams such as Social Security, pensions, wages and rent do not.
func (t IncomeType) HasBalance() bool {
	switch t {
	case IncomeSocialSecurity, IncomePension, IncomeWage, IncomeRental:
		return false
	}
	return true
}

// IsRetirementIncome reports streams that a retirement-income-exempt state
// excludes from its taxable base.
func (t IncomeType) IsRetirementIncome() bool {
	switch t {
	case IncomeSocialSecurity, IncomePension, IncomeTraditional401k, IncomeTraditionalIRA, IncomeAnnuity:
		return true
	}
	return false
}

// IsTaxFree reports streams that never enter taxable income.
func (t IncomeType) IsTaxFree() bool {
	return t.IsRoth() || t == IncomeLifeInsuranceLoan || t == IncomeOtherTaxFree
}

// IncomeSource is one asset or income stream owned by a household member.
// Rates (rate of return, COLA, exclusion ratio, tax rate override) are
// decimal fractions.
type IncomeSource struct {
	ID                  string           `yaml:"id" json:"id"`
	Owner               Owner            `yaml:"owner" json:"owner"`
	Name                string           `yaml:"name" json:"name"`
	Type                IncomeType       `yaml:"income_type" json:"income_type"`
	CurrentBalance      decimal.Decimal  `yaml:"current_balance" json:"current_balance"`
	MonthlyContribution decimal.Decimal  `yaml:"monthly_contribution" json:"monthly_contribution"`
	MonthlyAmount       decimal.Decimal  `yaml:"monthly_amount" json:"monthly_amount"`
	WithdrawalStartAge  int              `yaml:"withdrawal_start_age" json:"withdrawal_start_age"`
	WithdrawalEndAge    int              `yaml:"withdrawal_end_age" json:"withdrawal_end_age"`
	RateOfReturn        decimal.Decimal  `yaml:"rate_of_return" json:"rate_of_return"`
	COLA                decimal.Decimal  `yaml:"cola" json:"cola"`
	ExclusionRatio      decimal.Decimal  `yaml:"exclusion_ratio" json:"exclusion_ratio"`
	TaxRateOverride     *decimal.Decimal `yaml:"tax_rate_override,omitempty" json:"tax_rate_override,omitempty"`
	MaxToConvert        decimal.Decimal  `yaml:"max_to_convert" json:"max_to_convert"`
	AgeEstablished      int              `yaml:"age_established" json:"age_established"`
	IsContributing      bool             `yaml:"is_contributing" json:"is_contributing"`
	EmployerMatch       decimal.Decimal  `yaml:"employer_match" json:"employer_match"`
	AgeLastContribution int              `yaml:"age_last_contribution" json:"age_last_contribution"`
	ClaimingAge         int              `yaml:"claiming_age" json:"claiming_age"`
}

// Key is the identifier used in row maps: the ID when set, otherwise the name.
func (s IncomeSource) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}

// Clone returns a deep copy; the optional override pointer is not shared.
func (s IncomeSource) Clone() IncomeSource {
	if s.TaxRateOverride != nil {
		rate := *s.TaxRateOverride
		s.TaxRateOverride = &rate
	}
	return s
}

// CloneSources deep-copies a slice of sources.
func CloneSources(in []IncomeSource) []IncomeSource {
	out := make([]IncomeSource, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// minRate is the lowest growth rate allowed: a total loss.
var minRate = decimal.NewFromInt(-1)

// Validate checks the per-source invariants.
func (s IncomeSource) Validate() error {
	field := "assets[" + s.Key() + "]"
	if s.Key() == "" {
		return NewConfigError("assets", "every source needs an id or a name")
	}
	if !s.Type.Valid() {
		return NewConfigError(field+".income_type", "unknown income type %q", s.Type)
	}
	if s.Owner != OwnerPrimary && s.Owner != OwnerSpouse {
		return NewConfigError(field+".owner", "must be primary or spouse, got %q", s.Owner)
	}
	if s.CurrentBalance.IsNegative() {
		return NewConfigError(field+".current_balance", "must not be negative")
	}
	if s.MonthlyContribution.IsNegative() || s.MonthlyAmount.IsNegative() || s.EmployerMatch.IsNegative() {
		return NewConfigError(field, "contribution, withdrawal and match amounts must not be negative")
	}
	if s.WithdrawalEndAge > 0 && s.WithdrawalEndAge < s.WithdrawalStartAge {
		return NewConfigError(field+".withdrawal_end_age", "end age %d is before start age %d",
			s.WithdrawalEndAge, s.WithdrawalStartAge)
	}
	if s.ExclusionRatio.IsNegative() || s.ExclusionRatio.GreaterThan(decimal.NewFromInt(1)) {
		return NewConfigError(field+".exclusion_ratio", "must be within [0, 1]")
	}
	if s.MaxToConvert.IsNegative() {
		return NewConfigError(field+".max_to_convert", "must not be negative")
	}
	// a rate below -1 would drive the balance negative
	if s.RateOfReturn.LessThan(minRate) {
		return NewConfigError(field+".rate_of_return", "must not be below -1")
	}
	return nil
}
