package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/domain"
)

// RemoveRothConversion clears every Roth conversion and withdrawal setting.
type RemoveRothConversion struct{}

func (rrc *RemoveRothConversion) Name() string {
	return "remove_roth_conversion"
}

func (rrc *RemoveRothConversion) Description() string {
	return "Remove Roth conversions and withdrawals"
}

func (rrc *RemoveRothConversion) Validate(base *domain.Input) error {
	if base == nil {
		return NewTransformError(rrc.Name(), "validate", "base input cannot be nil", nil)
	}
	return nil
}

func (rrc *RemoveRothConversion) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	modified.Scenario.ClearRoth()
	return modified, nil
}

// AddWageIncome appends a wage source paying Annual a year to the primary
// until retirement. A zero amount is a no-op.
type AddWageIncome struct {
	ID     string
	Label  string
	Annual decimal.Decimal
}

func (aw *AddWageIncome) Name() string {
	return "add_wage"
}

func (aw *AddWageIncome) Description() string {
	return fmt.Sprintf("Add %s wages of $%s a year until retirement", aw.ID, aw.Annual.StringFixed(0))
}

func (aw *AddWageIncome) Validate(base *domain.Input) error {
	if aw.ID == "" {
		return NewTransformError(aw.Name(), "validate", "source id cannot be empty", nil)
	}
	if aw.Annual.IsNegative() {
		return NewTransformError(aw.Name(), "validate", fmt.Sprintf("annual amount must not be negative, got %s", aw.Annual), nil)
	}
	if base == nil {
		return NewTransformError(aw.Name(), "validate", "base input cannot be nil", nil)
	}
	if aw.Annual.IsPositive() && findSource(base, aw.ID) >= 0 {
		return NewTransformError(aw.Name(), "validate", fmt.Sprintf("source %s already exists", aw.ID), nil)
	}
	return nil
}

func (aw *AddWageIncome) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	if !aw.Annual.IsPositive() {
		return modified, nil
	}
	label := aw.Label
	if label == "" {
		label = aw.ID
	}
	modified.Assets = append(modified.Assets, domain.IncomeSource{
		ID:            aw.ID,
		Owner:         domain.OwnerPrimary,
		Name:          label,
		Type:          domain.IncomeWage,
		MonthlyAmount: aw.Annual.Div(decimal.NewFromInt(12)),
	})
	return modified, nil
}

// EnableRothConversion replaces any Roth settings with the plan in Params:
// a synthetic Roth receives the conversions and, when configured, funds
// withdrawals that start after the last conversion year.
//
// Per-source totals come from Params.AssetConversionMap, or else from each
// traditional source's max_to_convert. Without either the annual amount is
// converted pro rata by balance. A zero amount or duration disables the plan.
type EnableRothConversion struct {
	Params domain.ConversionParams
}

func (erc *EnableRothConversion) Name() string {
	return "enable_roth_conversion"
}

func (erc *EnableRothConversion) Description() string {
	p := erc.Params
	return fmt.Sprintf("Convert up to $%s a year for %d years from %d",
		p.MaxAnnualAmount.StringFixed(0), p.YearsToConvert, p.ConversionStartYear)
}

func (erc *EnableRothConversion) Validate(base *domain.Input) error {
	if base == nil {
		return NewTransformError(erc.Name(), "validate", "base input cannot be nil", nil)
	}
	if err := erc.Params.Validate(); err != nil {
		return err
	}
	if findSource(base, calculation.SyntheticRothKey) >= 0 {
		return domain.NewConfigError("assets["+calculation.SyntheticRothKey+"]",
			"id is reserved for the conversion account")
	}
	for id := range erc.Params.AssetConversionMap {
		if findSource(base, id) < 0 {
			return NewTransformError(erc.Name(), "validate", fmt.Sprintf("asset_conversion_map refers to unknown source %s", id), nil)
		}
	}
	return nil
}

func (erc *EnableRothConversion) Apply(base *domain.Input) (*domain.Input, error) {
	p := erc.Params
	modified := base.Clone()
	modified.Scenario.ClearRoth()
	if p.YearsToConvert < 1 || !p.MaxAnnualAmount.IsPositive() {
		return modified, nil
	}

	modified.Assets = append(modified.Assets, domain.IncomeSource{
		ID:           calculation.SyntheticRothKey,
		Owner:        domain.OwnerPrimary,
		Name:         "Synthetic Roth",
		Type:         domain.IncomeSyntheticRoth,
		RateOfReturn: p.RothGrowthRate,
	})
	modified.Scenario.RothGrowthRate = p.RothGrowthRate
	modified.Scenario.RothConversion = &domain.RothConversionPlan{
		StartYear:    p.ConversionStartYear,
		Duration:     p.YearsToConvert,
		AnnualAmount: p.MaxAnnualAmount,
	}
	if m := conversionTargets(modified.Assets, p.AssetConversionMap); len(m) > 0 {
		modified.Scenario.AssetConversionMap = m
	}

	if p.RothWithdrawalAmount.IsPositive() && p.RothWithdrawalStartYear > 0 {
		start := p.RothWithdrawalStartYear
		planner := calculation.NewConversionPlanner(&modified.Scenario, modified.Assets)
		if end := planner.EndYear(); end > 0 && start <= end {
			start = end + 1
		}
		modified.Scenario.RothWithdrawalAmount = p.RothWithdrawalAmount
		modified.Scenario.RothWithdrawalStartYear = start
	}
	return modified, nil
}

func conversionTargets(assets []domain.IncomeSource, explicit map[string]decimal.Decimal) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	if len(explicit) > 0 {
		for id, amount := range explicit {
			m[id] = amount
		}
		return m
	}
	for _, src := range assets {
		if src.Type.IsTraditional() && src.MaxToConvert.IsPositive() {
			m[src.Key()] = src.MaxToConvert
		}
	}
	return m
}
