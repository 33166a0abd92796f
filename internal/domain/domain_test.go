package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput() *Input {
	spouse := Person{Name: "Sam", BirthDate: time.Date(1962, 5, 1, 0, 0, 0, 0, time.UTC)}
	return &Input{
		Household: Household{
			Primary:      Person{Name: "Alex", BirthDate: time.Date(1960, 3, 15, 0, 0, 0, 0, time.UTC)},
			Spouse:       &spouse,
			FilingStatus: FilingMarriedJointly,
			State:        "VA",
		},
		Scenario: Scenario{CurrentYear: 2025, RetirementAge: 65},
		Assets: []IncomeSource{
			{ID: "ira", Owner: OwnerPrimary, Type: IncomeTraditionalIRA, CurrentBalance: decimal.NewFromInt(400000)},
			{ID: "ss", Owner: OwnerSpouse, Type: IncomeSocialSecurity, MonthlyAmount: decimal.NewFromInt(2000), WithdrawalStartAge: 67},
		},
	}
}

func TestParseFilingStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected FilingStatus
		wantErr  bool
	}{
		{"single", FilingSingle, false},
		{"Married Filing Jointly", FilingMarriedJointly, false},
		{"  head_of_household ", FilingHeadOfHousehold, false},
		{"qualifying widow(er)", FilingQualifyingWidow, false},
		{"married", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilingStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.Equal(t, "Married Filing Jointly", FilingMarriedJointly.TableLabel())
	assert.True(t, FilingQualifyingWidow.IsJoint())
	assert.False(t, FilingMarriedSeparately.IsJoint())
}

func TestIncomeTypePredicates(t *testing.T) {
	tests := []struct {
		typ         IncomeType
		traditional bool
		roth        bool
		balance     bool
		taxFree     bool
	}{
		{IncomeTraditionalIRA, true, false, true, false},
		{IncomeTraditional401k, true, false, true, false},
		{IncomeRothIRA, false, true, true, true},
		{IncomeSyntheticRoth, false, true, true, true},
		{IncomeSocialSecurity, false, false, false, false},
		{IncomeWage, false, false, false, false},
		{IncomeLifeInsuranceLoan, false, false, true, true},
		{IncomeOtherTaxFree, false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.traditional, tt.typ.IsTraditional())
			assert.Equal(t, tt.roth, tt.typ.IsRoth())
			assert.Equal(t, tt.balance, tt.typ.HasBalance())
			assert.Equal(t, tt.taxFree, tt.typ.IsTaxFree())
		})
	}

	_, err := ParseIncomeType("crypto")
	assert.True(t, errors.Is(err, ErrConfig))
	typ, err := ParseIncomeType("Roth_IRA")
	require.NoError(t, err)
	assert.Equal(t, IncomeRothIRA, typ)
}

func TestIncomeSource_Validate(t *testing.T) {
	valid := IncomeSource{ID: "a", Owner: OwnerPrimary, Type: IncomeAnnuity, ExclusionRatio: decimal.NewFromFloat(0.4)}

	tests := []struct {
		name   string
		mutate func(*IncomeSource)
		ok     bool
	}{
		{"valid", func(*IncomeSource) {}, true},
		{"name as key", func(s *IncomeSource) { s.ID = ""; s.Name = "Annuity" }, true},
		{"no key", func(s *IncomeSource) { s.ID = "" }, false},
		{"unknown type", func(s *IncomeSource) { s.Type = "bond" }, false},
		{"bad owner", func(s *IncomeSource) { s.Owner = "child" }, false},
		{"negative balance", func(s *IncomeSource) { s.CurrentBalance = decimal.NewFromInt(-1) }, false},
		{"end before start", func(s *IncomeSource) { s.WithdrawalStartAge = 70; s.WithdrawalEndAge = 65 }, false},
		{"zero end age is for life", func(s *IncomeSource) { s.WithdrawalStartAge = 70 }, true},
		{"exclusion above one", func(s *IncomeSource) { s.ExclusionRatio = decimal.NewFromFloat(1.1) }, false},
		{"negative max to convert", func(s *IncomeSource) { s.MaxToConvert = decimal.NewFromInt(-5) }, false},
		{"total loss rate", func(s *IncomeSource) { s.RateOfReturn = decimal.NewFromInt(-1) }, true},
		{"rate below total loss", func(s *IncomeSource) { s.RateOfReturn = decimal.NewFromFloat(-1.5) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := valid
			tt.mutate(&src)
			err := src.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ce *ConfigError
			assert.True(t, errors.As(err, &ce))
		})
	}
}

func TestInput_PrepareDefaults(t *testing.T) {
	in := testInput()
	require.NoError(t, in.Prepare())

	assert.Equal(t, DefaultMedicareAge, in.Scenario.MedicareAge)
	assert.Equal(t, DefaultMortalityAge, in.Scenario.MortalityAge)
	assert.Equal(t, DefaultMortalityAge, in.Scenario.SpouseMortalityAge)
	assert.Equal(t, 65, in.Scenario.SpouseRetirementAge)
	assert.Equal(t, 2025, in.Scenario.StartYear)
	assert.Nil(t, in.Scenario.IRMAAPercentScale)
	assert.True(t, in.Scenario.IRMAAScale().Equal(decimal.NewFromInt(1)))
	assert.Equal(t, DeductionStandard, in.Scenario.DeductionPolicy)
	assert.True(t, in.Scenario.IncludeSSInIRMAA())
	assert.True(t, in.Scenario.UsesStandardDeduction())

	assert.Equal(t, 1960+DefaultMortalityAge, in.MortalityYear(OwnerPrimary))
	assert.Equal(t, 1962+DefaultMortalityAge, in.LastYear())
}

func TestInput_PrepareErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing birth date", func(in *Input) { in.Household.Primary.BirthDate = time.Time{} }},
		{"joint without spouse", func(in *Input) { in.Household.Spouse = nil }},
		{"retirement after mortality", func(in *Input) { in.Scenario.RetirementAge = 95 }},
		{"start before current", func(in *Input) { in.Scenario.StartYear = 2020 }},
		{"duplicate id", func(in *Input) { in.Assets = append(in.Assets, in.Assets[0]) }},
		{"unknown conversion source", func(in *Input) {
			in.Scenario.AssetConversionMap = map[string]decimal.Decimal{"k401": decimal.NewFromInt(1)}
		}},
		{"conversion amount without duration", func(in *Input) {
			in.Scenario.RothConversion = &RothConversionPlan{StartYear: 2026, AnnualAmount: decimal.NewFromInt(1000)}
		}},
		{"custom deduction without override", func(in *Input) { in.Scenario.DeductionPolicy = DeductionCustom }},
		{"spouse source without spouse", func(in *Input) {
			in.Household.Spouse = nil
			in.Household.FilingStatus = FilingSingle
		}},
		{"start after last mortality year", func(in *Input) { in.Scenario.CurrentYear = 2060 }},
		{"roth growth below total loss", func(in *Input) { in.Scenario.RothGrowthRate = decimal.NewFromFloat(-1.01) }},
		{"negative irmaa scale", func(in *Input) {
			scale := decimal.NewFromInt(-1)
			in.Scenario.IRMAAPercentScale = &scale
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			tt.mutate(in)
			err := in.Prepare()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func TestScenario_ExplicitZeroIRMAAScaleSurvivesDefaults(t *testing.T) {
	in := testInput()
	zero := decimal.Zero
	in.Scenario.IRMAAPercentScale = &zero
	require.NoError(t, in.Prepare())
	assert.True(t, in.Scenario.IRMAAScale().IsZero())

	c := in.Clone()
	*c.Scenario.IRMAAPercentScale = decimal.NewFromInt(2)
	assert.True(t, in.Scenario.IRMAAScale().IsZero())
}

func TestInput_CloneIsDeep(t *testing.T) {
	in := testInput()
	rate := decimal.NewFromFloat(0.1)
	in.Assets[0].TaxRateOverride = &rate
	in.Scenario.RothConversion = &RothConversionPlan{StartYear: 2026, Duration: 2, AnnualAmount: decimal.NewFromInt(5000)}
	in.Scenario.AssetConversionMap = map[string]decimal.Decimal{"ira": decimal.NewFromInt(10000)}

	c := in.Clone()
	c.Household.Spouse.Name = "Changed"
	c.Assets[0].CurrentBalance = decimal.Zero
	*c.Assets[0].TaxRateOverride = decimal.Zero
	c.Scenario.RothConversion.Duration = 9
	c.Scenario.AssetConversionMap["ira"] = decimal.Zero

	assert.Equal(t, "Sam", in.Household.Spouse.Name)
	assert.True(t, in.Assets[0].CurrentBalance.Equal(decimal.NewFromInt(400000)))
	assert.True(t, in.Assets[0].TaxRateOverride.Equal(rate))
	assert.Equal(t, 2, in.Scenario.RothConversion.Duration)
	assert.True(t, in.Scenario.AssetConversionMap["ira"].Equal(decimal.NewFromInt(10000)))
}

func TestRothConversionPlan_Window(t *testing.T) {
	plan := &RothConversionPlan{StartYear: 2026, Duration: 3}
	assert.False(t, plan.InWindow(2025))
	assert.True(t, plan.InWindow(2026))
	assert.True(t, plan.InWindow(2028))
	assert.False(t, plan.InWindow(2029))
	assert.Equal(t, 2028, plan.EndYear())

	var none *RothConversionPlan
	assert.False(t, none.InWindow(2026))
}

func TestConversionParams_Validate(t *testing.T) {
	base := ConversionParams{ConversionStartYear: 2026, YearsToConvert: 3, MaxAnnualAmount: decimal.NewFromInt(1000)}
	require.NoError(t, base.Validate())
	assert.Equal(t, 2028, base.ConversionEndYear())

	tests := []struct {
		name   string
		mutate func(*ConversionParams)
	}{
		{"missing start", func(p *ConversionParams) { p.ConversionStartYear = 0 }},
		{"negative years", func(p *ConversionParams) { p.YearsToConvert = -1 }},
		{"negative amount", func(p *ConversionParams) { p.MaxAnnualAmount = decimal.NewFromInt(-1) }},
		{"negative map entry", func(p *ConversionParams) {
			p.AssetConversionMap = map[string]decimal.Decimal{"ira": decimal.NewFromInt(-1)}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			assert.True(t, errors.Is(p.Validate(), ErrConfig))
		})
	}
}
