package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	assert.Equal(t, []string{
		"add_wage", "delay_ss", "enable_roth_conversion", "postpone_retirement",
		"remove_roth_conversion", "set_mortality", "set_retirement_age", "set_return",
	}, names)
}

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		expected ScenarioTransform
	}{
		{"postpone", "postpone_retirement:years=2", &PostponeRetirement{Owner: domain.OwnerPrimary, Years: 2}},
		{"postpone spouse", "postpone_retirement: owner=spouse , years=1", &PostponeRetirement{Owner: domain.OwnerSpouse, Years: 1}},
		{"retirement age", "set_retirement_age:age=62", &SetRetirementAge{Owner: domain.OwnerPrimary, Age: 62}},
		{"delay ss", "delay_ss:source=ss_alice,age=70", &DelaySSClaim{SourceID: "ss_alice", NewAge: 70}},
		{"mortality", "set_mortality:owner=spouse,age=95", &SetMortalityAge{Owner: domain.OwnerSpouse, Age: 95}},
		{"remove roth without colon", "remove_roth_conversion", &RemoveRothConversion{}},
		{"wage default id", "add_wage:annual=50000", &AddWageIncome{ID: "wages", Annual: d("50000")}},
	}

	registry := NewTransformRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.ParseTransformSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTransformRegistry_ParseDecimalParams(t *testing.T) {
	registry := NewTransformRegistry()

	got, err := registry.ParseTransformSpec("set_return:source=ira,rate=0.045")
	require.NoError(t, err)
	sr := got.(*SetRateOfReturn)
	assert.Equal(t, "ira", sr.SourceID)
	assert.True(t, sr.Rate.Equal(d("0.045")))

	got, err = registry.ParseTransformSpec("enable_roth_conversion:start=2026,years=4,amount=50000,growth=0.06,withdrawal=12000,withdrawal_start=2035")
	require.NoError(t, err)
	p := got.(*EnableRothConversion).Params
	assert.Equal(t, 2026, p.ConversionStartYear)
	assert.Equal(t, 4, p.YearsToConvert)
	assert.True(t, p.MaxAnnualAmount.Equal(d("50000")))
	assert.True(t, p.RothGrowthRate.Equal(d("0.06")))
	assert.True(t, p.RothWithdrawalAmount.Equal(d("12000")))
	assert.Equal(t, 2035, p.RothWithdrawalStartYear)
}

func TestTransformRegistry_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"empty", ""},
		{"unknown transform", "retire_early:years=1"},
		{"bad pair", "postpone_retirement:years"},
		{"missing param", "postpone_retirement:owner=primary"},
		{"bad int", "postpone_retirement:years=two"},
		{"bad decimal", "set_return:rate=high"},
		{"roth missing amount", "enable_roth_conversion:start=2026,years=2"},
	}

	registry := NewTransformRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.ParseTransformSpec(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig), "got %v", err)
		})
	}
}

func TestTransformRegistry_ParseAll(t *testing.T) {
	registry := NewTransformRegistry()
	transforms, err := registry.ParseAll([]string{"postpone_retirement:years=1", "delay_ss:source=ss_bob,age=68"})
	require.NoError(t, err)
	require.Len(t, transforms, 2)

	result, err := ApplyTransforms(createTestInput(), transforms)
	require.NoError(t, err)
	assert.Equal(t, 66, result.Scenario.RetirementAge)
	assert.Equal(t, 68, result.Assets[3].ClaimingAge)

	_, err = registry.ParseAll([]string{"postpone_retirement:years=1", "nope"})
	assert.Error(t, err)
}

func TestCreateBuiltInTemplates(t *testing.T) {
	registry := CreateBuiltInTemplates(createTestInput())
	assert.Equal(t, []string{
		"conservative_returns", "no_roth", "postpone_1yr", "postpone_2yr", "postpone_3yr",
		"ss_at_62", "ss_at_67", "ss_at_70",
	}, registry.List())

	tmpl, ok := registry.Get("SS_AT_70")
	require.True(t, ok)
	require.Len(t, tmpl.Transforms, 2)

	result, err := ApplyTransforms(createTestInput(), tmpl.Transforms)
	require.NoError(t, err)
	assert.Equal(t, 70, result.Assets[2].ClaimingAge)
	assert.Equal(t, 70, result.Assets[3].ClaimingAge)

	noSS := createTestInput()
	noSS.Assets = noSS.Assets[:2]
	_, ok = CreateBuiltInTemplates(noSS).Get("ss_at_70")
	assert.False(t, ok)
}
