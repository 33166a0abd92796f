package calculation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

func primaryYear(year, age int) *yearContext {
	return &yearContext{
		year:      year,
		firstYear: 2025,
		ages:      map[domain.Owner]int{domain.OwnerPrimary: age},
		alive:     map[domain.Owner]bool{domain.OwnerPrimary: true},
		retireAge: map[domain.Owner]int{domain.OwnerPrimary: 65},
	}
}

func TestNewLedger_RejectsUnknownType(t *testing.T) {
	_, err := NewLedger([]domain.IncomeSource{{ID: "x", Type: "gold"}}, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestLedger_DoesNotShareInputState(t *testing.T) {
	rate := d("0.3")
	sources := []domain.IncomeSource{{ID: "ira", Type: domain.IncomeTraditionalIRA, CurrentBalance: d("1000"), TaxRateOverride: &rate}}
	l, err := NewLedger(sources, decimal.Zero)
	require.NoError(t, err)

	l.BeginYear()
	l.Convert("ira", d("400"))
	assert.True(t, sources[0].CurrentBalance.Equal(d("1000")))
	assert.True(t, l.Balance("ira").Equal(d("600")))
	assert.NotSame(t, sources[0].TaxRateOverride, l.byKey["ira"].src.TaxRateOverride)
}

func TestLedger_Contributions(t *testing.T) {
	tests := []struct {
		name     string
		src      domain.IncomeSource
		age      int
		expected decimal.Decimal
	}{
		{
			name: "monthly contributions plus annual match",
			src: domain.IncomeSource{ID: "k", Type: domain.IncomeTraditional401k, IsContributing: true,
				MonthlyContribution: d("500"), EmployerMatch: d("3000")},
			age:      60,
			expected: d("9000"),
		},
		{
			name: "stops at retirement age when no last age is set",
			src: domain.IncomeSource{ID: "k", Type: domain.IncomeTraditional401k, IsContributing: true,
				MonthlyContribution: d("500")},
			age:      65,
			expected: decimal.Zero,
		},
		{
			name: "stops at the last contribution age",
			src: domain.IncomeSource{ID: "k", Type: domain.IncomeTraditional401k, IsContributing: true,
				MonthlyContribution: d("500"), AgeLastContribution: 62},
			age:      62,
			expected: decimal.Zero,
		},
		{
			name: "not contributing",
			src: domain.IncomeSource{ID: "k", Type: domain.IncomeTraditional401k,
				MonthlyContribution: d("500")},
			age:      60,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src.Owner = domain.OwnerPrimary
			l, err := NewLedger([]domain.IncomeSource{tt.src}, decimal.Zero)
			require.NoError(t, err)
			l.BeginYear()
			l.Contribute(primaryYear(2025, tt.age))
			assert.True(t, l.Balance("k").Equal(tt.expected), "got %s", l.Balance("k"))
		})
	}
}

func TestLedger_AnnuityExclusion(t *testing.T) {
	l, err := NewLedger([]domain.IncomeSource{{
		ID: "annuity", Owner: domain.OwnerPrimary, Type: domain.IncomeAnnuity,
		CurrentBalance: d("15000"), MonthlyAmount: d("1000"), WithdrawalStartAge: 65, ExclusionRatio: d("0.5"),
	}}, decimal.Zero)
	require.NoError(t, err)
	ssc := NewSocialSecurityCalculator(67, &domain.Scenario{})

	expectedTaxable := []string{"6000", "6000", "9000", "12000"}
	for i, want := range expectedTaxable {
		l.BeginYear()
		l.WithdrawScheduled(primaryYear(2030+i, 65+i), ssc)
		flows := l.Flows()
		assert.True(t, flows.gross["annuity"].Equal(d("12000")), "year %d", i)
		assert.True(t, flows.ordinary.Equal(d(want)), "year %d: expected %s, got %s", i, want, flows.ordinary)
		assert.True(t, flows.retirement.Equal(d(want)))
	}
}

func TestLedger_TaxFreeAndOverrideStreams(t *testing.T) {
	rate := d("0.2")
	l, err := NewLedger([]domain.IncomeSource{
		{ID: "loan", Owner: domain.OwnerPrimary, Type: domain.IncomeLifeInsuranceLoan, CurrentBalance: d("50000"), MonthlyAmount: d("500")},
		{ID: "gift", Owner: domain.OwnerPrimary, Type: domain.IncomeOtherTaxFree, MonthlyAmount: d("100")},
		{ID: "consulting", Owner: domain.OwnerPrimary, Type: domain.IncomeOtherTaxable, MonthlyAmount: d("1000"), TaxRateOverride: &rate},
		{ID: "rent", Owner: domain.OwnerPrimary, Type: domain.IncomeRental, MonthlyAmount: d("2000")},
	}, decimal.Zero)
	require.NoError(t, err)

	l.BeginYear()
	l.WithdrawScheduled(primaryYear(2025, 60), NewSocialSecurityCalculator(67, &domain.Scenario{}))
	flows := l.Flows()

	assert.True(t, flows.totalGross.Equal(d("43200")))
	assert.True(t, flows.ordinary.Equal(d("24000")), "only rent is bracket income")
	assert.True(t, flows.override.Equal(d("12000")))
	assert.True(t, flows.overrideTax.Equal(d("2400")))
	assert.True(t, l.Balance("loan").Equal(d("44000")))
}

func TestLedger_WageStopsAtRetirement(t *testing.T) {
	l, err := NewLedger([]domain.IncomeSource{{
		ID: "job", Owner: domain.OwnerPrimary, Type: domain.IncomeWage, MonthlyAmount: d("5000"), COLA: d("0.03"),
	}}, decimal.Zero)
	require.NoError(t, err)
	ssc := NewSocialSecurityCalculator(67, &domain.Scenario{})

	l.BeginYear()
	l.WithdrawScheduled(primaryYear(2026, 61), ssc)
	assert.True(t, l.Flows().earned.Equal(d("61800")))

	l.BeginYear()
	l.WithdrawScheduled(primaryYear(2030, 65), ssc)
	assert.True(t, l.Flows().totalGross.IsZero())
}

func TestLedger_DeceasedOwnerStopsPaying(t *testing.T) {
	l, err := NewLedger([]domain.IncomeSource{{
		ID: "pension", Owner: domain.OwnerPrimary, Type: domain.IncomePension, MonthlyAmount: d("1000"),
	}}, decimal.Zero)
	require.NoError(t, err)
	yc := primaryYear(2050, 85)
	yc.alive[domain.OwnerPrimary] = false

	l.BeginYear()
	l.WithdrawScheduled(yc, NewSocialSecurityCalculator(67, &domain.Scenario{}))
	assert.Empty(t, l.Flows().gross)
}

func TestLedger_RothWithdrawal(t *testing.T) {
	l, err := NewLedger([]domain.IncomeSource{{
		ID: "ira", Owner: domain.OwnerPrimary, Type: domain.IncomeTraditionalIRA, CurrentBalance: d("100000"),
	}}, d("0.10"))
	require.NoError(t, err)

	assert.True(t, l.WithdrawRoth(d("5000")).IsZero(), "nothing to withdraw before a conversion")

	l.BeginYear()
	assert.True(t, l.Convert("ira", d("30000")).Equal(d("30000")))
	assert.True(t, l.WithdrawRoth(d("50000")).Equal(d("30000")), "clamped to the balance")
	flows := l.Flows()
	assert.True(t, flows.converted.Equal(d("30000")))
	assert.True(t, flows.ordinary.Equal(d("30000")), "conversions are taxable")
	assert.True(t, flows.rothDrawn.Equal(d("30000")))
	assert.True(t, flows.gross[SyntheticRothKey].Equal(d("30000")))

	l.Grow()
	assert.True(t, l.Balance("ira").Equal(d("70000")), "no growth rate on the IRA")
	assert.True(t, l.Balance(SyntheticRothKey).IsZero())
}

func TestConversionPlanner_ProRataRespectsCaps(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "a", Owner: domain.OwnerPrimary, Type: domain.IncomeTraditionalIRA, CurrentBalance: d("300000"), MaxToConvert: d("50000")},
		{ID: "b", Owner: domain.OwnerPrimary, Type: domain.IncomeTraditionalIRA, CurrentBalance: d("100000"), MaxToConvert: d("150000")},
		{ID: "c", Owner: domain.OwnerPrimary, Type: domain.IncomeTraditionalIRA, CurrentBalance: d("100000")},
	}
	scenario := &domain.Scenario{RothConversion: &domain.RothConversionPlan{StartYear: 2026, Duration: 3, AnnualAmount: d("80000")}}
	planner := NewConversionPlanner(scenario, sources)
	l, err := NewLedger(sources, decimal.Zero)
	require.NoError(t, err)
	alive := map[domain.Owner]bool{domain.OwnerPrimary: true}

	assert.True(t, planner.Apply(2025, l, alive).IsZero(), "before the window")

	// a takes 60,000 pro rata but is capped at 50,000; b takes the remainder
	l.BeginYear()
	assert.True(t, planner.Apply(2026, l, alive).Equal(d("80000")))
	assert.True(t, l.Converted("a").Equal(d("50000")))
	assert.True(t, l.Converted("b").Equal(d("30000")))
	assert.True(t, l.Converted("c").IsZero(), "sources without a cap are not eligible when others carry one")

	l.BeginYear()
	assert.True(t, planner.Apply(2027, l, alive).Equal(d("70000")), "b has 70,000 of balance left")

	l.BeginYear()
	assert.True(t, planner.Apply(2028, l, alive).IsZero())
	assert.True(t, planner.Apply(2029, l, alive).IsZero(), "after the window")
	assert.Equal(t, 2028, planner.EndYear())
}

func TestConversionPlanner_Inactive(t *testing.T) {
	tests := []struct {
		name     string
		scenario domain.Scenario
	}{
		{"no plan", domain.Scenario{}},
		{"zero duration", domain.Scenario{RothConversion: &domain.RothConversionPlan{StartYear: 2026}}},
		{"nothing to convert", domain.Scenario{RothConversion: &domain.RothConversionPlan{StartYear: 2026, Duration: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := NewConversionPlanner(&tt.scenario, nil)
			assert.False(t, planner.Active())
			assert.Equal(t, 0, planner.EndYear())
		})
	}
}
