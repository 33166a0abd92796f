package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func singleBrackets(t *testing.T) []taxdata.Bracket {
	t.Helper()
	brackets, _, err := taxdata.Default().Brackets(2025, domain.FilingSingle)
	require.NoError(t, err)
	return brackets
}

func TestCalculateFederalTax(t *testing.T) {
	calc := NewFederalTaxCalculator(singleBrackets(t))

	tests := []struct {
		name          string
		taxableIncome decimal.Decimal
		expectedTax   decimal.Decimal
		expectedLabel string
	}{
		{"zero income", decimal.Zero, decimal.Zero, "10%"},
		{"negative income", d("-500"), decimal.Zero, "10%"},
		{"inside first bracket", d("10000"), d("1000"), "10%"},
		{"exactly on the 12% edge stays in the lower bracket", d("48475"), d("5578.5"), "12%"},
		{"one cent into 22%", d("48475.01"), d("5578.5022"), "22%"},
		{"middle of 22%", d("50000"), d("5914"), "22%"},
		{"top bracket", d("1000000"), d("327020.25"), "37%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, label := calc.CalculateFederalTax(tt.taxableIncome)
			assert.True(t, tt.expectedTax.Equal(tax), "expected %s, got %s", tt.expectedTax, tax)
			assert.Equal(t, tt.expectedLabel, label)
		})
	}
}

func TestCalculateFederalTax_NoBrackets(t *testing.T) {
	tax, label := NewFederalTaxCalculator(nil).CalculateFederalTax(d("100000"))
	assert.True(t, tax.IsZero())
	assert.Empty(t, label)
}

func TestFederalTax_MonotoneAndContinuous(t *testing.T) {
	brackets := singleBrackets(t)
	calc := NewFederalTaxCalculator(brackets)

	prev := decimal.Zero
	for income := int64(0); income <= 800000; income += 2500 {
		tax, _ := calc.CalculateFederalTax(decimal.NewFromInt(income))
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax fell at %d", income)
		prev = tax
	}

	cent := d("0.01")
	for _, b := range brackets[1:] {
		below, _ := calc.CalculateFederalTax(b.Min)
		above, _ := calc.CalculateFederalTax(b.Min.Add(cent))
		// one cent of income can add at most one cent of tax
		assert.True(t, above.Sub(below).LessThanOrEqual(cent), "jump at %s", b.Min)
	}
}

func TestTaxableSocialSecurity(t *testing.T) {
	thresholds := taxdata.SSThresholds{Base: d("25000"), Additional: d("34000")}

	tests := []struct {
		name     string
		ssGross  decimal.Decimal
		other    decimal.Decimal
		exempt   decimal.Decimal
		expected decimal.Decimal
	}{
		{"no benefit", decimal.Zero, d("80000"), decimal.Zero, decimal.Zero},
		{"below base threshold", d("20000"), d("10000"), decimal.Zero, decimal.Zero},
		{"between thresholds", d("20000"), d("20000"), decimal.Zero, d("2500")},
		{"capped at 85 percent", d("30000"), d("60000"), decimal.Zero, d("25500")},
		{"tax-exempt interest counts toward provisional income", d("20000"), d("25000"), d("5000"), d("9600")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxableSocialSecurity(tt.ssGross, tt.other, tt.exempt, thresholds)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestTaxableSocialSecurity_NeverAbove85Percent(t *testing.T) {
	thresholds := taxdata.SSThresholds{Base: d("32000"), Additional: d("44000")}
	limit := d("0.85")
	for ss := int64(0); ss <= 80000; ss += 8000 {
		for other := int64(0); other <= 300000; other += 15000 {
			gross := decimal.NewFromInt(ss)
			got := TaxableSocialSecurity(gross, decimal.NewFromInt(other), decimal.Zero, thresholds)
			assert.True(t, got.LessThanOrEqual(gross.Mul(limit)), "ss=%d other=%d", ss, other)
			assert.False(t, got.IsNegative())
		}
	}
}

func TestCalculateStateTax(t *testing.T) {
	override := decimal.Zero
	base := StateTaxInput{
		AGI:              d("100000"),
		FederalDeduction: d("15000"),
		RetirementIncome: d("60000"),
		SSTaxable:        d("20000"),
	}

	tests := []struct {
		name     string
		rule     taxdata.StateRule
		mutate   func(in *StateTaxInput)
		expected decimal.Decimal
	}{
		{
			name:     "no income tax state",
			rule:     taxdata.StateRule{Code: "FL", RetirementExempt: true, Known: true},
			expected: decimal.Zero,
		},
		{
			name:     "social security exempt",
			rule:     taxdata.StateRule{Code: "GA", Rate: d("0.05"), Known: true},
			expected: d("3250"),
		},
		{
			name:     "social security taxed",
			rule:     taxdata.StateRule{Code: "CO", Rate: d("0.05"), SSTaxed: true, Known: true},
			expected: d("4250"),
		},
		{
			name:     "retirement income exempt",
			rule:     taxdata.StateRule{Code: "PA", Rate: d("0.05"), RetirementExempt: true, Known: true},
			expected: d("250"),
		},
		{
			name:     "state deduction override replaces the federal deduction",
			rule:     taxdata.StateRule{Code: "GA", Rate: d("0.05"), Known: true},
			mutate:   func(in *StateTaxInput) { in.StateDeduction = &override },
			expected: d("4000"),
		},
		{
			name:     "deduction larger than base",
			rule:     taxdata.StateRule{Code: "GA", Rate: d("0.05"), Known: true},
			mutate:   func(in *StateTaxInput) { in.FederalDeduction = d("200000") },
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			got := NewStateTaxCalculator(tt.rule).CalculateStateTax(in)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestInheritanceTax(t *testing.T) {
	exemption, rate := d("12900000"), d("0.40")
	assert.True(t, InheritanceTax(d("800000"), exemption, rate).IsZero())
	assert.True(t, InheritanceTax(d("15000000"), exemption, rate).Equal(d("840000")))
	assert.True(t, InheritanceTax(d("800000"), decimal.Zero, rate).Equal(d("320000")))
}
