package taxdata

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDefaultLoader_Brackets2025(t *testing.T) {
	loader := Default()

	brackets, src, err := loader.Brackets(2025, domain.FilingSingle)
	require.NoError(t, err)
	assert.False(t, src.Fallback())
	require.Len(t, brackets, 7)
	assert.True(t, brackets[0].Min.IsZero())
	assert.True(t, brackets[0].Max.Equal(d("11925")))
	assert.Equal(t, "10%", brackets[0].Label())
	assert.True(t, brackets[6].Unbounded)
	assert.Equal(t, "37%", brackets[6].Label())

	mfs, _, err := loader.Brackets(2025, domain.FilingMarriedSeparately)
	require.NoError(t, err)
	assert.True(t, mfs[5].Max.Equal(d("375800")), "MFS 35 percent bracket tops out at 375,800")
}

func TestDefaultLoader_QualifyingWidowUsesJointBrackets(t *testing.T) {
	loader := Default()

	qw, _, err := loader.Brackets(2025, domain.FilingQualifyingWidow)
	require.NoError(t, err)
	mfj, _, err := loader.Brackets(2025, domain.FilingMarriedJointly)
	require.NoError(t, err)
	assert.Equal(t, mfj, qw)
}

func TestDefaultLoader_StandardDeductions(t *testing.T) {
	loader := Default()

	tests := []struct {
		status   domain.FilingStatus
		expected string
	}{
		{domain.FilingSingle, "15000"},
		{domain.FilingMarriedSeparately, "15000"},
		{domain.FilingMarriedJointly, "30000"},
		{domain.FilingQualifyingWidow, "30000"},
		{domain.FilingHeadOfHousehold, "22500"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			ded, _, err := loader.StandardDeduction(2025, tt.status)
			require.NoError(t, err)
			assert.True(t, ded.Amount.Equal(d(tt.expected)), "got %s", ded.Amount)
		})
	}
}

func TestDefaultLoader_OtherTables(t *testing.T) {
	loader := Default()

	tiers, _, err := loader.IRMAATiers(2025, domain.FilingMarriedJointly)
	require.NoError(t, err)
	require.Len(t, tiers, 5)
	assert.True(t, tiers[0].Threshold.Equal(d("212000")))

	base, _, err := loader.MedicareBase(2025)
	require.NoError(t, err)
	assert.True(t, base.PartB.Equal(d("185")))
	assert.True(t, base.PartD.Equal(d("71")))

	ss, _, err := loader.SSThresholds(2025, domain.FilingSingle)
	require.NoError(t, err)
	assert.True(t, ss.Base.Equal(d("25000")))
	assert.True(t, ss.Additional.Equal(d("34000")))

	fl, _, err := loader.StateRule(2025, "fl")
	require.NoError(t, err)
	assert.True(t, fl.Known)
	assert.True(t, fl.RetirementExempt)
	assert.True(t, fl.Rate.IsZero())

	rmd, _, err := loader.RMDTable(2025)
	require.NoError(t, err)
	period, ok := rmd.Period(73)
	require.True(t, ok)
	assert.True(t, period.Equal(d("26.5")))
	period, ok = rmd.Period(120)
	require.True(t, ok, "ages past the table use the last period")
	assert.True(t, period.Equal(d("1.9")))
	_, ok = rmd.Period(70)
	assert.False(t, ok)

	params, _, err := loader.Parameters(2025)
	require.NoError(t, err)
	start, err := params.Int(ParamRMDStartAge)
	require.NoError(t, err)
	assert.Equal(t, 73, start)
	exemption, err := params.Decimal(ParamEstateExemption)
	require.NoError(t, err)
	assert.True(t, exemption.Equal(d("12900000")))
}

func TestLoader_UnknownStateIsZeroRate(t *testing.T) {
	rule, _, err := Default().StateRule(2025, "ZZ")
	require.NoError(t, err)
	assert.False(t, rule.Known)
	assert.True(t, rule.Rate.IsZero())
	assert.True(t, rule.RetirementExempt)
}

func bracketFS() fstest.MapFS {
	return fstest.MapFS{
		"federal_tax_brackets_2023.csv": {Data: []byte("filing_status,min_income,max_income,tax_rate\nSingle,0,10000,0.10\nSingle,10000,,0.20\n")},
		"federal_tax_brackets_2025.csv": {Data: []byte("filing_status,min_income,max_income,tax_rate,notes\nSingle,0,20000,0.10,x\nSingle,20000,999999999,0.30,y\n")},
	}
}

func TestLoader_FallsBackToLatestEarlierYear(t *testing.T) {
	loader := NewLoader(bracketFS())

	brackets, src, err := loader.Brackets(2024, domain.FilingSingle)
	require.NoError(t, err)
	assert.True(t, src.Fallback())
	assert.Equal(t, 2023, src.Year)
	assert.True(t, brackets[1].Unbounded, "empty max_income is unbounded")

	warn := src.Warning()
	require.NotNil(t, warn)
	assert.Equal(t, domain.WarningTableFallback, warn.Kind)
	assert.Equal(t, 2024, warn.Year)

	_, src, err = loader.Brackets(2030, domain.FilingSingle)
	require.NoError(t, err)
	assert.Equal(t, 2025, src.Year, "never extrapolates forward past the latest table")

	_, src, err = loader.Brackets(2025, domain.FilingSingle)
	require.NoError(t, err)
	assert.Nil(t, src.Warning())
}

func TestLoader_TableMissing(t *testing.T) {
	loader := NewLoader(bracketFS())

	_, _, err := loader.Brackets(2022, domain.FilingSingle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTableMissing))

	_, _, err = loader.Brackets(2025, domain.FilingHeadOfHousehold)
	require.Error(t, err)
	var missing *domain.TableMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, string(domain.FilingHeadOfHousehold), missing.FilingStatus)

	_, _, err = loader.MedicareBase(2025)
	assert.True(t, errors.Is(err, domain.ErrTableMissing))
}

func TestLoader_IRMAATiersMissingStatus(t *testing.T) {
	loader := NewLoader(fstest.MapFS{
		"irmaa_thresholds_2025.csv": {Data: []byte("filing_status,magi_threshold,part_b_surcharge,part_d_surcharge\nSingle,106000,74.00,13.70\n")},
	})

	tiers, _, err := loader.IRMAATiers(2025, domain.FilingSingle)
	require.NoError(t, err)
	require.Len(t, tiers, 1)

	tiers, _, err = loader.IRMAATiers(2025, domain.FilingHeadOfHousehold)
	require.Error(t, err)
	assert.Nil(t, tiers)
	var missing *domain.TableMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, string(TableIRMAA), missing.Table)
	assert.Equal(t, string(domain.FilingHeadOfHousehold), missing.FilingStatus)
}

func TestLoader_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		data   string
		column string
	}{
		{
			name:   "missing column",
			file:   "standard_deductions_2025.csv",
			data:   "filing_status,amount\nSingle,15000\n",
			column: "deduction_amount",
		},
		{
			name:   "bad decimal",
			file:   "standard_deductions_2025.csv",
			data:   "filing_status,deduction_amount\nSingle,fifteen\n",
			column: "deduction_amount",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(fstest.MapFS{tt.file: {Data: []byte(tt.data)}})
			_, _, err := loader.StandardDeduction(2025, domain.FilingSingle)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTableSchema))
			var schema *domain.TableSchemaError
			require.True(t, errors.As(err, &schema))
			assert.Equal(t, tt.column, schema.Column)
		})
	}

	loader := NewLoader(fstest.MapFS{
		"state_tax_rates_2025.csv": {Data: []byte("state_code,income_tax_rate,retirement_income_exempt,ss_taxed\nPA,0.0307,yes,false\n")},
	})
	_, _, err := loader.StateRule(2025, "PA")
	assert.True(t, errors.Is(err, domain.ErrTableSchema), "booleans must be true/false")
}

func TestLoader_ConcurrentLookupsShareCache(t *testing.T) {
	loader := Default()

	var wg sync.WaitGroup
	results := make([][]Bracket, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, _, err := loader.Brackets(2025, domain.FilingMarriedJointly)
			assert.NoError(t, err)
			results[i] = b
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
	assert.Len(t, loader.cache, 1)
}

func TestAvailableYears(t *testing.T) {
	loader := NewLoader(bracketFS())
	years, err := loader.AvailableYears(TableFederalBrackets)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2025}, years)
}

func TestInflation(t *testing.T) {
	factor := ConstantFactor(d("0.01"), 2025, 2027)
	assert.True(t, factor.Equal(d("1.0201")))
	assert.True(t, ConstantFactor(d("0.01"), 2025, 2025).Equal(decimal.NewFromInt(1)))

	assert.True(t, CompoundFactor([]decimal.Decimal{d("0.02"), d("0.03")}).Equal(d("1.0506")))

	tiers := []IRMAATier{{Threshold: d("106000"), PartB: d("74"), PartD: d("13.70")}}
	inflated := InflateIRMAATiers(tiers, factor)
	assert.True(t, inflated[0].Threshold.Equal(d("108130.6")))
	assert.True(t, tiers[0].Threshold.Equal(d("106000")), "input tiers untouched")
	assert.True(t, inflated[0].PartB.Equal(d("74")))

	ded := InflateDeduction(Deduction{Amount: d("15000"), Additional: d("2000")}, d("1.1"))
	assert.True(t, ded.Amount.Equal(d("16500")))
	assert.True(t, ded.Additional.Equal(d("2200")))
}
