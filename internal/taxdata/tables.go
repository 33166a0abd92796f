package taxdata

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// Table names a per-year CSV table. The file for year Y is "<table>_<Y>.csv".
type Table string

const (
	TableFederalBrackets Table = "federal_tax_brackets"
	TableStandardDeduct  Table = "standard_deductions"
	TableIRMAA           Table = "irmaa_thresholds"
	TableMedicareBase    Table = "medicare_base_rates"
	TableSSThresholds    Table = "social_security_thresholds"
	TableStateRates      Table = "state_tax_rates"
	TableRMDUniform      Table = "rmd_uniform_lifetime"
	TableParameters      Table = "tax_parameters"
)

// AllTables lists every table the engine consults.
var AllTables = []Table{
	TableFederalBrackets,
	TableStandardDeduct,
	TableIRMAA,
	TableMedicareBase,
	TableSSThresholds,
	TableStateRates,
	TableRMDUniform,
	TableParameters,
}

// FileName returns the file holding table for year.
func (t Table) FileName(year int) string {
	return fmt.Sprintf("%s_%d.csv", t, year)
}

// unboundedIncome marks a top bracket with no upper edge.
var unboundedIncome = decimal.NewFromInt(999999999)

// Bracket is one federal bracket [Min, Max) taxed at Rate. Max is ignored when
// Unbounded is set.
type Bracket struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Rate      decimal.Decimal
	Unbounded bool
}

// Label is the human-readable bracket tag, e.g. "22%".
func (b Bracket) Label() string {
	return b.Rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// Deduction is the standard deduction plus the per-flag addition for age 65+
// or blindness.
type Deduction struct {
	Amount     decimal.Decimal
	Additional decimal.Decimal
}

// IRMAATier is a monthly Part B and Part D surcharge applying to MAGI strictly
// above Threshold.
type IRMAATier struct {
	Threshold decimal.Decimal
	PartB     decimal.Decimal
	PartD     decimal.Decimal
}

// MedicareBase holds the monthly base premiums.
type MedicareBase struct {
	PartB decimal.Decimal
	PartD decimal.Decimal
}

// SSThresholds are the provisional-income thresholds for benefit taxation.
type SSThresholds struct {
	Base       decimal.Decimal
	Additional decimal.Decimal
}

// StateRule is the flat-tax rule of one state. Known is false for the
// zero-rate default returned for an unlisted state code.
type StateRule struct {
	Code             string
	Rate             decimal.Decimal
	RetirementExempt bool
	SSTaxed          bool
	Known            bool
}

// RMDTable is the Uniform Lifetime Table: distribution period by age.
type RMDTable struct {
	periods map[int]decimal.Decimal
	minAge  int
	maxAge  int
}

// NewRMDTable builds a table from age to distribution period.
func NewRMDTable(periods map[int]decimal.Decimal) RMDTable {
	t := RMDTable{periods: periods}
	ages := make([]int, 0, len(periods))
	for age := range periods {
		ages = append(ages, age)
	}
	sort.Ints(ages)
	if len(ages) > 0 {
		t.minAge, t.maxAge = ages[0], ages[len(ages)-1]
	}
	return t
}

// Period returns the distribution period for age. Ages past the end of the
// table use the last period; ages before the start report false.
func (t RMDTable) Period(age int) (decimal.Decimal, bool) {
	if len(t.periods) == 0 || age < t.minAge {
		return decimal.Zero, false
	}
	if age > t.maxAge {
		age = t.maxAge
	}
	p, ok := t.periods[age]
	return p, ok
}

// MaxAge is the last age listed in the table.
func (t RMDTable) MaxAge() int { return t.maxAge }

// Parameter names in the tax_parameters table.
const (
	ParamRMDStartAge         = "rmd_start_age"
	ParamSSFullRetirementAge = "ss_full_retirement_age"
	ParamEstateExemption     = "estate_tax_exemption"
	ParamEstateRate          = "estate_tax_rate"
	ParamDependentMin        = "dependent_min_deduction"
	ParamDependentEarned     = "dependent_earned_income_addition"
)

// Parameters are named scalar values for a year.
type Parameters map[string]decimal.Decimal

// Int returns the named parameter as an integer.
func (p Parameters) Int(name string) (int, error) {
	v, err := p.Decimal(name)
	if err != nil {
		return 0, err
	}
	return int(v.IntPart()), nil
}

// Decimal returns the named parameter.
func (p Parameters) Decimal(name string) (decimal.Decimal, error) {
	v, ok := p[name]
	if !ok {
		return decimal.Zero, &domain.TableSchemaError{File: string(TableParameters), Column: name, Reason: "parameter not defined"}
	}
	return v, nil
}

// Source records which table year answered a lookup.
type Source struct {
	Table     Table
	Requested int
	Year      int
}

// Fallback reports whether an earlier year's table was used.
func (s Source) Fallback() bool { return s.Year != s.Requested }

// Warning returns the fallback warning for the lookup, or nil.
func (s Source) Warning() *domain.DomainWarning {
	if !s.Fallback() {
		return nil
	}
	return &domain.DomainWarning{
		Kind:    domain.WarningTableFallback,
		Year:    s.Requested,
		Message: fmt.Sprintf("%s: no table for %d, using %d", s.Table, s.Requested, s.Year),
	}
}
