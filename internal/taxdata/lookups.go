package taxdata

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

type bracketTable map[string][]Bracket
type deductionTable map[string]Deduction
type irmaaTable map[string][]IRMAATier
type ssTable map[string]SSThresholds
type stateTable map[string]StateRule

// statusKeys lists the table labels tried for a status, most specific first.
// A qualifying widow(er) falls back to the joint rows when a table has no
// dedicated entry.
func statusKeys(status domain.FilingStatus) []string {
	keys := []string{strings.ToLower(status.TableLabel())}
	if status == domain.FilingQualifyingWidow {
		keys = append(keys, strings.ToLower(domain.FilingMarriedJointly.TableLabel()))
	}
	return keys
}

// Brackets returns the federal brackets for status, ordered by lower edge.
func (l *Loader) Brackets(year int, status domain.FilingStatus) ([]Bracket, Source, error) {
	v, src, err := l.load(TableFederalBrackets, year, parseBrackets)
	if err != nil {
		return nil, src, err
	}
	for _, key := range statusKeys(status) {
		if b, ok := v.(bracketTable)[key]; ok {
			return b, src, nil
		}
	}
	return nil, src, &domain.TableMissingError{Table: string(TableFederalBrackets), Year: year, FilingStatus: string(status)}
}

func parseBrackets(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "filing_status", "min_income", "max_income", "tax_rate"); err != nil {
		return nil, err
	}
	out := bracketTable{}
	for _, r := range rows {
		b := Bracket{}
		var err error
		if b.Min, err = r.decimal(file, "min_income"); err != nil {
			return nil, err
		}
		if r.fields["max_income"] == "" {
			b.Unbounded = true
		} else {
			if b.Max, err = r.decimal(file, "max_income"); err != nil {
				return nil, err
			}
			b.Unbounded = b.Max.GreaterThanOrEqual(unboundedIncome)
		}
		if b.Rate, err = r.decimal(file, "tax_rate"); err != nil {
			return nil, err
		}
		status := strings.ToLower(r.fields["filing_status"])
		out[status] = append(out[status], b)
	}
	for _, brackets := range out {
		sort.SliceStable(brackets, func(i, j int) bool { return brackets[i].Min.LessThan(brackets[j].Min) })
	}
	return out, nil
}

// StandardDeduction returns the standard deduction for status.
func (l *Loader) StandardDeduction(year int, status domain.FilingStatus) (Deduction, Source, error) {
	v, src, err := l.load(TableStandardDeduct, year, parseDeductions)
	if err != nil {
		return Deduction{}, src, err
	}
	for _, key := range statusKeys(status) {
		if d, ok := v.(deductionTable)[key]; ok {
			return d, src, nil
		}
	}
	return Deduction{}, src, &domain.TableMissingError{Table: string(TableStandardDeduct), Year: year, FilingStatus: string(status)}
}

func parseDeductions(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "filing_status", "deduction_amount"); err != nil {
		return nil, err
	}
	out := deductionTable{}
	for _, r := range rows {
		amount, err := r.decimal(file, "deduction_amount")
		if err != nil {
			return nil, err
		}
		additional, err := r.optionalDecimal(file, "additional_deduction")
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(r.fields["filing_status"])] = Deduction{Amount: amount, Additional: additional}
	}
	return out, nil
}

// IRMAATiers returns the surcharge tiers for status ordered by threshold.
// A status with no rows is a *domain.TableMissingError.
func (l *Loader) IRMAATiers(year int, status domain.FilingStatus) ([]IRMAATier, Source, error) {
	v, src, err := l.load(TableIRMAA, year, parseIRMAA)
	if err != nil {
		return nil, src, err
	}
	for _, key := range statusKeys(status) {
		if tiers, ok := v.(irmaaTable)[key]; ok {
			return tiers, src, nil
		}
	}
	return nil, src, &domain.TableMissingError{Table: string(TableIRMAA), Year: year, FilingStatus: string(status)}
}

func parseIRMAA(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "filing_status", "magi_threshold", "part_b_surcharge", "part_d_surcharge"); err != nil {
		return nil, err
	}
	out := irmaaTable{}
	for _, r := range rows {
		var t IRMAATier
		var err error
		if t.Threshold, err = r.decimal(file, "magi_threshold"); err != nil {
			return nil, err
		}
		if t.PartB, err = r.decimal(file, "part_b_surcharge"); err != nil {
			return nil, err
		}
		if t.PartD, err = r.decimal(file, "part_d_surcharge"); err != nil {
			return nil, err
		}
		status := strings.ToLower(r.fields["filing_status"])
		out[status] = append(out[status], t)
	}
	for _, tiers := range out {
		sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Threshold.LessThan(tiers[j].Threshold) })
	}
	return out, nil
}

// MedicareBase returns the monthly base Part B and Part D premiums.
func (l *Loader) MedicareBase(year int) (MedicareBase, Source, error) {
	v, src, err := l.load(TableMedicareBase, year, parseMedicareBase)
	if err != nil {
		return MedicareBase{}, src, err
	}
	return v.(MedicareBase), src, nil
}

func parseMedicareBase(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "coverage_type", "monthly_rate"); err != nil {
		return nil, err
	}
	var out MedicareBase
	var seenB, seenD bool
	for _, r := range rows {
		rate, err := r.decimal(file, "monthly_rate")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(strings.ReplaceAll(r.fields["coverage_type"], " ", "")) {
		case "partb":
			out.PartB, seenB = rate, true
		case "partd":
			out.PartD, seenD = rate, true
		}
	}
	if !seenB || !seenD {
		return nil, &domain.TableSchemaError{File: file, Column: "coverage_type", Reason: "Part B and Part D rows are both required"}
	}
	return out, nil
}

// SSThresholds returns the Social Security taxability thresholds for status.
func (l *Loader) SSThresholds(year int, status domain.FilingStatus) (SSThresholds, Source, error) {
	v, src, err := l.load(TableSSThresholds, year, parseSSThresholds)
	if err != nil {
		return SSThresholds{}, src, err
	}
	for _, key := range statusKeys(status) {
		if t, ok := v.(ssTable)[key]; ok {
			return t, src, nil
		}
	}
	return SSThresholds{}, src, &domain.TableMissingError{Table: string(TableSSThresholds), Year: year, FilingStatus: string(status)}
}

func parseSSThresholds(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "filing_status", "base_threshold", "additional_threshold"); err != nil {
		return nil, err
	}
	out := ssTable{}
	for _, r := range rows {
		var t SSThresholds
		var err error
		if t.Base, err = r.decimal(file, "base_threshold"); err != nil {
			return nil, err
		}
		if t.Additional, err = r.decimal(file, "additional_threshold"); err != nil {
			return nil, err
		}
		out[strings.ToLower(r.fields["filing_status"])] = t
	}
	return out, nil
}

// StateRule returns the rule for a two-letter state code. An unlisted code
// yields a zero-rate, retirement-exempt rule with Known set to false.
func (l *Loader) StateRule(year int, code string) (StateRule, Source, error) {
	v, src, err := l.load(TableStateRates, year, parseStateRates)
	if err != nil {
		return StateRule{}, src, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if rule, ok := v.(stateTable)[code]; ok {
		return rule, src, nil
	}
	return StateRule{Code: code, Rate: decimal.Zero, RetirementExempt: true}, src, nil
}

func parseStateRates(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "state_code", "income_tax_rate", "retirement_income_exempt", "ss_taxed"); err != nil {
		return nil, err
	}
	out := stateTable{}
	for _, r := range rows {
		rule := StateRule{Code: strings.ToUpper(r.fields["state_code"]), Known: true}
		var err error
		if rule.Rate, err = r.decimal(file, "income_tax_rate"); err != nil {
			return nil, err
		}
		if rule.RetirementExempt, err = r.bool(file, "retirement_income_exempt"); err != nil {
			return nil, err
		}
		if rule.SSTaxed, err = r.bool(file, "ss_taxed"); err != nil {
			return nil, err
		}
		out[rule.Code] = rule
	}
	return out, nil
}

// RMDTable returns the Uniform Lifetime Table.
func (l *Loader) RMDTable(year int) (RMDTable, Source, error) {
	v, src, err := l.load(TableRMDUniform, year, parseRMDTable)
	if err != nil {
		return RMDTable{}, src, err
	}
	return v.(RMDTable), src, nil
}

func parseRMDTable(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "age", "distribution_period"); err != nil {
		return nil, err
	}
	periods := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		age, err := r.int(file, "age")
		if err != nil {
			return nil, err
		}
		period, err := r.decimal(file, "distribution_period")
		if err != nil {
			return nil, err
		}
		if !period.IsPositive() {
			return nil, &domain.TableSchemaError{File: file, Line: r.line, Column: "distribution_period", Reason: "must be positive"}
		}
		periods[age] = period
	}
	return NewRMDTable(periods), nil
}

// Parameters returns the named scalar parameters for the year.
func (l *Loader) Parameters(year int) (Parameters, Source, error) {
	v, src, err := l.load(TableParameters, year, parseParameters)
	if err != nil {
		return nil, src, err
	}
	return v.(Parameters), src, nil
}

func parseParameters(file string, rows []record) (interface{}, error) {
	if err := requireColumns(file, rows, "name", "value"); err != nil {
		return nil, err
	}
	out := Parameters{}
	for _, r := range rows {
		v, err := r.decimal(file, "value")
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(r.fields["name"])] = v
	}
	return out, nil
}
