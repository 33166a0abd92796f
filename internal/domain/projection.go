package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// YearRow is the outcome of one projected year. Rows are emitted in year
// order and are never modified after emission.
type YearRow struct {
	Year         int          `json:"year"`
	PrimaryAge   *int         `json:"primaryAge"`
	SpouseAge    *int         `json:"spouseAge"`
	FilingStatus FilingStatus `json:"filingStatus"`

	// Per-source gross dollar streams (source key -> amount)
	Gross             map[string]decimal.Decimal `json:"gross"`
	TotalGrossIncome  decimal.Decimal            `json:"totalGrossIncome"`
	SSGross           decimal.Decimal            `json:"ssGross"`
	SSTaxable         decimal.Decimal            `json:"ssTaxable"`
	TaxExemptInterest decimal.Decimal            `json:"taxExemptInterest"`
	AGI               decimal.Decimal            `json:"agi"`
	MAGI              decimal.Decimal            `json:"magi"`
	IRMAAMAGI         decimal.Decimal            `json:"irmaaMagi"`
	Deduction         decimal.Decimal            `json:"deduction"`
	TaxableIncome     decimal.Decimal            `json:"taxableIncome"`

	FederalTax decimal.Decimal `json:"federalTax"`
	TaxBracket string          `json:"taxBracket"`
	StateTax   decimal.Decimal `json:"stateTax"`

	MedicarePartB     decimal.Decimal `json:"medicarePartB"`
	MedicarePartD     decimal.Decimal `json:"medicarePartD"`
	IRMAAPartB        decimal.Decimal `json:"irmaaPartB"`
	IRMAAPartD        decimal.Decimal `json:"irmaaPartD"`
	TotalMedicare     decimal.Decimal `json:"totalMedicare"`
	MedicareEnrollees int             `json:"medicareEnrollees"`
	// IRMAATier is the 1-based surcharge tier reached, zero when none.
	IRMAATier int `json:"irmaaTier"`
	// IRMAAFirstThreshold and IRMAANextThreshold are the year's inflated
	// first tier and the next tier above IRMAAMAGI (zero past the top tier).
	IRMAAFirstThreshold decimal.Decimal `json:"irmaaFirstThreshold"`
	IRMAANextThreshold  decimal.Decimal `json:"irmaaNextThreshold"`

	RMDs           map[string]decimal.Decimal `json:"rmds"`
	TotalRMD       decimal.Decimal            `json:"totalRmd"`
	Conversions    map[string]decimal.Decimal `json:"conversions"`
	RothConversion decimal.Decimal            `json:"rothConversion"`
	RothWithdrawal decimal.Decimal            `json:"rothWithdrawal"`

	EndingBalances map[string]decimal.Decimal `json:"endingBalances"`
	NetIncome      decimal.Decimal            `json:"netIncome"`

	IRMAASurcharge bool            `json:"irmaaSurcharge"`
	RMDEnforced    bool            `json:"rmdEnforced"`
	Warnings       []DomainWarning `json:"warnings,omitempty"`
}

// TotalIRMAA is the combined Part B and Part D surcharge for the year.
func (r *YearRow) TotalIRMAA() decimal.Decimal {
	return r.IRMAAPartB.Add(r.IRMAAPartD)
}

// SortedKeys returns the keys of a per-source map in lexical order so output
// is stable.
func SortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SourceInfo describes a ledger entry as it appears in results. The synthetic
// Roth created during a run is listed here even though it is not an input.
type SourceInfo struct {
	Key   string     `json:"key"`
	Name  string     `json:"name"`
	Type  IncomeType `json:"type"`
	Owner Owner      `json:"owner"`
}

// Summary carries lifetime aggregates over a run.
type Summary struct {
	LifetimeTax         decimal.Decimal            `json:"lifetimeTax"`
	LifetimeStateTax    decimal.Decimal            `json:"lifetimeStateTax"`
	LifetimeMedicare    decimal.Decimal            `json:"lifetimeMedicare"`
	TotalIRMAA          decimal.Decimal            `json:"totalIrmaa"`
	TotalRMDs           decimal.Decimal            `json:"totalRmds"`
	TotalConversions    decimal.Decimal            `json:"totalConversions"`
	CumulativeNetIncome decimal.Decimal            `json:"cumulativeNetIncome"`
	FinalBalances       map[string]decimal.Decimal `json:"finalBalances"`
	IRMAAEverReached    bool                       `json:"irmaaEverReached"`
	TopBracketReached   string                     `json:"topBracketReached"`
	FirstYear           int                        `json:"firstYear"`
	LastYear            int                        `json:"lastYear"`
}

// RunResult is the finite ordered sequence of rows plus the summary.
type RunResult struct {
	Name    string       `json:"name"`
	Rows    []YearRow    `json:"rows"`
	Summary Summary      `json:"summary"`
	Sources []SourceInfo `json:"sources"`
}

// Warnings collects every warning attached to any row.
func (r *RunResult) Warnings() []DomainWarning {
	var out []DomainWarning
	for _, row := range r.Rows {
		out = append(out, row.Warnings...)
	}
	return out
}

// Source returns the info for key, if present.
func (r *RunResult) Source(key string) (SourceInfo, bool) {
	for _, s := range r.Sources {
		if s.Key == key {
			return s, true
		}
	}
	return SourceInfo{}, false
}
