package domain

import (
	"github.com/shopspring/decimal"
)

// ConversionParams configures the Roth conversion comparison.
type ConversionParams struct {
	ConversionStartYear     int                        `yaml:"conversion_start_year" json:"conversionStartYear"`
	YearsToConvert          int                        `yaml:"years_to_convert" json:"yearsToConvert"`
	PreRetirementIncome     decimal.Decimal            `yaml:"pre_retirement_income" json:"preRetirementIncome"`
	RothGrowthRate          decimal.Decimal            `yaml:"roth_growth_rate" json:"rothGrowthRate"`
	MaxAnnualAmount         decimal.Decimal            `yaml:"max_annual_amount" json:"maxAnnualAmount"`
	RothWithdrawalAmount    decimal.Decimal            `yaml:"roth_withdrawal_amount" json:"rothWithdrawalAmount"`
	RothWithdrawalStartYear int                        `yaml:"roth_withdrawal_start_year" json:"rothWithdrawalStartYear"`
	AssetConversionMap      map[string]decimal.Decimal `yaml:"asset_conversion_map" json:"assetConversionMap"`
}

// ConversionEndYear is the last nominal year of the conversion window.
func (p ConversionParams) ConversionEndYear() int {
	return p.ConversionStartYear + p.YearsToConvert - 1
}

// Validate checks the parameters for missing or contradictory values.
func (p ConversionParams) Validate() error {
	if p.ConversionStartYear <= 0 {
		return NewConfigError("conversion.conversion_start_year", "is required")
	}
	if p.YearsToConvert < 0 {
		return NewConfigError("conversion.years_to_convert", "must not be negative")
	}
	if p.MaxAnnualAmount.IsNegative() || p.RothWithdrawalAmount.IsNegative() || p.PreRetirementIncome.IsNegative() {
		return NewConfigError("conversion", "amounts must not be negative")
	}
	for id, amount := range p.AssetConversionMap {
		if amount.IsNegative() {
			return NewConfigError("conversion.asset_conversion_map["+id+"]", "must not be negative")
		}
	}
	return nil
}

// MetricKey names a lifetime aggregate compared between runs.
type MetricKey string

const (
	MetricLifetimeTax         MetricKey = "lifetime_tax"
	MetricLifetimeMedicare    MetricKey = "lifetime_medicare"
	MetricTotalIRMAA          MetricKey = "total_irmaa"
	MetricTotalRMDs           MetricKey = "total_rmds"
	MetricCumulativeNetIncome MetricKey = "cumulative_net_income"
	MetricFinalRoth           MetricKey = "final_roth"
	MetricInheritanceTax      MetricKey = "inheritance_tax"
	MetricTotalExpenses       MetricKey = "total_expenses"
)

// MetricOrder is the presentation order of the comparison metrics.
var MetricOrder = []MetricKey{
	MetricLifetimeTax,
	MetricLifetimeMedicare,
	MetricTotalIRMAA,
	MetricTotalRMDs,
	MetricCumulativeNetIncome,
	MetricFinalRoth,
	MetricInheritanceTax,
	MetricTotalExpenses,
}

// MetricComparison holds one metric for both runs.
type MetricComparison struct {
	Baseline      decimal.Decimal `json:"baseline"`
	Conversion    decimal.Decimal `json:"conversion"`
	Difference    decimal.Decimal `json:"difference"`
	PercentChange decimal.Decimal `json:"percentChange"`
}

// AssetSeries is the per-source ending balance for every projected year of
// both runs, keyed by source name.
type AssetSeries struct {
	Years      []int                        `json:"years"`
	Baseline   map[string][]decimal.Decimal `json:"baseline"`
	Conversion map[string][]decimal.Decimal `json:"conversion"`
}

// ConversionYear is the planned conversion for one year and source.
type ConversionYear struct {
	Year   int             `json:"year"`
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
}

// ComparisonResult is the output of a Roth conversion comparison.
type ComparisonResult struct {
	Baseline   *RunResult                     `json:"baseline"`
	Conversion *RunResult                     `json:"conversion"`
	Metrics    map[MetricKey]MetricComparison `json:"metrics"`
	Series     AssetSeries                    `json:"assetSeries"`
	Schedule   []ConversionYear               `json:"conversionSchedule"`
	// RothWithdrawalStartYear is the effective year after any shift out of
	// the conversion window.
	RothWithdrawalStartYear int `json:"rothWithdrawalStartYear"`
}
