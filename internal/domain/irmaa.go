package domain

import "github.com/shopspring/decimal"

// IRMAARisk is how close a year's IRMAA MAGI sits to the surcharge tiers.
type IRMAARisk string

const (
	IRMAARiskSafe    IRMAARisk = "safe"
	IRMAARiskWarning IRMAARisk = "warning" // below the first tier but close to it
	IRMAARiskBreach  IRMAARisk = "breach"
)

// IRMAAYearRisk is one year flagged by the risk analysis. DistanceToThreshold
// is the headroom below the first tier for a warning, and the negative
// headroom to the next tier for a breach.
type IRMAAYearRisk struct {
	Year                int             `json:"year"`
	MAGI                decimal.Decimal `json:"magi"`
	Threshold           decimal.Decimal `json:"threshold"`
	DistanceToThreshold decimal.Decimal `json:"distanceToThreshold"`
	RiskStatus          IRMAARisk       `json:"riskStatus"`
	TierLevel           string          `json:"tierLevel"`
	AnnualCost          decimal.Decimal `json:"annualCost"`
}

// IRMAAAnalysis summarizes IRMAA exposure across a run.
type IRMAAAnalysis struct {
	YearsWithBreaches []int           `json:"yearsWithBreaches"`
	YearsWithWarnings []int           `json:"yearsWithWarnings"`
	TotalIRMAACost    decimal.Decimal `json:"totalIrmaaCost"`
	FirstBreachYear   int             `json:"firstBreachYear"`
	HighRiskYears     []IRMAAYearRisk `json:"highRiskYears"`
	Recommendations   []string        `json:"recommendations"`
}
