package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

const (
	// IRMAAWarningDistance is the headroom below the first tier that counts as a warning.
	IRMAAWarningDistance = 10000
)

// IRMAAPosition locates magi among tiers: the 1-based tier reached (zero when
// none), the first threshold, and the next threshold above magi (zero past
// the top tier).
func IRMAAPosition(magi decimal.Decimal, tiers []taxdata.IRMAATier) (int, decimal.Decimal, decimal.Decimal) {
	if len(tiers) == 0 {
		return 0, decimal.Zero, decimal.Zero
	}
	level := 0
	next := decimal.Zero
	for i, t := range tiers {
		if magi.GreaterThan(t.Threshold) {
			level = i + 1
			continue
		}
		next = t.Threshold
		break
	}
	return level, tiers[0].Threshold, next
}

// CalculateIRMAARiskStatus classifies one row. Rows without Medicare
// enrollees are always safe.
func CalculateIRMAARiskStatus(row *domain.YearRow) (domain.IRMAARisk, decimal.Decimal) {
	if row.MedicareEnrollees == 0 || row.IRMAAFirstThreshold.IsZero() {
		return domain.IRMAARiskSafe, decimal.Zero
	}
	if row.IRMAATier > 0 {
		distance := decimal.Zero
		if !row.IRMAANextThreshold.IsZero() {
			distance = row.IRMAANextThreshold.Sub(row.IRMAAMAGI)
		}
		return domain.IRMAARiskBreach, distance
	}
	distance := row.IRMAAFirstThreshold.Sub(row.IRMAAMAGI)
	if distance.LessThanOrEqual(decimal.NewFromInt(IRMAAWarningDistance)) {
		return domain.IRMAARiskWarning, distance
	}
	return domain.IRMAARiskSafe, distance
}

func tierName(tier int) string {
	if tier <= 0 {
		return "None"
	}
	return fmt.Sprintf("Tier%d", tier)
}

// AnalyzeIRMAARisk walks the rows of a run and reports breach and warning
// years with their surcharge cost.
func AnalyzeIRMAARisk(rows []domain.YearRow) *domain.IRMAAAnalysis {
	analysis := &domain.IRMAAAnalysis{
		YearsWithBreaches: []int{},
		YearsWithWarnings: []int{},
		HighRiskYears:     []domain.IRMAAYearRisk{},
	}

	for i := range rows {
		row := &rows[i]
		risk, distance := CalculateIRMAARiskStatus(row)
		switch risk {
		case domain.IRMAARiskBreach:
			analysis.YearsWithBreaches = append(analysis.YearsWithBreaches, row.Year)
			if analysis.FirstBreachYear == 0 {
				analysis.FirstBreachYear = row.Year
			}
			cost := row.TotalIRMAA()
			analysis.TotalIRMAACost = analysis.TotalIRMAACost.Add(cost)
			analysis.HighRiskYears = append(analysis.HighRiskYears, domain.IRMAAYearRisk{
				Year:                row.Year,
				MAGI:                row.IRMAAMAGI,
				Threshold:           row.IRMAAFirstThreshold,
				DistanceToThreshold: distance.Neg(), // over the line
				RiskStatus:          risk,
				TierLevel:           tierName(row.IRMAATier),
				AnnualCost:          cost,
			})
		case domain.IRMAARiskWarning:
			analysis.YearsWithWarnings = append(analysis.YearsWithWarnings, row.Year)
			analysis.HighRiskYears = append(analysis.HighRiskYears, domain.IRMAAYearRisk{
				Year:                row.Year,
				MAGI:                row.IRMAAMAGI,
				Threshold:           row.IRMAAFirstThreshold,
				DistanceToThreshold: distance,
				RiskStatus:          risk,
				TierLevel:           tierName(0),
				AnnualCost:          decimal.Zero,
			})
		}
	}

	analysis.Recommendations = irmaaRecommendations(analysis)
	return analysis
}

func irmaaRecommendations(analysis *domain.IRMAAAnalysis) []string {
	switch {
	case len(analysis.YearsWithBreaches) > 0:
		return []string{
			"IRMAA surcharges apply; consider lowering MAGI in the affected years",
			"Roth conversions fit best in low-MAGI years before Social Security starts",
			"Traditional withdrawals can be timed to stay under a tier",
		}
	case len(analysis.YearsWithWarnings) > 0:
		return []string{
			"MAGI comes within $10,000 of the first IRMAA tier; monitor closely",
			"Small changes to traditional withdrawals could prevent a surcharge",
		}
	default:
		return []string{"No IRMAA concerns: MAGI stays well below the first tier"}
	}
}
