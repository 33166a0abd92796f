package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

func threeTiers() []taxdata.IRMAATier {
	return []taxdata.IRMAATier{
		{Threshold: d("106000"), PartB: d("74"), PartD: d("13.7")},
		{Threshold: d("133000"), PartB: d("185"), PartD: d("35.3")},
		{Threshold: d("167000"), PartB: d("295.9"), PartD: d("57")},
	}
}

func TestIRMAAPosition(t *testing.T) {
	tests := []struct {
		name          string
		magi          string
		expectedLevel int
		expectedNext  string
	}{
		{"well below", "50000", 0, "106000"},
		{"exactly on the first threshold", "106000", 0, "106000"},
		{"just over the first threshold", "106000.01", 1, "133000"},
		{"second tier", "150000", 2, "167000"},
		{"past the top tier", "500000", 3, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, first, next := IRMAAPosition(d(tt.magi), threeTiers())
			assert.Equal(t, tt.expectedLevel, level)
			assert.True(t, first.Equal(d("106000")))
			assert.True(t, next.Equal(d(tt.expectedNext)), "next threshold: %s", next)
		})
	}

	level, first, next := IRMAAPosition(d("200000"), nil)
	assert.Zero(t, level)
	assert.True(t, first.IsZero())
	assert.True(t, next.IsZero())
}

func irmaaRow(year int, magi string, enrollees int) domain.YearRow {
	row := domain.YearRow{Year: year, IRMAAMAGI: d(magi), MedicareEnrollees: enrollees}
	if enrollees > 0 {
		row.IRMAATier, row.IRMAAFirstThreshold, row.IRMAANextThreshold = IRMAAPosition(row.IRMAAMAGI, threeTiers())
		if row.IRMAATier > 0 {
			tier := threeTiers()[row.IRMAATier-1]
			row.IRMAAPartB = tier.PartB.Mul(decimalTwelve)
			row.IRMAAPartD = tier.PartD.Mul(decimalTwelve)
			row.IRMAASurcharge = true
		}
	}
	return row
}

func TestCalculateIRMAARiskStatus(t *testing.T) {
	tests := []struct {
		name             string
		row              domain.YearRow
		expectedRisk     domain.IRMAARisk
		expectedDistance string
	}{
		{"not on Medicare", irmaaRow(2030, "250000", 0), domain.IRMAARiskSafe, "0"},
		{"comfortably below", irmaaRow(2030, "80000", 1), domain.IRMAARiskSafe, "26000"},
		{"within the warning band", irmaaRow(2030, "96000", 1), domain.IRMAARiskWarning, "10000"},
		{"over the first tier", irmaaRow(2030, "120000", 1), domain.IRMAARiskBreach, "13000"},
		{"past the top tier", irmaaRow(2030, "400000", 2), domain.IRMAARiskBreach, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk, distance := CalculateIRMAARiskStatus(&tt.row)
			assert.Equal(t, tt.expectedRisk, risk)
			assert.True(t, distance.Equal(d(tt.expectedDistance)), "distance: %s", distance)
		})
	}
}

func TestAnalyzeIRMAARisk(t *testing.T) {
	rows := []domain.YearRow{
		irmaaRow(2029, "120000", 0),
		irmaaRow(2030, "80000", 1),
		irmaaRow(2031, "100000", 1),
		irmaaRow(2032, "140000", 1),
		irmaaRow(2033, "110000", 1),
	}

	analysis := AnalyzeIRMAARisk(rows)
	require.NotNil(t, analysis)

	assert.Equal(t, []int{2032, 2033}, analysis.YearsWithBreaches)
	assert.Equal(t, []int{2031}, analysis.YearsWithWarnings)
	assert.Equal(t, 2032, analysis.FirstBreachYear)
	expectedCost := rows[3].TotalIRMAA().Add(rows[4].TotalIRMAA())
	assert.True(t, analysis.TotalIRMAACost.Equal(expectedCost))

	require.Len(t, analysis.HighRiskYears, 3)
	assert.Equal(t, "Tier2", analysis.HighRiskYears[1].TierLevel)
	assert.True(t, analysis.HighRiskYears[1].DistanceToThreshold.Equal(d("-27000")))
	assert.Equal(t, "None", analysis.HighRiskYears[0].TierLevel)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestAnalyzeIRMAARisk_NoConcerns(t *testing.T) {
	analysis := AnalyzeIRMAARisk([]domain.YearRow{irmaaRow(2030, "40000", 2)})
	assert.Empty(t, analysis.YearsWithBreaches)
	assert.Empty(t, analysis.YearsWithWarnings)
	assert.Zero(t, analysis.FirstBreachYear)
	assert.True(t, analysis.TotalIRMAACost.IsZero())
	assert.Len(t, analysis.Recommendations, 1)
}

func TestAnalyzeIRMAARisk_FromEngineRun(t *testing.T) {
	result := run(t, singleRetireeInput())
	analysis := AnalyzeIRMAARisk(result.Rows)
	assert.Contains(t, analysis.YearsWithBreaches, 2050)
	assert.True(t, analysis.TotalIRMAACost.Equal(result.Summary.TotalIRMAA))
	for _, year := range analysis.YearsWithBreaches {
		assert.True(t, rowFor(t, result, year).IRMAASurcharge)
	}
}
