package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

func rmdTable(t *testing.T) taxdata.RMDTable {
	t.Helper()
	table, _, err := taxdata.Default().RMDTable(2025)
	require.NoError(t, err)
	return table
}

func TestRMDCalculator(t *testing.T) {
	tests := []struct {
		name     string
		balance  decimal.Decimal
		age      int
		expected string
	}{
		{"before the start age", d("500000"), 72, "0.00"},
		{"first RMD year", d("265000"), 73, "10000.00"},
		{"age 75", d("246000"), 75, "10000.00"},
		{"past the end of the table uses the last period", d("19000"), 120, "10000.00"},
		{"empty balance", decimal.Zero, 80, "0.00"},
	}

	calc := NewRMDCalculator(73, rmdTable(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.CalculateRMD(tt.balance, tt.age).StringFixed(2))
		})
	}
	assert.False(t, calc.IsRMDAge(72))
	assert.True(t, calc.IsRMDAge(73))
}
