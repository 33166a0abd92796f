package compare

import (
	"sort"

	"github.com/shopspring/decimal"
)

func sortedSeriesNames(m map[string][]decimal.Decimal) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func valueAt(values []decimal.Decimal, i int) string {
	if i >= len(values) {
		return ""
	}
	return values[i].StringFixed(2)
}
