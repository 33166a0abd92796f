package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// Formatter renders a run result in one output format.
type Formatter interface {
	Name() string
	Format(result *domain.RunResult) ([]byte, error)
}

// Formats lists the names accepted by NewFormatter.
var Formats = []string{"console", "csv", "json", "xlsx"}

// NewFormatter returns the formatter for name.
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "console", "table":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	case "xlsx":
		return XLSXFormatter{}, nil
	default:
		return nil, eris.Errorf("unsupported format: %s", name)
	}
}

// GenerateReport renders result with the named formatter and writes it to w.
func GenerateReport(w io.Writer, result *domain.RunResult, format string) error {
	f, err := NewFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(result)
	if err != nil {
		return eris.Wrapf(err, "format %s", f.Name())
	}
	_, err = w.Write(data)
	return err
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	whole := amount.StringFixed(2)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-3:]
	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s%s", sign, sb.String(), frac)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// sourceColumns lists source keys in the order they appear in the run, with
// any key found only in rows appended in lexical order.
func sourceColumns(result *domain.RunResult, pick func(domain.YearRow) map[string]decimal.Decimal) []string {
	seen := make(map[string]bool)
	var keys []string
	inRows := make(map[string]bool)
	for _, row := range result.Rows {
		for k := range pick(row) {
			inRows[k] = true
		}
	}
	for _, s := range result.Sources {
		if inRows[s.Key] && !seen[s.Key] {
			seen[s.Key] = true
			keys = append(keys, s.Key)
		}
	}
	var extra []string
	for k := range inRows {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func ageString(age *int) string {
	if age == nil {
		return ""
	}
	return fmt.Sprintf("%d", *age)
}
