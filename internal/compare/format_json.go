package compare

import (
	"encoding/json"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
	// Series includes the per-source balance series, matching the CSV
	// formatter's FormatSeries output.
	Series bool
}

// jsonComparison shadows the result's series so it can be left out, and adds
// the display label of every metric.
type jsonComparison struct {
	*domain.ComparisonResult
	Series       *domain.AssetSeries         `json:"assetSeries,omitempty"`
	MetricLabels map[domain.MetricKey]string `json:"metricLabels"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(result *domain.ComparisonResult) (string, error) {
	doc := jsonComparison{
		ComparisonResult: result,
		MetricLabels:     make(map[domain.MetricKey]string, len(result.Metrics)),
	}
	for key := range result.Metrics {
		doc.MetricLabels[key] = MetricLabel(key)
	}
	if jf.Series {
		doc.Series = &result.Series
	}

	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
