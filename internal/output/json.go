package output

import (
	"encoding/json"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// JSONFormatter writes the run result as JSON.
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.RunResult) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}
