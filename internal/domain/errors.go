package domain

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Sentinel errors for the three failure kinds. Typed errors below match them
// with errors.Is so callers can branch without type assertions.
var (
	ErrConfig       = eris.New("configuration error")
	ErrTableMissing = eris.New("tax table missing")
	ErrTableSchema  = eris.New("tax table schema error")
)

// ConfigError reports a missing or contradictory input field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// Is matches ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TableMissingError reports that no table exists at or below the requested year.
type TableMissingError struct {
	Table        string
	Year         int
	FilingStatus string
}

func (e *TableMissingError) Error() string {
	if e.FilingStatus != "" {
		return fmt.Sprintf("tax table %s missing for year %d (%s)", e.Table, e.Year, e.FilingStatus)
	}
	return fmt.Sprintf("tax table %s missing for year %d", e.Table, e.Year)
}

func (e *TableMissingError) Is(target error) bool { return target == ErrTableMissing }

// TableSchemaError reports a missing column or an unparseable value.
type TableSchemaError struct {
	File   string
	Line   int
	Column string
	Reason string
}

func (e *TableSchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("tax table %s line %d column %q: %s", e.File, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("tax table %s column %q: %s", e.File, e.Column, e.Reason)
}

func (e *TableSchemaError) Is(target error) bool { return target == ErrTableSchema }

// WarningKind classifies a DomainWarning.
type WarningKind string

const (
	WarningTableFallback     WarningKind = "table_fallback"
	WarningWithdrawalClamped WarningKind = "withdrawal_clamped"
	WarningUnknownState      WarningKind = "unknown_state"
	WarningRMDTableEnd       WarningKind = "rmd_table_end"
)

// DomainWarning is a non-fatal condition attached to the first affected row.
type DomainWarning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Year    int         `json:"year" yaml:"year"`
	Message string      `json:"message" yaml:"message"`
}

func (w DomainWarning) String() string {
	return fmt.Sprintf("%d %s: %s", w.Year, w.Kind, w.Message)
}
