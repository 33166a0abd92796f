package domain

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// FilingStatus is the federal filing status of the household.
type FilingStatus string

const (
	FilingSingle            FilingStatus = "single"
	FilingMarriedJointly    FilingStatus = "married_filing_jointly"
	FilingMarriedSeparately FilingStatus = "married_filing_separately"
	FilingHeadOfHousehold   FilingStatus = "head_of_household"
	FilingQualifyingWidow   FilingStatus = "qualifying_widow"
)

var filingLabels = map[FilingStatus]string{
	FilingSingle:            "Single",
	FilingMarriedJointly:    "Married Filing Jointly",
	FilingMarriedSeparately: "Married Filing Separately",
	FilingHeadOfHousehold:   "Head of Household",
	FilingQualifyingWidow:   "Qualifying Widow(er)",
}

// ParseFilingStatus accepts the canonical snake_case value or the label used
// in the tax tables.
func ParseFilingStatus(s string) (FilingStatus, error) {
	norm := strings.TrimSpace(s)
	for status, label := range filingLabels {
		if strings.EqualFold(norm, string(status)) || strings.EqualFold(norm, label) {
			return status, nil
		}
	}
	return "", eris.Wrapf(ErrConfig, "unknown filing status %q", s)
}

// UnmarshalText lets YAML and JSON inputs use either spelling.
func (f *FilingStatus) UnmarshalText(text []byte) error {
	status, err := ParseFilingStatus(string(text))
	if err != nil {
		return err
	}
	*f = status
	return nil
}

// TableLabel returns the label the CSV tables key on.
func (f FilingStatus) TableLabel() string {
	if label, ok := filingLabels[f]; ok {
		return label
	}
	return string(f)
}

// IsJoint reports whether thresholds for married couples apply.
func (f FilingStatus) IsJoint() bool {
	return f == FilingMarriedJointly || f == FilingQualifyingWidow
}

// Valid reports whether f is one of the known statuses.
func (f FilingStatus) Valid() bool {
	_, ok := filingLabels[f]
	return ok
}

// Owner identifies which person in the household holds an income source.
type Owner string

const (
	OwnerPrimary Owner = "primary"
	OwnerSpouse  Owner = "spouse"
)

// Person holds the demographic facts the engine needs for one individual.
type Person struct {
	Name      string    `yaml:"name" json:"name"`
	BirthDate time.Time `yaml:"birth_date" json:"birth_date"`
	Blind     bool      `yaml:"blind" json:"blind"`
	Dependent bool      `yaml:"dependent" json:"dependent"`
}

// AgeIn returns the calendar-year age of the person in year.
func (p Person) AgeIn(year int) int {
	return year - p.BirthDate.Year()
}

// Household is the primary person, an optional spouse and the shared tax facts.
type Household struct {
	Primary      Person       `yaml:"primary" json:"primary"`
	Spouse       *Person      `yaml:"spouse,omitempty" json:"spouse,omitempty"`
	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`
	State        string       `yaml:"state" json:"state"`
}

// Person returns the person who owns sources tagged with owner, or nil.
func (h *Household) Person(owner Owner) *Person {
	if owner == OwnerSpouse {
		return h.Spouse
	}
	return &h.Primary
}

// Clone returns a deep copy.
func (h Household) Clone() Household {
	if h.Spouse != nil {
		spouse := *h.Spouse
		h.Spouse = &spouse
	}
	return h
}

// Validate checks the household for missing or contradictory fields.
func (h *Household) Validate() error {
	if h.Primary.BirthDate.IsZero() {
		return NewConfigError("household.primary.birth_date", "is required")
	}
	if !h.FilingStatus.Valid() {
		return NewConfigError("household.filing_status", "unknown value %q", h.FilingStatus)
	}
	if h.Spouse != nil && h.Spouse.BirthDate.IsZero() {
		return NewConfigError("household.spouse.birth_date", "is required when a spouse is present")
	}
	if h.FilingStatus == FilingMarriedJointly && h.Spouse == nil {
		return NewConfigError("household.spouse", "married_filing_jointly requires a spouse")
	}
	return nil
}
