package transform

import (
	"fmt"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// PostponeRetirement delays a person's retirement by whole years, for
// "work one more year" comparisons.
type PostponeRetirement struct {
	Owner domain.Owner
	Years int
}

func (pt *PostponeRetirement) Name() string {
	return "postpone_retirement"
}

func (pt *PostponeRetirement) Description() string {
	return fmt.Sprintf("Postpone %s retirement by %d years", pt.Owner, pt.Years)
}

func (pt *PostponeRetirement) Validate(base *domain.Input) error {
	if err := validateOwner(pt.Name(), base, pt.Owner); err != nil {
		return err
	}
	if pt.Years < 0 {
		return NewTransformError(pt.Name(), "validate", fmt.Sprintf("years must be non-negative, got %d", pt.Years), nil)
	}
	if base.RetirementAge(pt.Owner) == 0 {
		return NewTransformError(pt.Name(), "validate", fmt.Sprintf("%s has no retirement age", pt.Owner), nil)
	}
	return nil
}

func (pt *PostponeRetirement) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	setRetirementAge(modified, pt.Owner, modified.RetirementAge(pt.Owner)+pt.Years)
	return modified, nil
}

// SetRetirementAge sets a person's retirement age outright.
type SetRetirementAge struct {
	Owner domain.Owner
	Age   int
}

func (sr *SetRetirementAge) Name() string {
	return "set_retirement_age"
}

func (sr *SetRetirementAge) Description() string {
	return fmt.Sprintf("Set %s retirement age to %d", sr.Owner, sr.Age)
}

func (sr *SetRetirementAge) Validate(base *domain.Input) error {
	if err := validateOwner(sr.Name(), base, sr.Owner); err != nil {
		return err
	}
	if sr.Age < 40 || sr.Age > 80 {
		return NewTransformError(sr.Name(), "validate", fmt.Sprintf("retirement age must be between 40 and 80, got %d", sr.Age), nil)
	}
	return nil
}

func (sr *SetRetirementAge) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	setRetirementAge(modified, sr.Owner, sr.Age)
	return modified, nil
}

func setRetirementAge(in *domain.Input, owner domain.Owner, age int) {
	if owner == domain.OwnerSpouse {
		in.Scenario.SpouseRetirementAge = age
		return
	}
	// the spouse follows the primary unless configured separately
	if in.Scenario.SpouseRetirementAge == in.Scenario.RetirementAge {
		in.Scenario.SpouseRetirementAge = age
	}
	in.Scenario.RetirementAge = age
}
