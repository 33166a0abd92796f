package transform

import (
	"fmt"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// SetMortalityAge sets the age at which a person's last projected year falls.
type SetMortalityAge struct {
	Owner domain.Owner
	Age   int
}

func (sm *SetMortalityAge) Name() string {
	return "set_mortality"
}

func (sm *SetMortalityAge) Description() string {
	return fmt.Sprintf("Set %s mortality age to %d", sm.Owner, sm.Age)
}

func (sm *SetMortalityAge) Validate(base *domain.Input) error {
	if err := validateOwner(sm.Name(), base, sm.Owner); err != nil {
		return err
	}
	if sm.Age < 50 || sm.Age > 120 {
		return NewTransformError(sm.Name(), "validate", fmt.Sprintf("mortality age must be between 50 and 120, got %d", sm.Age), nil)
	}
	if retire := base.RetirementAge(sm.Owner); retire > sm.Age {
		return NewTransformError(sm.Name(), "validate",
			fmt.Sprintf("mortality age %d precedes retirement age %d", sm.Age, retire), nil)
	}
	return nil
}

func (sm *SetMortalityAge) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	if sm.Owner == domain.OwnerSpouse {
		modified.Scenario.SpouseMortalityAge = sm.Age
	} else {
		modified.Scenario.MortalityAge = sm.Age
	}
	return modified, nil
}
