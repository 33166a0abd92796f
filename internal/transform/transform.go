// Package transform holds composable edits to a projection input. The Roth
// comparator builds its baseline and conversion inputs from them, and the
// CLI exposes them for what-if runs.
package transform

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// ScenarioTransform is one edit to an input. Apply never mutates base.
type ScenarioTransform interface {
	// Apply returns a modified copy of base.
	Apply(base *domain.Input) (*domain.Input, error)

	// Name returns a short identifier, e.g. "postpone_retirement".
	Name() string

	// Description returns a human-readable summary of the edit.
	Description() string

	// Validate checks the parameters against base without applying them.
	Validate(base *domain.Input) error
}

// ApplyTransforms validates and applies transforms in order, each one
// receiving the output of the previous. With no transforms it returns a
// copy of base.
func ApplyTransforms(base *domain.Input, transforms []ScenarioTransform) (*domain.Input, error) {
	if base == nil {
		return nil, eris.New("base input cannot be nil")
	}

	current := base.Clone()
	for i, t := range transforms {
		if t == nil {
			return nil, eris.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return nil, eris.Wrapf(err, "transform %s validation failed", t.Name())
		}
		next, err := t.Apply(current)
		if err != nil {
			return nil, eris.Wrapf(err, "transform %s failed", t.Name())
		}
		current = next
	}
	return current, nil
}

// TransformError reports an invalid or failed transform.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// Is matches domain.ErrConfig: a bad transform is a configuration error.
func (e *TransformError) Is(target error) bool { return target == domain.ErrConfig }

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

// validateOwner checks that owner names a person present in the household.
func validateOwner(name string, base *domain.Input, owner domain.Owner) error {
	if base == nil {
		return NewTransformError(name, "validate", "base input cannot be nil", nil)
	}
	switch owner {
	case domain.OwnerPrimary:
		return nil
	case domain.OwnerSpouse:
		if base.Household.Spouse == nil {
			return NewTransformError(name, "validate", "household has no spouse", nil)
		}
		return nil
	default:
		return NewTransformError(name, "validate", fmt.Sprintf("owner must be primary or spouse, got %q", owner), nil)
	}
}

// findSource returns the index of the source keyed id, or -1.
func findSource(in *domain.Input, id string) int {
	for i, src := range in.Assets {
		if src.Key() == id {
			return i
		}
	}
	return -1
}
