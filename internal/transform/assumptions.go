package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// SetRateOfReturn changes the growth rate of one source, or of every
// balance-carrying source when SourceID is empty.
type SetRateOfReturn struct {
	SourceID string
	Rate     decimal.Decimal
}

func (sr *SetRateOfReturn) Name() string {
	return "set_return"
}

func (sr *SetRateOfReturn) Description() string {
	target := "all accounts"
	if sr.SourceID != "" {
		target = sr.SourceID
	}
	return fmt.Sprintf("Set rate of return for %s to %s%%", target, sr.Rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
}

func (sr *SetRateOfReturn) Validate(base *domain.Input) error {
	if sr.Rate.LessThan(decimal.NewFromInt(-1)) {
		return NewTransformError(sr.Name(), "validate", "rate of return cannot be less than -100%", nil)
	}
	if base == nil {
		return NewTransformError(sr.Name(), "validate", "base input cannot be nil", nil)
	}
	if sr.SourceID != "" && findSource(base, sr.SourceID) < 0 {
		return NewTransformError(sr.Name(), "validate", fmt.Sprintf("source %s not found", sr.SourceID), nil)
	}
	return nil
}

func (sr *SetRateOfReturn) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	for i := range modified.Assets {
		src := &modified.Assets[i]
		if (sr.SourceID == "" && src.Type.HasBalance()) || src.Key() == sr.SourceID {
			src.RateOfReturn = sr.Rate
		}
	}
	return modified, nil
}
