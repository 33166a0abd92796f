package transform

import (
	"fmt"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// DelaySSClaim changes the claiming age of one Social Security source.
// Each year past full retirement age adds 8% up to 70.
type DelaySSClaim struct {
	SourceID string
	NewAge   int
}

func (dss *DelaySSClaim) Name() string {
	return "delay_ss_claim"
}

func (dss *DelaySSClaim) Description() string {
	return fmt.Sprintf("Claim %s Social Security at %d", dss.SourceID, dss.NewAge)
}

func (dss *DelaySSClaim) Validate(base *domain.Input) error {
	if dss.SourceID == "" {
		return NewTransformError(dss.Name(), "validate", "source id cannot be empty", nil)
	}
	if dss.NewAge < 62 || dss.NewAge > 70 {
		return NewTransformError(dss.Name(), "validate", fmt.Sprintf("SS start age must be between 62 and 70, got %d", dss.NewAge), nil)
	}
	if base == nil {
		return NewTransformError(dss.Name(), "validate", "base input cannot be nil", nil)
	}
	i := findSource(base, dss.SourceID)
	if i < 0 {
		return NewTransformError(dss.Name(), "validate", fmt.Sprintf("source %s not found", dss.SourceID), nil)
	}
	if base.Assets[i].Type != domain.IncomeSocialSecurity {
		return NewTransformError(dss.Name(), "validate", fmt.Sprintf("source %s is not social security", dss.SourceID), nil)
	}
	return nil
}

func (dss *DelaySSClaim) Apply(base *domain.Input) (*domain.Input, error) {
	modified := base.Clone()
	src := &modified.Assets[findSource(modified, dss.SourceID)]
	src.ClaimingAge = dss.NewAge
	src.WithdrawalStartAge = dss.NewAge
	return modified, nil
}
