package compare

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/transform"
)

// PreRetirementSourceID is the key of the wage stream that carries
// ConversionParams.PreRetirementIncome in both runs.
const PreRetirementSourceID = "pre_retirement_income"

// Comparator runs a baseline and a Roth conversion projection from one input
// and compares their lifetime metrics.
type Comparator struct {
	Engine *calculation.CalculationEngine
	// Concurrent runs both projections at once. Output order is fixed either way.
	Concurrent bool
}

// NewComparator creates a serial comparator over engine.
func NewComparator(engine *calculation.CalculationEngine) *Comparator {
	return &Comparator{Engine: engine}
}

// Process builds both scenarios, projects them and returns the comparison.
// The caller's input is never modified.
func (c *Comparator) Process(ctx context.Context, input *domain.Input, params domain.ConversionParams) (*domain.ComparisonResult, error) {
	if input == nil {
		return nil, domain.NewConfigError("input", "is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	baseline, err := BaselineInput(input, params)
	if err != nil {
		return nil, err
	}
	conversion, withdrawalStart, err := ConversionInput(input, params)
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.RunResult, 2)
	inputs := []*domain.Input{baseline, conversion}
	names := []string{"baseline", "conversion"}
	if c.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i := range inputs {
			i := i
			g.Go(func() error {
				res, err := c.Engine.RunScenario(gctx, inputs[i])
				if err != nil {
					return eris.Wrapf(err, "%s projection", names[i])
				}
				runs[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range inputs {
			res, err := c.Engine.RunScenario(ctx, inputs[i])
			if err != nil {
				return nil, eris.Wrapf(err, "%s projection", names[i])
			}
			runs[i] = res
		}
	}
	runs[0].Name = "Baseline"
	runs[1].Name = "Roth Conversion"

	estate, err := c.estateTerms(input, runs[0])
	if err != nil {
		return nil, err
	}
	calc := NewMetricsCalculator(estate)
	metrics := CompareMetrics(calc.CalculateMetrics(runs[0]), calc.CalculateMetrics(runs[1]))

	return &domain.ComparisonResult{
		Baseline:                runs[0],
		Conversion:              runs[1],
		Metrics:                 metrics,
		Series:                  BuildAssetSeries(runs[0], runs[1]),
		Schedule:                ConversionSchedule(runs[1]),
		RothWithdrawalStartYear: withdrawalStart,
	}, nil
}

// estateTerms loads the exemption and rate for the final projected year. A
// scenario exemption overrides the table value.
func (c *Comparator) estateTerms(input *domain.Input, run *domain.RunResult) (EstateTerms, error) {
	year := run.Summary.LastYear
	if year == 0 {
		year = input.Scenario.StartYear
	}
	exemption, rate, err := c.Engine.EstateTerms(year)
	if err != nil {
		return EstateTerms{}, err
	}
	if input.Scenario.EstateExemption != nil {
		exemption = *input.Scenario.EstateExemption
	}
	return EstateTerms{Exemption: exemption, Rate: rate}, nil
}

// preRetirementIncome adds the salary stream both runs share.
func preRetirementIncome(params domain.ConversionParams) transform.ScenarioTransform {
	return &transform.AddWageIncome{
		ID:     PreRetirementSourceID,
		Label:  "Pre-Retirement Income",
		Annual: params.PreRetirementIncome,
	}
}

// BaselineInput copies input with every Roth field cleared.
func BaselineInput(input *domain.Input, params domain.ConversionParams) (*domain.Input, error) {
	out, err := transform.ApplyTransforms(input, []transform.ScenarioTransform{
		preRetirementIncome(params),
		&transform.RemoveRothConversion{},
	})
	if err != nil {
		return nil, err
	}
	out.Scenario.Name = "Baseline"
	return out, nil
}

// ConversionInput copies input, installs the conversion plan and appends a
// synthetic Roth. It also returns the effective Roth withdrawal start year,
// moved past the last conversion year when the two overlap.
func ConversionInput(input *domain.Input, params domain.ConversionParams) (*domain.Input, int, error) {
	out, err := transform.ApplyTransforms(input, []transform.ScenarioTransform{
		preRetirementIncome(params),
		&transform.EnableRothConversion{Params: params},
	})
	if err != nil {
		return nil, 0, err
	}
	out.Scenario.Name = "Roth Conversion"
	return out, out.Scenario.RothWithdrawalStartYear, nil
}
