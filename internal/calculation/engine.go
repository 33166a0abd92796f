package calculation

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

// CalculationEngine runs year-by-year projections of a household.
type CalculationEngine struct {
	TaxData *taxdata.Loader
	Logger  Logger
	Debug   bool // Log per-year intermediate values
}

// NewCalculationEngine creates an engine over the embedded tax tables.
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithTables(taxdata.Default())
}

// NewCalculationEngineWithTables creates an engine over loader.
func NewCalculationEngineWithTables(loader *taxdata.Loader) *CalculationEngine {
	return &CalculationEngine{
		TaxData: loader,
		Logger:  NopLogger{},
	}
}

// SetLogger replaces the engine logger; nil restores the no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// RunScenario projects input from its start year through the last mortality
// year. The input is deep-copied first and is never modified. A cancelled
// context aborts the run without a partial result.
func (ce *CalculationEngine) RunScenario(ctx context.Context, input *domain.Input) (*domain.RunResult, error) {
	if input == nil {
		return nil, domain.NewConfigError("", "input is required")
	}
	if ce.TaxData == nil {
		return nil, eris.New("calculation engine has no tax data")
	}
	in := input.Clone()
	if err := in.Prepare(); err != nil {
		return nil, err
	}

	run, err := newProjection(ce, in)
	if err != nil {
		return nil, err
	}

	first, last := in.Scenario.StartYear, in.LastYear()
	log := ce.logger()
	log.Infof("projecting %q from %d to %d with %d sources", in.Scenario.Name, first, last, len(in.Assets))

	rows := make([]domain.YearRow, 0, last-first+1)
	for year := first; year <= last; year++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrapf(err, "projection cancelled at %d", year)
		}
		row, err := run.projectYear(year)
		if err != nil {
			return nil, eris.Wrapf(err, "projecting year %d", year)
		}
		rows = append(rows, RoundRow(row))
	}

	result := &domain.RunResult{
		Name:    in.Scenario.Name,
		Rows:    rows,
		Sources: run.ledger.Sources(),
	}
	result.Summary = Summarize(rows)
	for _, w := range result.Warnings() {
		log.Warnf("%s", w)
	}
	return result, nil
}

// EstateTerms returns the estate tax exemption and rate in force for year.
func (ce *CalculationEngine) EstateTerms(year int) (exemption, rate decimal.Decimal, err error) {
	if ce.TaxData == nil {
		return decimal.Zero, decimal.Zero, eris.New("calculation engine has no tax data")
	}
	params, _, err := ce.TaxData.Parameters(year)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if exemption, err = params.Decimal(taxdata.ParamEstateExemption); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if rate, err = params.Decimal(taxdata.ParamEstateRate); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return exemption, rate, nil
}
