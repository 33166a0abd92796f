package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

var (
	decimalOne    = decimal.NewFromInt(1)
	decimalZero   = decimal.Zero
	decimalTwelve = decimal.NewFromInt(12)
)

func onePlus(rate decimal.Decimal) decimal.Decimal {
	return decimalOne.Add(rate)
}

// projection is the state of one RunScenario call.
type projection struct {
	engine  *CalculationEngine
	in      *domain.Input
	ledger  *Ledger
	planner *ConversionPlanner
	owners  []domain.Owner
	// warned records warnings already attached so each is reported once.
	warned map[string]bool
}

func newProjection(ce *CalculationEngine, in *domain.Input) (*projection, error) {
	ledger, err := NewLedger(in.Assets, in.Scenario.RothGrowthRate)
	if err != nil {
		return nil, err
	}
	owners := []domain.Owner{domain.OwnerPrimary}
	if in.Household.Spouse != nil {
		owners = append(owners, domain.OwnerSpouse)
	}
	return &projection{
		engine:  ce,
		in:      in,
		ledger:  ledger,
		planner: NewConversionPlanner(&in.Scenario, in.Assets),
		owners:  owners,
		warned:  make(map[string]bool),
	}, nil
}

func (p *projection) context(year int) *yearContext {
	yc := &yearContext{
		year:      year,
		firstYear: p.in.Scenario.StartYear,
		ages:      make(map[domain.Owner]int, len(p.owners)),
		alive:     make(map[domain.Owner]bool, len(p.owners)),
		retireAge: make(map[domain.Owner]int, len(p.owners)),
	}
	for _, owner := range p.owners {
		yc.ages[owner] = p.in.Household.Person(owner).AgeIn(year)
		yc.alive[owner] = year <= p.in.MortalityYear(owner)
		yc.retireAge[owner] = p.in.RetirementAge(owner)
	}
	return yc
}

// filingStatus drops a married household to single once either spouse has died.
func (p *projection) filingStatus(yc *yearContext) domain.FilingStatus {
	status := p.in.Household.FilingStatus
	if status != domain.FilingMarriedJointly && status != domain.FilingMarriedSeparately {
		return status
	}
	for _, owner := range p.owners {
		if !yc.alive[owner] {
			return domain.FilingSingle
		}
	}
	return status
}

// note attaches a table fallback warning the first time a table falls back.
func (p *projection) note(row *domain.YearRow, src taxdata.Source) {
	w := src.Warning()
	if w == nil {
		return
	}
	key := string(w.Kind) + ":" + string(src.Table)
	if p.warned[key] {
		return
	}
	p.warned[key] = true
	row.Warnings = append(row.Warnings, *w)
}

func (p *projection) warnOnce(row *domain.YearRow, key string, w domain.DomainWarning) {
	if p.warned[key] {
		return
	}
	p.warned[key] = true
	row.Warnings = append(row.Warnings, w)
}

// projectYear runs the ledger operations and the tax pipeline for one year.
func (p *projection) projectYear(year int) (domain.YearRow, error) {
	data := p.engine.TaxData
	sc := &p.in.Scenario
	yc := p.context(year)
	status := p.filingStatus(yc)

	row := domain.YearRow{Year: year, FilingStatus: status}
	for _, owner := range p.owners {
		if !yc.alive[owner] {
			continue
		}
		age := yc.ages[owner]
		if owner == domain.OwnerPrimary {
			row.PrimaryAge = &age
		} else {
			row.SpouseAge = &age
		}
	}

	params, src, err := data.Parameters(year)
	if err != nil {
		return row, err
	}
	p.note(&row, src)
	fra, err := params.Int(taxdata.ParamSSFullRetirementAge)
	if err != nil {
		return row, err
	}
	rmdStart, err := params.Int(taxdata.ParamRMDStartAge)
	if err != nil {
		return row, err
	}
	rmdTable, src, err := data.RMDTable(year)
	if err != nil {
		return row, err
	}
	p.note(&row, src)

	// ledger operations, in order
	p.ledger.BeginYear()
	p.ledger.Contribute(yc)
	row.Warnings = append(row.Warnings, p.ledger.WithdrawScheduled(yc, NewSocialSecurityCalculator(fra, sc))...)
	rmdWarnings, enforced := p.ledger.ApplyRMD(yc, NewRMDCalculator(rmdStart, rmdTable))
	row.Warnings = append(row.Warnings, rmdWarnings...)
	row.RMDEnforced = enforced
	p.planner.Apply(year, p.ledger, yc.alive)
	if sc.RothWithdrawalAmount.IsPositive() && sc.RothWithdrawalStartYear > 0 && year >= sc.RothWithdrawalStartYear {
		p.ledger.WithdrawRoth(sc.RothWithdrawalAmount)
	}
	flows := p.ledger.Flows()

	row.Gross = flows.gross
	row.TotalGrossIncome = flows.totalGross
	row.SSGross = flows.ssGross
	row.RMDs = flows.rmds
	row.TotalRMD = flows.totalRMD
	row.Conversions = flows.conversions
	row.RothConversion = flows.converted
	row.RothWithdrawal = flows.rothDrawn

	// income measures
	thresholds, src, err := data.SSThresholds(year, status)
	if err != nil {
		return row, err
	}
	p.note(&row, src)
	agiExclSS := flows.ordinary.Add(flows.override)
	row.TaxExemptInterest = sc.TaxExemptInterest
	row.SSTaxable = TaxableSocialSecurity(flows.ssGross, agiExclSS, sc.TaxExemptInterest, thresholds)
	row.AGI = agiExclSS.Add(row.SSTaxable)
	row.MAGI = row.AGI.Add(sc.TaxExemptInterest)
	// IRMAA counts all of the benefit when Social Security is included and none
	// of it otherwise
	row.IRMAAMAGI = row.MAGI.Sub(row.SSTaxable)
	if sc.IncludeSSInIRMAA() {
		row.IRMAAMAGI = row.IRMAAMAGI.Add(row.SSGross)
	}

	// federal
	deduction, err := p.deduction(&row, yc, status, flows)
	if err != nil {
		return row, err
	}
	row.Deduction = deduction
	row.TaxableIncome = decimal.Max(decimalZero, row.AGI.Sub(deduction))
	brackets, src, err := data.Brackets(year, status)
	if err != nil {
		return row, err
	}
	p.note(&row, src)
	bracketIncome := decimal.Max(decimalZero, row.TaxableIncome.Sub(flows.override))
	federal, label := NewFederalTaxCalculator(brackets).CalculateFederalTax(bracketIncome)
	row.FederalTax = federal.Add(flows.overrideTax)
	row.TaxBracket = label

	// state
	if code := p.in.Household.State; code != "" {
		rule, src, err := data.StateRule(year, code)
		if err != nil {
			return row, err
		}
		p.note(&row, src)
		if !rule.Known {
			p.warnOnce(&row, "state:"+code, domain.DomainWarning{
				Kind:    domain.WarningUnknownState,
				Year:    year,
				Message: fmt.Sprintf("state %q is not in the state table; no state tax applied", code),
			})
		}
		row.StateTax = NewStateTaxCalculator(rule).CalculateStateTax(StateTaxInput{
			AGI:              row.AGI,
			FederalDeduction: deduction,
			StateDeduction:   sc.StateDeductionOverride,
			RetirementIncome: flows.retirement,
			SSTaxable:        row.SSTaxable,
		})
	}

	// medicare, per enrolled person
	if err := p.medicare(&row, yc, status); err != nil {
		return row, err
	}

	p.ledger.Grow()
	row.EndingBalances = p.ledger.EndingBalances()
	row.NetIncome = row.TotalGrossIncome.Sub(row.FederalTax).Sub(row.StateTax).Sub(row.TotalMedicare)

	if p.engine.Debug {
		p.engine.logger().Debugf("%d: gross=%s agi=%s magi=%s taxable=%s federal=%s (%s) state=%s medicare=%s net=%s",
			year, row.TotalGrossIncome.StringFixed(2), row.AGI.StringFixed(2), row.MAGI.StringFixed(2),
			row.TaxableIncome.StringFixed(2), row.FederalTax.StringFixed(2), row.TaxBracket,
			row.StateTax.StringFixed(2), row.TotalMedicare.StringFixed(2), row.NetIncome.StringFixed(2))
	}
	return row, nil
}

// deduction returns the federal deduction for the year: the custom override,
// zero when the standard deduction is switched off, or the standard amount
// plus one addition per living person aged 65 or over and per blind person.
// Standard amounts inflate from the table year at the threshold rate.
func (p *projection) deduction(row *domain.YearRow, yc *yearContext, status domain.FilingStatus, flows yearFlows) (decimal.Decimal, error) {
	sc := &p.in.Scenario
	if sc.DeductionPolicy == domain.DeductionCustom {
		return *sc.FederalDeductionOverride, nil
	}
	if !sc.UsesStandardDeduction() {
		return decimalZero, nil
	}
	std, src, err := p.engine.TaxData.StandardDeduction(yc.year, status)
	if err != nil {
		return decimalZero, err
	}
	p.note(row, src)
	std = taxdata.InflateDeduction(std, taxdata.ConstantFactor(sc.ThresholdInflationRate, src.Year, yc.year))

	amount := std.Amount
	primary := p.in.Household.Primary
	if primary.Dependent && !status.IsJoint() {
		params, _, err := p.engine.TaxData.Parameters(yc.year)
		if err != nil {
			return decimalZero, err
		}
		floor, err := params.Decimal(taxdata.ParamDependentMin)
		if err != nil {
			return decimalZero, err
		}
		addition, err := params.Decimal(taxdata.ParamDependentEarned)
		if err != nil {
			return decimalZero, err
		}
		amount = decimal.Min(amount, decimal.Max(floor, flows.earned.Add(addition)))
	}

	for _, owner := range p.owners {
		if !yc.alive[owner] {
			continue
		}
		person := p.in.Household.Person(owner)
		if yc.ages[owner] >= 65 {
			amount = amount.Add(std.Additional)
		}
		if person.Blind {
			amount = amount.Add(std.Additional)
		}
	}
	return amount, nil
}

// medicare charges base premiums and IRMAA surcharges for every living person
// at or past the Medicare age. Thresholds inflate from the table year at the
// threshold rate; premiums and surcharges at their Part B and Part D rates.
func (p *projection) medicare(row *domain.YearRow, yc *yearContext, status domain.FilingStatus) error {
	sc := &p.in.Scenario
	enrollees := 0
	for _, owner := range p.owners {
		if yc.alive[owner] && IsMedicareEligible(yc.ages[owner], sc.MedicareAge) {
			enrollees++
		}
	}
	row.MedicareEnrollees = enrollees
	if enrollees == 0 {
		return nil
	}

	data := p.engine.TaxData
	base, baseSrc, err := data.MedicareBase(yc.year)
	if err != nil {
		return err
	}
	p.note(row, baseSrc)
	tiers, tierSrc, err := data.IRMAATiers(yc.year, status)
	if err != nil {
		return err
	}
	p.note(row, tierSrc)

	tiers = taxdata.InflateIRMAATiers(tiers, taxdata.ConstantFactor(sc.ThresholdInflationRate, tierSrc.Year, yc.year))
	row.IRMAATier, row.IRMAAFirstThreshold, row.IRMAANextThreshold = IRMAAPosition(row.IRMAAMAGI, tiers)
	mc := NewMedicareCalculator(base, tiers)
	mc.Scale = sc.IRMAAScale()
	mc.PartBFactor = taxdata.ConstantFactor(sc.PartBInflationRate, baseSrc.Year, yc.year)
	mc.PartDFactor = taxdata.ConstantFactor(sc.PartDInflationRate, baseSrc.Year, yc.year)

	cost := mc.CalculateAnnualCost(row.IRMAAMAGI)
	n := decimal.NewFromInt(int64(enrollees))
	row.MedicarePartB = cost.PartB.Mul(n)
	row.MedicarePartD = cost.PartD.Mul(n)
	row.IRMAAPartB = cost.IRMAAPartB.Mul(n)
	row.IRMAAPartD = cost.IRMAAPartD.Mul(n)
	row.TotalMedicare = cost.Total().Mul(n)
	row.IRMAASurcharge = row.TotalIRMAA().IsPositive()
	return nil
}
