package calculation

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// SyntheticRothKey is the key of the Roth account created to receive
// conversions when the input does not carry one.
const SyntheticRothKey = "synthetic_roth"

// ledgerEntry is the per-run mutable state of one source.
type ledgerEntry struct {
	src       domain.IncomeSource
	key       string
	tracked   bool // carries a balance that contributes, withdraws and grows
	synthetic bool
	funded    bool // synthetic Roth has received a conversion

	balance decimal.Decimal
	start   decimal.Decimal // prior year-end balance

	// flows for the current year
	contribution   decimal.Decimal
	withdrawal     decimal.Decimal
	rmdRequired    decimal.Decimal
	rmdTopUp       decimal.Decimal
	conversionOut  decimal.Decimal
	conversionIn   decimal.Decimal
	rothWithdrawal decimal.Decimal
	excludedNow    decimal.Decimal

	annuitized   bool
	annuityBasis decimal.Decimal
	excluded     decimal.Decimal // cumulative excluded annuity principal
	converted    decimal.Decimal // cumulative converted out
	clampWarned  bool
	rmdEndWarned bool
}

func (e *ledgerEntry) gross() decimal.Decimal {
	return e.withdrawal.Add(e.rmdTopUp).Add(e.rothWithdrawal)
}

// Ledger owns the mutable balances of one run. It is created from a deep copy
// of the input sources and never touches the caller's data.
type Ledger struct {
	entries []*ledgerEntry
	byKey   map[string]*ledgerEntry
	roth    *ledgerEntry
	// rothGrowth is the growth rate of the synthetic Roth.
	rothGrowth decimal.Decimal
}

// yearContext is what the ledger needs to know about the household in one year.
type yearContext struct {
	year      int
	firstYear int
	ages      map[domain.Owner]int
	alive     map[domain.Owner]bool
	retireAge map[domain.Owner]int
}

// NewLedger builds the ledger from sources. An input source of type
// synthetic_roth becomes the conversion target; otherwise one is created on
// the first conversion.
func NewLedger(sources []domain.IncomeSource, rothGrowth decimal.Decimal) (*Ledger, error) {
	l := &Ledger{
		byKey:      make(map[string]*ledgerEntry, len(sources)),
		rothGrowth: rothGrowth,
	}
	for _, src := range domain.CloneSources(sources) {
		if !src.Type.Valid() {
			return nil, eris.Wrapf(domain.ErrConfig, "source %q has unknown income type %q", src.Key(), src.Type)
		}
		e := &ledgerEntry{
			src:     src,
			key:     src.Key(),
			tracked: tracksBalance(src),
			balance: src.CurrentBalance,
		}
		if src.Type == domain.IncomeSyntheticRoth {
			e.synthetic = true
			e.funded = src.CurrentBalance.IsPositive()
			if l.roth == nil {
				l.roth = e
			}
		}
		l.entries = append(l.entries, e)
		l.byKey[e.key] = e
	}
	return l, nil
}

func tracksBalance(src domain.IncomeSource) bool {
	switch src.Type {
	case domain.IncomeSocialSecurity, domain.IncomePension, domain.IncomeWage, domain.IncomeRental:
		return false
	case domain.IncomeLifeInsuranceLoan, domain.IncomeOtherTaxable, domain.IncomeOtherTaxFree:
		return src.CurrentBalance.IsPositive() || src.MonthlyContribution.IsPositive()
	}
	return true
}

// Sources lists every entry, including a synthetic Roth once created.
func (l *Ledger) Sources() []domain.SourceInfo {
	out := make([]domain.SourceInfo, 0, len(l.entries))
	for _, e := range l.entries {
		if e.synthetic && !e.funded {
			continue
		}
		out = append(out, domain.SourceInfo{Key: e.key, Name: e.src.Name, Type: e.src.Type, Owner: e.src.Owner})
	}
	return out
}

// Balance returns the current balance for key.
func (l *Ledger) Balance(key string) decimal.Decimal {
	if e, ok := l.byKey[key]; ok {
		return e.balance
	}
	return decimal.Zero
}

// BeginYear resets the per-year flows and records opening balances.
func (l *Ledger) BeginYear() {
	for _, e := range l.entries {
		e.start = e.balance
		e.contribution = decimal.Zero
		e.withdrawal = decimal.Zero
		e.rmdRequired = decimal.Zero
		e.rmdTopUp = decimal.Zero
		e.conversionOut = decimal.Zero
		e.conversionIn = decimal.Zero
		e.rothWithdrawal = decimal.Zero
		e.excludedNow = decimal.Zero
	}
}

// Contribute adds twelve monthly contributions plus the annual employer match
// while the owner is alive and younger than the last contribution age, or the
// retirement age when none is set.
func (l *Ledger) Contribute(yc *yearContext) {
	for _, e := range l.entries {
		if !e.tracked || !e.src.IsContributing || e.annuitized || !yc.alive[e.src.Owner] {
			continue
		}
		age := yc.ages[e.src.Owner]
		if age < e.src.AgeEstablished {
			continue
		}
		limit := e.src.AgeLastContribution
		if limit == 0 {
			limit = yc.retireAge[e.src.Owner]
		}
		if age >= limit {
			continue
		}
		amount := e.src.MonthlyContribution.Mul(decimalTwelve).Add(e.src.EmployerMatch)
		e.contribution = amount
		e.balance = e.balance.Add(amount)
	}
}

// WithdrawScheduled takes every source's scheduled gross for the year. Balance
// sources are clamped to what is left and report the clamp once.
func (l *Ledger) WithdrawScheduled(yc *yearContext, ssc *SocialSecurityCalculator) []domain.DomainWarning {
	var warnings []domain.DomainWarning
	for _, e := range l.entries {
		if e.synthetic || !yc.alive[e.src.Owner] {
			continue
		}
		age := yc.ages[e.src.Owner]
		amount := scheduledAmount(e, yc, age, ssc)
		if amount.IsZero() {
			continue
		}

		if e.src.Type == domain.IncomeAnnuity {
			if !e.annuitized {
				e.annuitized = true
				e.annuityBasis = e.balance
				e.balance = decimal.Zero
				e.tracked = false
			}
			e.withdrawal = amount
			remaining := e.annuityBasis.Sub(e.excluded)
			if remaining.IsPositive() {
				e.excludedNow = decimal.Min(amount.Mul(e.src.ExclusionRatio), remaining)
				e.excluded = e.excluded.Add(e.excludedNow)
			}
			continue
		}

		if e.tracked && amount.GreaterThan(e.balance) {
			if !e.clampWarned {
				e.clampWarned = true
				warnings = append(warnings, domain.DomainWarning{
					Kind: domain.WarningWithdrawalClamped,
					Year: yc.year,
					Message: fmt.Sprintf("%s: scheduled withdrawal %s exceeds balance %s",
						e.key, amount.StringFixedBank(2), e.balance.StringFixedBank(2)),
				})
			}
			amount = e.balance
		}
		e.withdrawal = amount
		if e.tracked {
			e.balance = e.balance.Sub(amount)
		}
	}
	return warnings
}

func scheduledAmount(e *ledgerEntry, yc *yearContext, age int, ssc *SocialSecurityCalculator) decimal.Decimal {
	src := &e.src
	if src.Type == domain.IncomeSocialSecurity {
		return ssc.AnnualBenefit(src, age, yc.year)
	}
	if src.MonthlyAmount.IsZero() || age < src.WithdrawalStartAge {
		return decimal.Zero
	}
	if src.WithdrawalEndAge > 0 && age > src.WithdrawalEndAge {
		return decimal.Zero
	}

	annual := src.MonthlyAmount.Mul(decimalTwelve)
	years := age - src.WithdrawalStartAge
	if src.Type == domain.IncomeWage {
		if age >= yc.retireAge[src.Owner] {
			return decimal.Zero
		}
		years = yc.year - yc.firstYear
	}
	if years > 0 && !src.COLA.IsZero() {
		annual = annual.Mul(onePlus(src.COLA).Pow(decimal.NewFromInt(int64(years))))
	}
	return annual
}

// ApplyRMD tops up traditional accounts whose scheduled withdrawal falls short
// of the required distribution on the prior year-end balance.
func (l *Ledger) ApplyRMD(yc *yearContext, rc *RMDCalculator) ([]domain.DomainWarning, bool) {
	var warnings []domain.DomainWarning
	enforced := false
	for _, e := range l.entries {
		if !e.src.Type.IsTraditional() || !yc.alive[e.src.Owner] {
			continue
		}
		age := yc.ages[e.src.Owner]
		if age > rc.Table.MaxAge() && rc.IsRMDAge(age) && !e.rmdEndWarned && e.start.IsPositive() {
			e.rmdEndWarned = true
			warnings = append(warnings, domain.DomainWarning{
				Kind:    domain.WarningRMDTableEnd,
				Year:    yc.year,
				Message: fmt.Sprintf("%s: age %d is past the RMD table, using the final period", e.key, age),
			})
		}
		required := rc.CalculateRMD(e.start, age)
		if required.IsZero() {
			continue
		}
		e.rmdRequired = required
		if e.withdrawal.LessThan(required) {
			topUp := decimal.Min(required.Sub(e.withdrawal), e.balance)
			if topUp.IsPositive() {
				e.rmdTopUp = topUp
				e.balance = e.balance.Sub(topUp)
				enforced = true
			}
		}
	}
	return warnings, enforced
}

// Convert moves up to amount from key into the Roth target and returns what
// actually moved.
func (l *Ledger) Convert(key string, amount decimal.Decimal) decimal.Decimal {
	e, ok := l.byKey[key]
	if !ok || !e.src.Type.IsTraditional() || !amount.IsPositive() {
		return decimal.Zero
	}
	moved := decimal.Min(amount, e.balance)
	if !moved.IsPositive() {
		return decimal.Zero
	}
	target := l.rothTarget()
	e.balance = e.balance.Sub(moved)
	e.conversionOut = e.conversionOut.Add(moved)
	e.converted = e.converted.Add(moved)
	target.balance = target.balance.Add(moved)
	target.conversionIn = target.conversionIn.Add(moved)
	target.funded = true
	return moved
}

func (l *Ledger) rothTarget() *ledgerEntry {
	if l.roth != nil {
		return l.roth
	}
	e := &ledgerEntry{
		src: domain.IncomeSource{
			ID:           SyntheticRothKey,
			Owner:        domain.OwnerPrimary,
			Name:         "Synthetic Roth",
			Type:         domain.IncomeSyntheticRoth,
			RateOfReturn: l.rothGrowth,
		},
		key:       SyntheticRothKey,
		tracked:   true,
		synthetic: true,
	}
	l.roth = e
	l.entries = append(l.entries, e)
	l.byKey[e.key] = e
	return e
}

// WithdrawRoth drains up to amount from the synthetic Roth, tax free.
func (l *Ledger) WithdrawRoth(amount decimal.Decimal) decimal.Decimal {
	if l.roth == nil || !amount.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(amount, l.roth.balance)
	if !taken.IsPositive() {
		return decimal.Zero
	}
	l.roth.balance = l.roth.balance.Sub(taken)
	l.roth.rothWithdrawal = taken
	return taken
}

// Grow applies each balance's rate of return. The synthetic Roth grows at
// the scenario's Roth growth rate when one is set.
func (l *Ledger) Grow() {
	for _, e := range l.entries {
		if !e.tracked || e.balance.IsZero() {
			continue
		}
		rate := e.src.RateOfReturn
		if e.synthetic && !l.rothGrowth.IsZero() {
			rate = l.rothGrowth
		}
		e.balance = e.balance.Mul(onePlus(rate))
	}
}

// yearFlows aggregates the ledger's movements for the tax calculation.
type yearFlows struct {
	gross       map[string]decimal.Decimal
	totalGross  decimal.Decimal
	ssGross     decimal.Decimal
	ordinary    decimal.Decimal // taxed through the brackets
	override    decimal.Decimal // taxed at a source's flat override rate
	overrideTax decimal.Decimal
	retirement  decimal.Decimal
	earned      decimal.Decimal
	rmds        map[string]decimal.Decimal
	totalRMD    decimal.Decimal
	conversions map[string]decimal.Decimal
	converted   decimal.Decimal
	rothDrawn   decimal.Decimal
}

// Flows summarizes the year's movements.
func (l *Ledger) Flows() yearFlows {
	f := yearFlows{
		gross:       make(map[string]decimal.Decimal),
		rmds:        make(map[string]decimal.Decimal),
		conversions: make(map[string]decimal.Decimal),
	}
	for _, e := range l.entries {
		gross := e.gross()
		if gross.IsPositive() {
			f.gross[e.key] = gross
			f.totalGross = f.totalGross.Add(gross)
		}
		if e.rmdRequired.IsPositive() {
			f.rmds[e.key] = e.rmdRequired
			f.totalRMD = f.totalRMD.Add(e.rmdRequired)
		}
		if e.conversionOut.IsPositive() {
			f.conversions[e.key] = e.conversionOut
			f.converted = f.converted.Add(e.conversionOut)
			f.ordinary = f.ordinary.Add(e.conversionOut)
			f.retirement = f.retirement.Add(e.conversionOut)
		}
		f.rothDrawn = f.rothDrawn.Add(e.rothWithdrawal)

		t := e.src.Type
		switch {
		case t == domain.IncomeSocialSecurity:
			f.ssGross = f.ssGross.Add(gross)
			continue
		case t.IsTaxFree():
			continue
		}

		taxable := gross.Sub(e.excludedNow)
		if t == domain.IncomeWage {
			f.earned = f.earned.Add(taxable)
		}
		if t.IsRetirementIncome() {
			f.retirement = f.retirement.Add(taxable)
		}
		if rate := e.src.TaxRateOverride; rate != nil {
			f.override = f.override.Add(taxable)
			f.overrideTax = f.overrideTax.Add(taxable.Mul(*rate))
			continue
		}
		f.ordinary = f.ordinary.Add(taxable)
	}
	return f
}

// EndingBalances returns the balance of every balance-carrying entry.
func (l *Ledger) EndingBalances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.entries))
	for _, e := range l.entries {
		if e.synthetic && !e.funded {
			continue
		}
		if e.tracked || e.src.CurrentBalance.IsPositive() {
			out[e.key] = e.balance
		}
	}
	return out
}

// Converted returns the cumulative amount converted out of key.
func (l *Ledger) Converted(key string) decimal.Decimal {
	if e, ok := l.byKey[key]; ok {
		return e.converted
	}
	return decimal.Zero
}
