package calculation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// conversionTarget is one source with a cumulative amount to move into the Roth.
type conversionTarget struct {
	key       string
	total     decimal.Decimal
	annual    decimal.Decimal
	converted decimal.Decimal
}

func (t *conversionTarget) remaining() decimal.Decimal {
	return t.total.Sub(t.converted)
}

// ConversionPlanner decides how much to convert from each traditional source
// in a year. It keeps its own running totals and never mutates the input.
//
// Two modes exist. With per-source totals (an asset conversion map, or
// max_to_convert on the sources) each source converts total/duration a year,
// capped by the annual amount, and anything left at the end of the window
// spills into later years. With only an annual amount, that amount is split
// pro rata by balance across the eligible sources inside the window.
type ConversionPlanner struct {
	plan    *domain.RothConversionPlan
	proRata bool
	targets []*conversionTarget
	// caps limit pro-rata conversions per source; absent means unlimited
	caps      map[string]decimal.Decimal
	converted map[string]decimal.Decimal
}

// NewConversionPlanner builds the planner for scenario over sources.
func NewConversionPlanner(scenario *domain.Scenario, sources []domain.IncomeSource) *ConversionPlanner {
	cp := &ConversionPlanner{
		plan:      scenario.RothConversion,
		caps:      make(map[string]decimal.Decimal),
		converted: make(map[string]decimal.Decimal),
	}
	if cp.plan == nil || cp.plan.Duration < 1 {
		cp.plan = nil
		return cp
	}

	totals := make(map[string]decimal.Decimal)
	switch {
	case len(scenario.AssetConversionMap) > 0:
		for key, amount := range scenario.AssetConversionMap {
			if amount.IsPositive() {
				totals[key] = amount
			}
		}
	case cp.plan.AnnualAmount.IsPositive():
		cp.proRata = true
		for _, src := range sources {
			if src.Type.IsTraditional() && src.MaxToConvert.IsPositive() {
				cp.caps[src.Key()] = src.MaxToConvert
			}
		}
		return cp
	default:
		for _, src := range sources {
			if src.Type.IsTraditional() && src.MaxToConvert.IsPositive() {
				totals[src.Key()] = src.MaxToConvert
			}
		}
	}

	duration := decimal.NewFromInt(int64(cp.plan.Duration))
	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		annual := totals[key].DivRound(duration, 16)
		if cp.plan.AnnualAmount.IsPositive() {
			annual = decimal.Min(annual, cp.plan.AnnualAmount)
		}
		cp.targets = append(cp.targets, &conversionTarget{key: key, total: totals[key], annual: annual})
	}
	return cp
}

// Active reports whether any conversion is planned.
func (cp *ConversionPlanner) Active() bool {
	return cp.plan != nil && (cp.proRata || len(cp.targets) > 0)
}

// EndYear is the last year a conversion is planned, assuming balances never
// run short. Spillover past the window extends it. Zero when inactive.
func (cp *ConversionPlanner) EndYear() int {
	if !cp.Active() {
		return 0
	}
	end := cp.plan.EndYear()
	for _, t := range cp.targets {
		if !t.annual.IsPositive() {
			continue
		}
		years := int(t.total.Div(t.annual).Ceil().IntPart())
		if y := cp.plan.StartYear + years - 1; y > end {
			end = y
		}
	}
	return end
}

// Apply performs the year's conversions on the ledger and returns the total
// converted. Sources whose owner has died are skipped.
func (cp *ConversionPlanner) Apply(year int, l *Ledger, alive map[domain.Owner]bool) decimal.Decimal {
	if !cp.Active() || year < cp.plan.StartYear {
		return decimal.Zero
	}
	if cp.proRata {
		if !cp.plan.InWindow(year) {
			return decimal.Zero
		}
		return cp.applyProRata(l, alive)
	}

	total := decimal.Zero
	for _, t := range cp.targets {
		e, ok := l.byKey[t.key]
		if !ok || !alive[e.src.Owner] {
			continue
		}
		want := decimal.Min(t.annual, t.remaining())
		moved := l.Convert(t.key, want)
		t.converted = t.converted.Add(moved)
		total = total.Add(moved)
	}
	return total
}

// applyProRata splits the annual amount by balance across traditional
// sources with room left, redistributing whatever a capped source cannot take.
func (cp *ConversionPlanner) applyProRata(l *Ledger, alive map[domain.Owner]bool) decimal.Decimal {
	room := make(map[string]decimal.Decimal)
	var keys []string
	for _, e := range l.entries {
		if !e.src.Type.IsTraditional() || !alive[e.src.Owner] || !e.balance.IsPositive() {
			continue
		}
		available := e.balance
		if len(cp.caps) > 0 {
			limit, capped := cp.caps[e.key]
			if !capped {
				continue
			}
			available = decimal.Min(available, limit.Sub(cp.converted[e.key]))
		}
		if available.IsPositive() {
			room[e.key] = available
			keys = append(keys, e.key)
		}
	}

	want := cp.plan.AnnualAmount
	alloc := make(map[string]decimal.Decimal, len(keys))
	for len(keys) > 0 && want.IsPositive() {
		weight := decimal.Zero
		for _, k := range keys {
			weight = weight.Add(l.byKey[k].balance)
		}
		var open []string
		assigned := decimal.Zero
		for _, k := range keys {
			share := want.Mul(l.byKey[k].balance).DivRound(weight, 16)
			if share.GreaterThanOrEqual(room[k]) {
				share = room[k]
			} else {
				open = append(open, k)
			}
			alloc[k] = alloc[k].Add(share)
			room[k] = room[k].Sub(share)
			assigned = assigned.Add(share)
		}
		want = want.Sub(assigned)
		if len(open) == len(keys) {
			break
		}
		keys = open
	}

	total := decimal.Zero
	for _, k := range domain.SortedKeys(alloc) {
		moved := l.Convert(k, alloc[k])
		cp.converted[k] = cp.converted[k].Add(moved)
		total = total.Add(moved)
	}
	return total
}
