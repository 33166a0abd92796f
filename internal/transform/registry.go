package transform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// TransformRegistry creates transforms from string parameters for the CLI.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (ScenarioTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("postpone_retirement", createPostponeRetirement)
	registry.Register("set_retirement_age", createSetRetirementAge)
	registry.Register("delay_ss", createDelaySSClaim)
	registry.Register("set_mortality", createSetMortalityAge)
	registry.Register("set_return", createSetRateOfReturn)
	registry.Register("add_wage", createAddWageIncome)

	registry.Register("enable_roth_conversion", createEnableRothConversion)
	registry.Register("remove_roth_conversion", func(map[string]string) (ScenarioTransform, error) {
		return &RemoveRothConversion{}, nil
	})

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (ScenarioTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, eris.Wrapf(domain.ErrConfig, "unknown transform: %s", name)
	}
	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses "name:key=value,key=value". The colon may be
// omitted for transforms without parameters.
// Example: "postpone_retirement:owner=primary,years=2"
func (r *TransformRegistry) ParseTransformSpec(spec string) (ScenarioTransform, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	paramsStr = strings.TrimSpace(paramsStr)
	if name == "" {
		return nil, eris.Wrapf(domain.ErrConfig, "invalid transform spec %q, expected 'name:params'", spec)
	}

	params := make(map[string]string)
	if paramsStr != "" {
		for _, pair := range strings.Split(paramsStr, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, eris.Wrapf(domain.ErrConfig, "invalid parameter format, expected 'key=value', got: %s", pair)
			}
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return r.Create(name, params)
}

// ParseAll parses every spec in order.
func (r *TransformRegistry) ParseAll(specs []string) ([]ScenarioTransform, error) {
	out := make([]ScenarioTransform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func required(params map[string]string, transform, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", eris.Wrapf(domain.ErrConfig, "%s requires '%s' parameter", transform, key)
	}
	return v, nil
}

func intParam(params map[string]string, transform, key string) (int, error) {
	s, err := required(params, transform, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrapf(domain.ErrConfig, "invalid %s value %q", key, s)
	}
	return v, nil
}

func decimalParam(params map[string]string, transform, key string) (decimal.Decimal, error) {
	s, err := required(params, transform, key)
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Wrapf(domain.ErrConfig, "invalid %s value %q", key, s)
	}
	return v, nil
}

// optional helpers return the zero value when the key is absent.

func optionalInt(params map[string]string, transform, key string) (int, error) {
	if _, ok := params[key]; !ok {
		return 0, nil
	}
	return intParam(params, transform, key)
}

func optionalDecimal(params map[string]string, transform, key string) (decimal.Decimal, error) {
	if _, ok := params[key]; !ok {
		return decimal.Zero, nil
	}
	return decimalParam(params, transform, key)
}

// ownerParam defaults to the primary; anything else is checked by Validate.
func ownerParam(params map[string]string) domain.Owner {
	if o := params["owner"]; o != "" {
		return domain.Owner(o)
	}
	return domain.OwnerPrimary
}

// Factory functions for each transform

func createPostponeRetirement(params map[string]string) (ScenarioTransform, error) {
	years, err := intParam(params, "postpone_retirement", "years")
	if err != nil {
		return nil, err
	}
	return &PostponeRetirement{Owner: ownerParam(params), Years: years}, nil
}

func createSetRetirementAge(params map[string]string) (ScenarioTransform, error) {
	age, err := intParam(params, "set_retirement_age", "age")
	if err != nil {
		return nil, err
	}
	return &SetRetirementAge{Owner: ownerParam(params), Age: age}, nil
}

func createDelaySSClaim(params map[string]string) (ScenarioTransform, error) {
	source, err := required(params, "delay_ss", "source")
	if err != nil {
		return nil, err
	}
	age, err := intParam(params, "delay_ss", "age")
	if err != nil {
		return nil, err
	}
	return &DelaySSClaim{SourceID: source, NewAge: age}, nil
}

func createSetMortalityAge(params map[string]string) (ScenarioTransform, error) {
	age, err := intParam(params, "set_mortality", "age")
	if err != nil {
		return nil, err
	}
	return &SetMortalityAge{Owner: ownerParam(params), Age: age}, nil
}

func createSetRateOfReturn(params map[string]string) (ScenarioTransform, error) {
	rate, err := decimalParam(params, "set_return", "rate")
	if err != nil {
		return nil, err
	}
	return &SetRateOfReturn{SourceID: params["source"], Rate: rate}, nil
}

func createAddWageIncome(params map[string]string) (ScenarioTransform, error) {
	annual, err := decimalParam(params, "add_wage", "annual")
	if err != nil {
		return nil, err
	}
	id := params["id"]
	if id == "" {
		id = "wages"
	}
	return &AddWageIncome{ID: id, Label: params["name"], Annual: annual}, nil
}

func createEnableRothConversion(params map[string]string) (ScenarioTransform, error) {
	const name = "enable_roth_conversion"
	var p domain.ConversionParams
	var err error
	if p.ConversionStartYear, err = intParam(params, name, "start"); err != nil {
		return nil, err
	}
	if p.YearsToConvert, err = intParam(params, name, "years"); err != nil {
		return nil, err
	}
	if p.MaxAnnualAmount, err = decimalParam(params, name, "amount"); err != nil {
		return nil, err
	}
	if p.RothGrowthRate, err = optionalDecimal(params, name, "growth"); err != nil {
		return nil, err
	}
	if p.RothWithdrawalAmount, err = optionalDecimal(params, name, "withdrawal"); err != nil {
		return nil, err
	}
	if p.RothWithdrawalStartYear, err = optionalInt(params, name, "withdrawal_start"); err != nil {
		return nil, err
	}
	return &EnableRothConversion{Params: p}, nil
}
