package domain

// Input bundles everything a projection needs.
type Input struct {
	Household Household      `yaml:"household" json:"household"`
	Scenario  Scenario       `yaml:"scenario" json:"scenario"`
	Assets    []IncomeSource `yaml:"assets" json:"assets"`
}

// Clone deep-copies the input so a run can never mutate the caller's data.
func (in *Input) Clone() *Input {
	return &Input{
		Household: in.Household.Clone(),
		Scenario:  in.Scenario.Clone(),
		Assets:    CloneSources(in.Assets),
	}
}

// MortalityYear returns the last living year of the given owner, or zero when
// the owner is absent.
func (in *Input) MortalityYear(owner Owner) int {
	p := in.Household.Person(owner)
	if p == nil {
		return 0
	}
	age := in.Scenario.MortalityAge
	if owner == OwnerSpouse {
		age = in.Scenario.SpouseMortalityAge
	}
	return p.BirthDate.Year() + age
}

// RetirementAge returns the retirement age configured for owner.
func (in *Input) RetirementAge(owner Owner) int {
	if owner == OwnerSpouse {
		return in.Scenario.SpouseRetirementAge
	}
	return in.Scenario.RetirementAge
}

// LastYear is the terminal projection year.
func (in *Input) LastYear() int {
	last := in.MortalityYear(OwnerPrimary)
	if y := in.MortalityYear(OwnerSpouse); y > last {
		last = y
	}
	return last
}

// Prepare applies scenario defaults and validates the whole input.
func (in *Input) Prepare() error {
	in.Scenario.ApplyDefaults()
	if err := in.Household.Validate(); err != nil {
		return err
	}
	if err := in.Scenario.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(in.Assets))
	for _, src := range in.Assets {
		if err := src.Validate(); err != nil {
			return err
		}
		if src.Owner == OwnerSpouse && in.Household.Spouse == nil {
			return NewConfigError("assets["+src.Key()+"].owner", "spouse-owned source without a spouse")
		}
		if _, dup := seen[src.Key()]; dup {
			return NewConfigError("assets["+src.Key()+"]", "duplicate source id")
		}
		seen[src.Key()] = struct{}{}
	}
	for id := range in.Scenario.AssetConversionMap {
		if _, ok := seen[id]; !ok {
			return NewConfigError("scenario.asset_conversion_map["+id+"]", "refers to an unknown source")
		}
	}
	if in.LastYear() < in.Scenario.StartYear {
		return NewConfigError("scenario.start_year", "start year %d is after the last mortality year %d",
			in.Scenario.StartYear, in.LastYear())
	}
	return nil
}
