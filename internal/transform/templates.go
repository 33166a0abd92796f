package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/rpcore/internal/domain"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ScenarioTransform
}

// NewTemplateRegistry creates an empty template registry.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted.
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates returns the common what-if templates for input.
// Social Security templates cover every social security source the input
// has; templates that would not apply are left out.
func CreateBuiltInTemplates(input *domain.Input) *TemplateRegistry {
	registry := NewTemplateRegistry()

	for _, years := range []int{1, 2, 3} {
		registry.Register(Template{
			Name:        fmt.Sprintf("postpone_%dyr", years),
			Description: fmt.Sprintf("Postpone primary retirement by %d year(s)", years),
			Transforms:  []ScenarioTransform{&PostponeRetirement{Owner: domain.OwnerPrimary, Years: years}},
		})
	}

	var ss []string
	for _, src := range input.Assets {
		if src.Type == domain.IncomeSocialSecurity {
			ss = append(ss, src.Key())
		}
	}
	if len(ss) > 0 {
		for _, age := range []int{62, 67, 70} {
			transforms := make([]ScenarioTransform, 0, len(ss))
			for _, id := range ss {
				transforms = append(transforms, &DelaySSClaim{SourceID: id, NewAge: age})
			}
			registry.Register(Template{
				Name:        fmt.Sprintf("ss_at_%d", age),
				Description: fmt.Sprintf("Claim every Social Security benefit at %d", age),
				Transforms:  transforms,
			})
		}
	}

	registry.Register(Template{
		Name:        "conservative_returns",
		Description: "Grow every account at 4%",
		Transforms:  []ScenarioTransform{&SetRateOfReturn{Rate: decimal.NewFromFloat(0.04)}},
	})
	registry.Register(Template{
		Name:        "no_roth",
		Description: "Remove Roth conversions and withdrawals",
		Transforms:  []ScenarioTransform{&RemoveRothConversion{}},
	})
	return registry
}
