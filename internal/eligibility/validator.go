// Package eligibility decides whether a candidate unit can be deployed as a
// serverless function.
package eligibility

import (
	"sort"

	"github.com/toyz/infrabuilder/internal/models"
)

// DefaultRequired lists the packages every deployable unit must depend on:
// the lambda HTTP adapter and runtime, the async runtime and this tool's
// annotation crate.
var DefaultRequired = []string{"lambda_http", "lambda_runtime", "tokio", "infra_builder"}

// Validator checks units against an entry-target rule and a required dependency set
type Validator struct {
	required []string
}

// NewValidator creates a validator; with no names the DefaultRequired set is used
func NewValidator(required ...string) *Validator {
	if len(required) == 0 {
		required = DefaultRequired
	}

	seen := make(map[string]bool, len(required))
	names := make([]string, 0, len(required))
	for _, name := range required {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return &Validator{required: names}
}

// Required returns the required dependency names
func (v *Validator) Required() []string {
	return append([]string(nil), v.required...)
}

// Validate computes the eligibility verdict for unit from its resolved graph
func (v *Validator) Validate(unit models.CandidateUnit, graph *models.DependencyGraph) models.EligibilityResult {
	result := models.EligibilityResult{Unit: unit}
	if graph == nil {
		result.Missing = v.Required()
		sort.Strings(result.Missing)
		return result
	}

	result.HasEntryTarget = graph.HasTargetKind(models.TargetKindBin)

	for _, name := range v.required {
		if !graph.HasDependency(name) {
			result.Missing = append(result.Missing, name)
		}
	}
	sort.Strings(result.Missing)
	result.HasRequiredDependencies = len(result.Missing) == 0

	return result
}
