package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// weightEpsilon is the tolerance for the weights-sum-to-one invariant.
const weightEpsilon = 1e-9

// Profile is a named, fixed weight vector. Weights across all factors sum to
// 1.0, which keeps the aggregate score in [0,1] for sub-scores in [0,1].
type Profile struct {
	Name    string             `yaml:"name"`
	Weights map[string]float64 `yaml:"weights"`
}

// Validate checks the sum-to-one invariant and weight ranges.
func (p *Profile) Validate() error {
	if len(p.Weights) == 0 {
		return &types.ConfigurationError{Field: "scoring." + p.Name, Reason: "profile has no factors"}
	}
	sum := 0.0
	for factor, w := range p.Weights {
		if w < 0 || w > 1 {
			return &types.ConfigurationError{
				Field:  "scoring." + p.Name,
				Reason: fmt.Sprintf("weight for %q out of range: %g", factor, w),
			}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return &types.ConfigurationError{
			Field:  "scoring." + p.Name,
			Reason: fmt.Sprintf("weights sum to %g, want 1.0", sum),
		}
	}
	return nil
}

// factorOrder returns factor names in deterministic order so breakdowns are
// stable across runs.
func (p *Profile) factorOrder() []string {
	names := make([]string, 0, len(p.Weights))
	for name := range p.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfiles are the built-in scoring profiles, keyed by name.
func DefaultProfiles() map[string]*Profile {
	return map[string]*Profile{
		"job-matching": {
			Name: "job-matching",
			Weights: map[string]float64{
				"skill":        0.30,
				"location":     0.20,
				"budget":       0.20,
				"availability": 0.15,
				"quality":      0.15,
			},
		},
		"pricing": {
			Name: "pricing",
			Weights: map[string]float64{
				"market_rate": 0.40,
				"complexity":  0.35,
				"urgency":     0.25,
			},
		},
		"demand": {
			Name: "demand",
			Weights: map[string]float64{
				"historical": 0.50,
				"seasonal":   0.30,
				"regional":   0.20,
			},
		},
	}
}

// DefaultTagProfiles maps capability tags to the profile that scores them.
// Tags without a profile produce unscored results.
func DefaultTagProfiles() map[types.CapabilityTag]string {
	return map[types.CapabilityTag]string{
		types.TagJobMatching:      "job-matching",
		types.TagPricing:          "pricing",
		types.TagDemandPrediction: "demand",
	}
}
