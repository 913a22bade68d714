package scoring

import (
	"fmt"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Engine computes weighted multi-factor scores from fixed profiles. It never
// calls a provider itself; factor values are whatever the router hands it,
// regardless of which backend produced the raw signals.
type Engine struct {
	profiles    map[string]*Profile
	tagProfiles map[types.CapabilityTag]string
}

// NewEngine creates a scoring engine, validating every profile up front.
// Invalid weights are a startup configuration error.
func NewEngine(profiles map[string]*Profile, tagProfiles map[types.CapabilityTag]string) (*Engine, error) {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if tagProfiles == nil {
		tagProfiles = DefaultTagProfiles()
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	for tag, name := range tagProfiles {
		if _, ok := profiles[name]; !ok {
			return nil, &types.ConfigurationError{
				Field:  "scoring",
				Reason: fmt.Sprintf("tag %s references unknown profile %q", tag, name),
			}
		}
	}
	return &Engine{profiles: profiles, tagProfiles: tagProfiles}, nil
}

// ProfileFor returns the profile name scoring the given tag, if any.
func (e *Engine) ProfileFor(tag types.CapabilityTag) (string, bool) {
	name, ok := e.tagProfiles[tag]
	return name, ok
}

// Score computes the full breakdown for the named profile. A factor missing
// from the input scores 0, so partial inputs degrade the aggregate
// proportionally and transparently instead of failing closed.
func (e *Engine) Score(profile string, factors map[string]float64) (*types.ScoreBreakdown, error) {
	p, ok := e.profiles[profile]
	if !ok {
		return nil, fmt.Errorf("unknown scoring profile %q", profile)
	}

	breakdown := &types.ScoreBreakdown{
		Profile: profile,
		Factors: make([]types.FactorContribution, 0, len(p.Weights)),
	}

	for _, name := range p.factorOrder() {
		weight := p.Weights[name]
		sub := clamp01(factors[name]) // missing factor reads as 0
		contribution := weight * sub
		breakdown.Factors = append(breakdown.Factors, types.FactorContribution{
			Factor:       name,
			Weight:       weight,
			SubScore:     sub,
			Contribution: contribution,
		})
		breakdown.Aggregate += contribution
	}

	return breakdown, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
