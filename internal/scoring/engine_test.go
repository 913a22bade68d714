package scoring

import (
	"math"
	"testing"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestDefaultProfiles_WeightsSumToOne(t *testing.T) {
	for name, profile := range DefaultProfiles() {
		sum := 0.0
		for _, w := range profile.Weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("profile %s weights sum to %g, want 1.0", name, sum)
		}
		if err := profile.Validate(); err != nil {
			t.Errorf("profile %s failed validation: %v", name, err)
		}
	}
}

func TestEngine_Score_JobMatchingScenario(t *testing.T) {
	engine := newTestEngine(t)

	factors := map[string]float64{
		"skill":        0.9,
		"location":     0.5,
		"budget":       1.0,
		"availability": 0.2,
		"quality":      0.8,
	}

	breakdown, err := engine.Score("job-matching", factors)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	want := 0.9*0.30 + 0.5*0.20 + 1.0*0.20 + 0.2*0.15 + 0.8*0.15
	if math.Abs(breakdown.Aggregate-want) > 1e-9 {
		t.Errorf("aggregate = %g, want %g", breakdown.Aggregate, want)
	}

	if len(breakdown.Factors) != 5 {
		t.Fatalf("expected 5 factor contributions, got %d", len(breakdown.Factors))
	}

	sum := 0.0
	for _, f := range breakdown.Factors {
		if math.Abs(f.Contribution-f.Weight*f.SubScore) > 1e-12 {
			t.Errorf("factor %s: contribution %g != weight %g * sub-score %g", f.Factor, f.Contribution, f.Weight, f.SubScore)
		}
		sum += f.Contribution
	}
	if math.Abs(sum-breakdown.Aggregate) > 1e-12 {
		t.Errorf("contributions sum to %g, aggregate is %g", sum, breakdown.Aggregate)
	}
}

func TestEngine_Score_MissingFactorScoresZero(t *testing.T) {
	engine := newTestEngine(t)

	breakdown, err := engine.Score("job-matching", map[string]float64{"skill": 1.0})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if math.Abs(breakdown.Aggregate-0.30) > 1e-9 {
		t.Errorf("aggregate = %g, want 0.30 (only skill present)", breakdown.Aggregate)
	}
	for _, f := range breakdown.Factors {
		if f.Factor != "skill" && f.SubScore != 0 {
			t.Errorf("missing factor %s scored %g, want 0", f.Factor, f.SubScore)
		}
	}
}

func TestEngine_Score_MonotoneInSingleFactor(t *testing.T) {
	engine := newTestEngine(t)

	base := map[string]float64{
		"skill": 0.4, "location": 0.4, "budget": 0.4, "availability": 0.4, "quality": 0.4,
	}
	prev := -1.0
	for _, skill := range []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		base["skill"] = skill
		breakdown, err := engine.Score("job-matching", base)
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if breakdown.Aggregate < prev {
			t.Errorf("aggregate decreased from %g to %g when skill rose to %g", prev, breakdown.Aggregate, skill)
		}
		prev = breakdown.Aggregate
	}
}

func TestEngine_Score_ClampsOutOfRangeInputs(t *testing.T) {
	engine := newTestEngine(t)

	breakdown, err := engine.Score("job-matching", map[string]float64{
		"skill": 3.0, "location": -1.0,
	})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	for _, f := range breakdown.Factors {
		if f.SubScore < 0 || f.SubScore > 1 {
			t.Errorf("factor %s sub-score %g escaped [0,1]", f.Factor, f.SubScore)
		}
	}
	if breakdown.Aggregate < 0 || breakdown.Aggregate > 1 {
		t.Errorf("aggregate %g escaped [0,1]", breakdown.Aggregate)
	}
}

func TestEngine_Score_UnknownProfile(t *testing.T) {
	engine := newTestEngine(t)
	if _, err := engine.Score("nonexistent", nil); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestNewEngine_RejectsInvalidWeights(t *testing.T) {
	profiles := map[string]*Profile{
		"broken": {Name: "broken", Weights: map[string]float64{"a": 0.5, "b": 0.6}},
	}
	_, err := NewEngine(profiles, map[types.CapabilityTag]string{})
	if err == nil {
		t.Fatal("expected configuration error for weights summing to 1.1")
	}
	if _, ok := err.(*types.ConfigurationError); !ok {
		t.Errorf("expected *types.ConfigurationError, got %T", err)
	}
}

func TestNewEngine_RejectsUnknownProfileReference(t *testing.T) {
	_, err := NewEngine(DefaultProfiles(), map[types.CapabilityTag]string{
		types.TagJobMatching: "missing-profile",
	})
	if err == nil {
		t.Fatal("expected configuration error for unknown profile reference")
	}
}
