package routing

import (
	"github.com/skillmesh/ai-orchestrator/internal/scoring"
)

// localFactors derives factor sub-scores from well-known payload fields,
// independent of any provider. Provider-supplied signals for the same factor
// take precedence when present; these fill the gaps.
func localFactors(payload map[string]any) map[string]float64 {
	factors := make(map[string]float64)

	required := stringSlice(payload["required_skills"])
	offered := stringSlice(payload["skills"])
	if len(required) > 0 && len(offered) > 0 {
		factors["skill"] = scoring.SkillOverlap(required, offered)
	}

	if dist, ok := number(payload["distance_km"]); ok {
		maxDist, hasMax := number(payload["max_distance_km"])
		if !hasMax {
			maxDist = 100
		}
		factors["location"] = scoring.LocationScore(dist, maxDist)
	}

	if rate, ok := number(payload["hourly_rate"]); ok {
		if budget, ok := number(payload["budget"]); ok {
			factors["budget"] = scoring.BudgetFit(rate, budget)
		}
	}

	if avail, ok := number(payload["available_hours"]); ok {
		if requested, ok := number(payload["requested_hours"]); ok {
			factors["availability"] = scoring.AvailabilityScore(avail, requested)
		}
	}

	if rating, ok := number(payload["rating"]); ok {
		factors["quality"] = scoring.QualityScore(rating)
	}

	return factors
}

// number extracts a float from a decoded JSON value. JSON numbers decode as
// float64; ints appear when payloads are built in-process.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
