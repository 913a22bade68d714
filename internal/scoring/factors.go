package scoring

import "strings"

// Pure factor functions. Each maps task-specific raw inputs to a sub-score
// in [0,1], independent of which provider supplied the surrounding signals.

// SkillOverlap is the fraction of required skills the candidate covers.
// No required skills means nothing to match against, scored 0.
func SkillOverlap(required, offered []string) float64 {
	if len(required) == 0 {
		return 0
	}
	have := make(map[string]bool, len(offered))
	for _, s := range offered {
		have[normalizeSkill(s)] = true
	}
	matched := 0
	for _, s := range required {
		if have[normalizeSkill(s)] {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// LocationScore maps a distance to a proximity score: 1 at zero distance,
// falling linearly to 0 at maxDistance and beyond.
func LocationScore(distanceKM, maxDistanceKM float64) float64 {
	if maxDistanceKM <= 0 || distanceKM < 0 {
		return 0
	}
	if distanceKM >= maxDistanceKM {
		return 0
	}
	return 1 - distanceKM/maxDistanceKM
}

// BudgetFit compares an asked rate against a budget. A rate at or under
// budget is a perfect fit; over budget the score falls linearly, hitting 0
// at double the budget.
func BudgetFit(rate, budget float64) float64 {
	if budget <= 0 || rate <= 0 {
		return 0
	}
	if rate <= budget {
		return 1
	}
	over := (rate - budget) / budget
	if over >= 1 {
		return 0
	}
	return 1 - over
}

// AvailabilityScore is the fraction of requested hours the candidate can
// commit, capped at 1.
func AvailabilityScore(availableHours, requestedHours float64) float64 {
	if requestedHours <= 0 || availableHours <= 0 {
		return 0
	}
	ratio := availableHours / requestedHours
	if ratio > 1 {
		return 1
	}
	return ratio
}

// QualityScore normalizes a five-star rating into [0,1].
func QualityScore(rating float64) float64 {
	if rating <= 0 {
		return 0
	}
	if rating >= 5 {
		return 1
	}
	return rating / 5
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
