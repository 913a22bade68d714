package routing

import (
	"sort"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// degradedProviderID marks results no provider produced.
const degradedProviderID = "degraded"

// synthesizeDegraded builds the deterministic placeholder returned when the
// candidate list is empty or every candidate failed. Same tag in, same bytes
// out: no randomness, no clock reads. Confidence is pinned low and the
// degraded flag is set so callers can never mistake it for a genuine result.
func synthesizeDegraded(tag types.CapabilityTag) *types.NormalizedResult {
	result := &types.NormalizedResult{
		Tag:        tag,
		Confidence: types.DegradedConfidence,
		Degraded:   true,
	}

	switch tag {
	case types.TagJobMatching:
		result.Summary = "No providers available; no matches computed."
		result.Matches = []types.RankedMatch{}
	case types.TagDemandPrediction, types.TagPricing:
		zero := 0.0
		result.Summary = "No providers available; no estimate computed."
		result.Estimate = &zero
	case types.TagRealTime:
		result.Summary = "No providers available; content not moderated."
	default:
		result.Summary = "No providers available; task not processed."
	}

	return result
}

// sortMatches orders matches best-first, breaking score ties by candidate id
// so output stays deterministic.
func sortMatches(matches []types.RankedMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
}
