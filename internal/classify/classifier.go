package classify

import (
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// DefaultKindTags is the built-in task-kind to capability-tag mapping.
// Classification dispatches on the caller's declared task kind, never on
// payload content, so it stays deterministic and testable.
var DefaultKindTags = map[types.TaskKind]types.CapabilityTag{
	types.KindAnalyzeJob:      types.TagComplexAnalysis,
	types.KindFindMatches:     types.TagJobMatching,
	types.KindPredictDemand:   types.TagDemandPrediction,
	types.KindSuggestPrice:    types.TagPricing,
	types.KindModerateContent: types.TagRealTime,
	types.KindResearchMarket:  types.TagResearch,
	types.KindDraftProposal:   types.TagCreative,
	types.KindDescribeMedia:   types.TagMultimodal,
}

// Classifier maps a task kind to its capability tag and the static,
// configuration-driven candidate order for that tag.
type Classifier struct {
	kindTags map[types.TaskKind]types.CapabilityTag
	order    map[types.CapabilityTag][]string
}

// New creates a classifier from the kind mapping and per-tag candidate
// order. A nil kind mapping falls back to the built-in one.
func New(kindTags map[types.TaskKind]types.CapabilityTag, order map[types.CapabilityTag][]string) *Classifier {
	if kindTags == nil {
		kindTags = DefaultKindTags
	}
	return &Classifier{kindTags: kindTags, order: order}
}

// Classify resolves a task kind into its capability tag and candidate order.
// An unmapped kind is a per-request configuration error, never silently
// defaulted.
func (c *Classifier) Classify(kind types.TaskKind) (types.CapabilityTag, []string, error) {
	tag, ok := c.kindTags[kind]
	if !ok {
		return "", nil, &types.ClassificationError{Kind: kind}
	}
	candidates := make([]string, len(c.order[tag]))
	copy(candidates, c.order[tag])
	return tag, candidates, nil
}

// Kinds returns every task kind the classifier can resolve.
func (c *Classifier) Kinds() []types.TaskKind {
	kinds := make([]types.TaskKind, 0, len(c.kindTags))
	for k := range c.kindTags {
		kinds = append(kinds, k)
	}
	return kinds
}
