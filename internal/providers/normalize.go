package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// instructions shared by every text-completion backend. The backends differ
// in transport and wire format; the normalized contract does not.
var promptByTag = map[types.CapabilityTag]string{
	types.TagComplexAnalysis:  "Analyze the job posting below. Extract required skills, estimate complexity, and summarize.",
	types.TagRealTime:         "Moderate the content below for policy violations. Be fast and strict.",
	types.TagResearch:         "Research the market question below in depth.",
	types.TagCreative:         "Draft a compelling proposal for the brief below.",
	types.TagMultimodal:       "Describe the referenced media and extract relevant attributes.",
	types.TagJobMatching:      "Rank the candidates below against the job requirements. For each, report factor signals in [0,1].",
	types.TagDemandPrediction: "Predict demand for the category and region below as a numeric estimate.",
	types.TagPricing:          "Suggest a fair market rate for the work described below as a numeric estimate.",
}

// BuildPrompt renders a task into the uniform prompt every adapter sends to
// its backend. Output is required to be a single JSON object so that
// normalization stays mechanical.
func BuildPrompt(task *types.TaskRequest) string {
	payload, _ := json.Marshal(task.Payload)

	var b strings.Builder
	if inst, ok := promptByTag[task.Tag]; ok {
		b.WriteString(inst)
	} else {
		b.WriteString("Process the task below.")
	}
	b.WriteString("\n\nRespond with exactly one JSON object using only these keys: ")
	b.WriteString(`"summary" (string), "skills" (string array), "estimate" (number), `)
	b.WriteString(`"matches" (array of {"candidate_id","name","factors"}), `)
	b.WriteString(`"factors" (object of number), "confidence" (number in [0,1]).`)
	b.WriteString("\nOmit keys that do not apply. No prose outside the JSON object.\n\nTask (")
	b.WriteString(string(task.Kind))
	b.WriteString("):\n")
	b.Write(payload)
	return b.String()
}

// wireResult is the shape adapters ask backends to emit. It is deliberately
// a superset of what any single task kind needs.
type wireResult struct {
	Summary    string              `json:"summary"`
	Skills     []string            `json:"skills"`
	Estimate   *float64            `json:"estimate"`
	Matches    []types.RankedMatch `json:"matches"`
	Factors    map[string]float64  `json:"factors"`
	Confidence *float64            `json:"confidence"`
}

// Normalize parses a backend text completion into the provider-agnostic
// result shape. A completion that cannot be parsed is an InvalidResponse;
// it must never leak past the adapter boundary.
func Normalize(provider string, tag types.CapabilityTag, completion string) (*types.NormalizedResult, error) {
	raw := extractJSON(completion)
	if raw == "" {
		return nil, types.NewAdapterError(provider, types.ErrKindInvalidResponse,
			fmt.Errorf("no JSON object in completion"))
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, types.NewAdapterError(provider, types.ErrKindInvalidResponse,
			fmt.Errorf("malformed completion: %w", err))
	}

	result := &types.NormalizedResult{
		Tag:      tag,
		Summary:  wire.Summary,
		Skills:   wire.Skills,
		Estimate: wire.Estimate,
		Matches:  wire.Matches,
		Factors:  wire.Factors,
	}
	// An explicit 0 is a genuine "no confidence" signal and stays 0. Only an
	// absent or nonsensical value falls back to the conservative default.
	result.Confidence = types.DefaultConfidence
	if wire.Confidence != nil && *wire.Confidence >= 0 && *wire.Confidence <= 1 {
		result.Confidence = *wire.Confidence
	}
	return result, nil
}

// extractJSON pulls the outermost JSON object out of a completion, tolerating
// markdown fences and surrounding prose that some backends still add.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if fenced := strings.TrimPrefix(s, "```json"); fenced != s {
		s = strings.TrimSuffix(strings.TrimSpace(fenced), "```")
	} else if fenced := strings.TrimPrefix(s, "```"); fenced != s {
		s = strings.TrimSuffix(strings.TrimSpace(fenced), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
