package cache

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Fingerprint computes the stable identity of a task: a hash of its
// capability tag plus the canonicalized payload. encoding/json emits map
// keys in sorted order, so semantically identical payloads hash identically
// regardless of construction order.
func Fingerprint(tag types.CapabilityTag, payload map[string]any) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	d := xxhash.New()
	d.WriteString(string(tag))
	d.Write([]byte{'\n'})
	d.Write(canonical)
	return strconv.FormatUint(d.Sum64(), 16), nil
}
