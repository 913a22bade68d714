package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// DefaultTTL applies to tags without a configured TTL.
const DefaultTTL = 5 * time.Minute

// DefaultTTLs vary staleness tolerance by task type: short for real-time
// moderation, long for research.
func DefaultTTLs() map[types.CapabilityTag]time.Duration {
	return map[types.CapabilityTag]time.Duration{
		types.TagRealTime:         30 * time.Second,
		types.TagJobMatching:      5 * time.Minute,
		types.TagPricing:          5 * time.Minute,
		types.TagDemandPrediction: 15 * time.Minute,
		types.TagComplexAnalysis:  30 * time.Minute,
		types.TagCreative:         30 * time.Minute,
		types.TagMultimodal:       30 * time.Minute,
		types.TagResearch:         time.Hour,
	}
}

// Entry is what the cache memoizes for one fingerprint: the normalized
// result and the transparency record that explains it. Entries are immutable
// once written; a recomputation after expiry fully replaces the prior entry.
type Entry struct {
	Result *types.NormalizedResult
	Record *types.TransparencyRecord
}

// ResponseCache memoizes normalized results keyed by task fingerprint, with
// capability-tag-specific TTLs. Backed by a concurrent store with lazy
// eviction on access plus a background sweep.
type ResponseCache struct {
	store *gocache.Cache
	ttls  map[types.CapabilityTag]time.Duration
}

// New creates a response cache. A nil TTL map uses the defaults.
func New(ttls map[types.CapabilityTag]time.Duration) *ResponseCache {
	if ttls == nil {
		ttls = DefaultTTLs()
	}
	return &ResponseCache{
		store: gocache.New(DefaultTTL, 10*time.Minute),
		ttls:  ttls,
	}
}

// Get returns the unexpired entry for a fingerprint, if present.
func (c *ResponseCache) Get(fingerprint string) (*Entry, bool) {
	v, ok := c.store.Get(fingerprint)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Put stores an entry under the TTL configured for its tag.
func (c *ResponseCache) Put(fingerprint string, tag types.CapabilityTag, entry *Entry) {
	ttl, ok := c.ttls[tag]
	if !ok {
		ttl = DefaultTTL
	}
	c.store.Set(fingerprint, entry, ttl)
}

// TTLFor exposes the effective TTL for a tag.
func (c *ResponseCache) TTLFor(tag types.CapabilityTag) time.Duration {
	if ttl, ok := c.ttls[tag]; ok {
		return ttl
	}
	return DefaultTTL
}

// Len reports the number of unexpired entries.
func (c *ResponseCache) Len() int {
	return c.store.ItemCount()
}
