package resolver

import "time"

// SourceFallback is the Source reported when every provider failed.
const SourceFallback = "fallback"

// ResolvedContent is the value returned to callers. The JSON shape is relied
// on by the frontends and must not change.
type ResolvedContent struct {
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Cached     bool      `json:"cached"`
	ObtainedAt time.Time `json:"obtainedAt"`
}

// CacheEntry is what the resolver stores for a key.
type CacheEntry struct {
	Key       ContentKey
	Value     ResolvedContent
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the entry is stale at the given time.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}
