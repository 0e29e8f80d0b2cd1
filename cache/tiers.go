package cache

import (
	"sort"
	"time"
)

// CounterWindow is how long a popularity counter lives after its last increment.
const CounterWindow = 7 * 24 * time.Hour

// Tier maps a minimum popularity count to a cache entry TTL.
type Tier struct {
	Name     string
	MinCount int64
	TTL      time.Duration
}

// TTLPolicy is a monotonic step function from popularity count to TTL.
// The highest threshold met wins.
type TTLPolicy struct {
	tiers []Tier // sorted by MinCount, descending
	def   Tier
}

// DefaultTTLPolicy returns the standard tiering:
//
//	count >= 100  7 days
//	count >= 20   1 day
//	count >= 5    1 hour
//	otherwise     30 minutes
func DefaultTTLPolicy() TTLPolicy {
	return NewTTLPolicy(
		Tier{Name: "default", TTL: 30 * time.Minute},
		Tier{Name: "very_popular", MinCount: 100, TTL: 7 * 24 * time.Hour},
		Tier{Name: "popular", MinCount: 20, TTL: 24 * time.Hour},
		Tier{Name: "moderate", MinCount: 5, TTL: time.Hour},
	)
}

// NewTTLPolicy builds a policy from a default tier and any number of thresholds.
func NewTTLPolicy(def Tier, tiers ...Tier) TTLPolicy {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinCount > sorted[j].MinCount })
	return TTLPolicy{tiers: sorted, def: def}
}

// TierFor returns the tier selected for count.
func (p TTLPolicy) TierFor(count int64) Tier {
	for _, t := range p.tiers {
		if count >= t.MinCount {
			return t
		}
	}
	return p.def
}
