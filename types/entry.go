package types

import "time"

// Entry is one cached value together with the timestamps that decide when it goes stale.
// Entries are owned by exactly one cache and are never shared between caches.
type Entry struct {
	Key            string
	Value          any
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Lifetime is how long the entry stays valid after CreatedAt.
	Lifetime time.Duration
}

// Age reports how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}
