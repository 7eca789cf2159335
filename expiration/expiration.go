// This file defines how cache entries expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/kiro/types"
)

/*
Strategy is the interface every expiration rule follows. The cache asks the strategy
instead of hard-coding time arithmetic, so the rule can be swapped in tests.
*/
type Strategy interface {

	// IsExpired reports whether the entry is stale at now, measured against lifetime.
	IsExpired(ent *types.Entry, lifetime time.Duration, now time.Time) bool

	// OnAccess is called whenever an entry is read successfully.
	OnAccess(ent *types.Entry, now time.Time)

	// OnWrite is called whenever an entry is written or replaced.
	OnWrite(ent *types.Entry, now time.Time)
}
