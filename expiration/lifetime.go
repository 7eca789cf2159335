package expiration

import (
	"time"

	"github.com/krisalay/kiro/types"
)

/*
Lifetime implements "expire after write". An entry is valid while less than its
lifetime has passed since it was written, and expired from the moment the elapsed
time reaches the lifetime. Reads never extend an entry; only a new write does.
*/
type Lifetime struct{}

// IsExpired checks the entry against lifetime. A non-positive lifetime falls back to
// the lifetime the entry was stored with.
func (Lifetime) IsExpired(ent *types.Entry, lifetime time.Duration, now time.Time) bool {
	if lifetime <= 0 {
		lifetime = ent.Lifetime
	}
	return ent.Age(now) >= lifetime
}

// OnAccess only records the access time.
func (Lifetime) OnAccess(ent *types.Entry, now time.Time) {
	ent.LastAccessedAt = now
}

/*
OnWrite restarts the clock. Re-setting a key always resets its expiry, including when the
new value is identical to the old one.
*/
func (Lifetime) OnWrite(ent *types.Entry, now time.Time) {
	ent.CreatedAt = now
	ent.LastAccessedAt = now
}
