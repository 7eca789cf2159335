package types

// This file defines how a cache reports what it is doing.

/*
Metrics is the set of events a cache emits. Each method is called once per event.
*/
type Metrics interface {

	// Hit is called when a lookup returns a live entry.
	Hit()

	// Miss is called when a lookup finds nothing usable, absent or expired.
	Miss()

	// Expire is called when an entry is found stale and purged.
	Expire()

	// Resolve is called each time a resolver is invoked to fill a miss.
	Resolve()
}

/*
NoopMetrics ignores every event. A cache built without metrics uses it, so the
cache code never has to check for a nil Metrics.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()     {}
func (NoopMetrics) Miss()    {}
func (NoopMetrics) Expire()  {}
func (NoopMetrics) Resolve() {}
