package types

// Resolver is the contract between a cache and whatever expensive source it shields.
type Resolver interface {

	/*
		Resolve is called when the cache misses, either because the key was never stored
		or because the stored entry expired.
		1. Cache checks memory → key absent or stale
		2. Cache calls Resolve(key)
		3. Resolver reads the file / scans the host / parses JSON
		4. Cache stores the result and returns it

		A returned error is handed back to the caller untouched and nothing is stored.
	*/
	Resolve(key string) (any, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(key string) (any, error)

// Resolve calls f(key).
func (f ResolverFunc) Resolve(key string) (any, error) {
	return f(key)
}
