package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrMiss is returned when a key has no entry.
	ErrMiss = errors.New("cache miss")

	// ErrTimeout is returned when a key has an entry that outlived its lifetime. It is a
	// kind of miss: errors.Is(ErrTimeout, ErrMiss) holds.
	ErrTimeout = fmt.Errorf("cache entry expired: %w", ErrMiss)
)
