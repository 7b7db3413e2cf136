// Package genstore counts completed full loads per cache.
//
// Every process sharing a store can compare the generation it observed at its last
// load with the current one to tell whether another process has since rebuilt the
// index. Counters live outside the cache prefix (e.g. "gen:test:verb"), so a load's
// clear step never resets them.
package genstore

import (
	"context"
)

// GenStore abstracts where generations live.
// Use LocalGenStore (default) for in-process gens, or RedisGenStore for shared gens.
type GenStore interface {
	// Current returns the current generation; missing => 0.
	Current(ctx context.Context, name string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, name string) (uint64, error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
