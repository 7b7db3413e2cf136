// Package provider defines the backing-store contract used by entitycache.
//
// A Provider is a shared key-value store with set support (Redis in production).
// Implementations MUST be byte-for-byte transparent for plain values: Get must return
// exactly the []byte previously passed to Batch.Set for the same key.
//
// Important: every key under "{namespace}{kind}:" is owned by the cache of that kind.
// External code MUST NOT write there; a full load deletes everything under the prefix.
package provider

import (
	"context"
)

// Provider is the store contract consumed by entitycache.
// Must be safe for concurrent use. Single commands are atomic; a Pipeline is NOT a
// transaction, concurrent readers may observe part of it.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// MGet returns one slot per key, nil for missing keys.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)

	// SMembers returns every member of the set; a missing set is empty.
	SMembers(ctx context.Context, key string) ([]string, error)

	// SRandMember returns one random member; ok=false when the set is empty or missing.
	SRandMember(ctx context.Context, key string) (member string, ok bool, err error)

	// SInter intersects the given sets; any missing set yields an empty result.
	SInter(ctx context.Context, keys ...string) ([]string, error)

	// ScanPrefix enumerates keys starting with prefix incrementally, calling fn once per
	// page. count is a hint for the page size. Enumeration stops at the first fn error.
	// fn may be called from several goroutines at once (e.g. one per cluster master).
	ScanPrefix(ctx context.Context, prefix string, count int64, fn func(keys []string) error) error

	// Pipeline queues the commands issued on Batch inside fn and sends them as one
	// round trip. An empty batch performs no I/O.
	Pipeline(ctx context.Context, fn func(b Batch)) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Batch collects write commands for a single Pipeline round trip.
// Del with several keys must not depend on the keys sharing a cluster slot.
type Batch interface {
	Set(key string, value []byte)
	Del(keys ...string)
	SAdd(key string, members ...string)
	SRem(key string, members ...string)
}
