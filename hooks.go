package entitycache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; wrap slow sinks with hooks/async.
// cache is the namespace-qualified kind, e.g. "test:verb".
type Hooks interface {
	// A full load finished writing.
	Loaded(cache string, entities, partitions int, took time.Duration)

	// Clear deleted this many keys under the cache prefix.
	Cleared(cache string, keys int)

	// A stored value could not be decoded; the read was served as a miss.
	DecodeFailed(storageKey string, err error)

	// A membership partition listed an id whose primary record is gone.
	DanglingMember(partitionKey, id string)

	// Refresh moved an entity between partitions.
	PartitionMigrated(storageKey string, left, entered int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Loaded(string, int, int, time.Duration) {}
func (NopHooks) Cleared(string, int)                    {}
func (NopHooks) DecodeFailed(string, error)             {}
func (NopHooks) DanglingMember(string, string)          {}
func (NopHooks) PartitionMigrated(string, int, int)     {}
