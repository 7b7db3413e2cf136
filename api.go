package entitycache

import (
	"context"

	c "github.com/unkn0wn-root/entitycache/codec"
	gen "github.com/unkn0wn-root/entitycache/genstore"
	pr "github.com/unkn0wn-root/entitycache/provider"
)

// IndexedCache mirrors one entity kind into the store: a primary record per id plus
// the secondary partitions produced by the projection.
// E is the entity type, K its id type. Serialization is handled by a pluggable Codec[E].
//
// Lookups report a miss as (zero, false, nil). Store failures come back as *StoreError
// and are never counted as misses.
type IndexedCache[E any, K comparable] interface {
	Enabled() bool
	Keys() KeyScheme
	Close(context.Context) error

	// Bulk rebuild. Load clears every key under the cache prefix, then writes all
	// primaries and partitions in one pipeline. Reload is the administrative alias.
	Load(ctx context.Context, src Source[E]) error
	Reload(ctx context.Context, src Source[E]) error
	Clear(ctx context.Context) (deleted int, err error)

	// Point lookup by id.
	Get(ctx context.Context, id K) (v E, ok bool, err error)

	// Lookup reads a denormalized partition in one round trip. A value rejected by
	// accept (nil accepts everything) is a miss.
	Lookup(ctx context.Context, partition string, accept func(E) bool) (v E, ok bool, err error)

	// Random draws a uniformly random member of the intersection of the given
	// membership partitions and resolves it through the primary index.
	Random(ctx context.Context, partitions ...string) (v E, ok bool, err error)

	// Members resolves every entity of a membership partition.
	Members(ctx context.Context, partition string) ([]E, error)

	// Incremental maintenance.
	Refresh(ctx context.Context, v E) error
	Invalidate(ctx context.Context, id K) error
	InvalidatePartition(ctx context.Context, partition string) (removed int, err error)

	Stats() Stats
}

// Source is the bulk-fetch capability consumed by Load. It must return every entity,
// fully populated.
type Source[E any] interface {
	All(ctx context.Context) ([]E, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[E any] func(ctx context.Context) ([]E, error)

func (f SourceFunc[E]) All(ctx context.Context) ([]E, error) { return f(ctx) }

// Options configure one cache instance.
// Kind, Provider, Codec, ID and Project are required; others have sensible defaults.
type Options[E any, K comparable] struct {
	// Required
	Kind     string // e.g. "verb", "conj", "apikey"
	Provider pr.Provider
	Codec    c.Codec[E]
	ID       func(E) K
	Project  ProjectFunc[E]

	Namespace      string         // optional key prefix isolating instances on one store, e.g. "test:"
	PrimarySegment string         // "" => "id"
	BarePrimary    bool           // primary keys are {ns}{kind}:{id}; PrimarySegment is ignored
	HashTag        bool           // keys become {ns}{kind} hash-tagged, e.g. "{app:verb}:id:1"; for Redis Cluster
	FormatID       func(K) string // nil => fmt.Sprint
	Logger         Logger         // if nil, NopLogger is used
	Hooks          Hooks          // if nil, NopHooks is used
	GenStore       gen.GenStore   // nil => LocalGenStore (in-process)
	ScanCount      int64          // SCAN COUNT hint for Clear; 0 => 500
	Disabled       bool           // every lookup misses without I/O; writes are dropped
}

func New[E any, K comparable](opts Options[E, K]) (IndexedCache[E, K], error) {
	return newCache[E, K](opts)
}
