// Package entitycache mirrors a relational source of truth into a shared key-value
// store (Redis) as a primary by-id index plus derived secondary indexes per entity.
//
// Components:
//   - KeyScheme: deterministic, namespace-prefixable key layout per cache kind.
//   - Primary index: id -> encoded entity.
//   - Partitions: membership sets of ids, or denormalized copies of the entity for
//     single-round-trip lookups.
//   - IndexedCache[E, K]: one generic engine; each entity kind supplies its codec,
//     id and projection (entity -> partitions).
//   - Provider: the store contract (see provider/redis and provider/memory).
//
// Keys:
//
//	{ns}{kind}:id:{id}          primary record
//	{ns}{kind}:{partition}      secondary index, partition = attr segments joined by ':'
//
// Consistency: after a completed Load, Refresh or Invalidate, an id is a member of a
// partition exactly when the projection of its primary record yields that partition.
// Multi-key writes go through one non-transactional pipeline, so concurrent readers may
// briefly see a primary record before its memberships change, or the reverse.
//
// Entries never expire; they live until Invalidate, Clear or the next Load.
//
// Usage:
//
//	verbs, _ := entitycache.New[Verb, int64](entitycache.Options[Verb, int64]{
//	    Namespace: "app:",
//	    Kind:      "verb",
//	    Provider:  provider,
//	    Codec:     codec.JSON[Verb]{},
//	    ID:        func(v Verb) int64 { return v.ID },
//	    Project:   projectVerb,
//	})
//	_ = verbs.Load(ctx, entitycache.SourceFunc[Verb](repo.GetAllVerbs))
//	v, ok, err := verbs.Random(ctx, "cod:eng", "coi:eng")
package entitycache
