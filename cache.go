package entitycache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	c "github.com/unkn0wn-root/entitycache/codec"
	gen "github.com/unkn0wn-root/entitycache/genstore"
	"github.com/unkn0wn-root/entitycache/internal/util"
	pr "github.com/unkn0wn-root/entitycache/provider"
)

type cache[E any, K comparable] struct {
	keys      KeyScheme
	provider  pr.Provider
	codec     c.Codec[E]
	id        func(E) K
	formatID  func(K) string
	project   ProjectFunc[E]
	log       Logger
	hooks     Hooks
	gen       gen.GenStore
	scanCount int64
	enabled   bool

	st counters
}

var _ IndexedCache[struct{}, int] = (*cache[struct{}, int])(nil)

func newCache[E any, K comparable](opts Options[E, K]) (*cache[E, K], error) {
	name := opts.Namespace + opts.Kind
	if opts.Provider == nil {
		return nil, &ConfigurationError{Cache: name, Reason: "provider is required"}
	}
	if opts.Codec == nil {
		return nil, &ConfigurationError{Cache: name, Reason: "codec is required"}
	}
	if opts.ID == nil {
		return nil, &ConfigurationError{Cache: name, Reason: "id func is required"}
	}
	if opts.Project == nil {
		return nil, &ConfigurationError{Cache: name, Reason: "projection is required"}
	}

	segment := coalesce(opts.PrimarySegment, DefaultPrimarySegment)
	if opts.BarePrimary {
		segment = ""
	}
	keys, err := NewKeyScheme(opts.Namespace, opts.Kind, segment)
	if err != nil {
		return nil, &ConfigurationError{Cache: name, Reason: err.Error()}
	}
	if opts.HashTag {
		if keys, err = keys.WithHashTag(); err != nil {
			return nil, &ConfigurationError{Cache: name, Reason: err.Error()}
		}
	}

	cc := &cache[E, K]{
		keys:     keys,
		provider: opts.Provider,
		codec:    opts.Codec,
		id:       opts.ID,
		formatID: opts.FormatID,
		project:  opts.Project,
		enabled:  !opts.Disabled,
	}

	// defaults
	if cc.formatID == nil {
		cc.formatID = func(k K) string { return fmt.Sprint(k) }
	}
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.scanCount = coalesce(opts.ScanCount, defaultScanCount)
	if opts.GenStore != nil {
		cc.gen = opts.GenStore
	} else {
		cc.gen = gen.NewLocalGenStore()
	}

	return cc, nil
}

func (cc *cache[E, K]) Enabled() bool   { return cc.enabled }
func (cc *cache[E, K]) Keys() KeyScheme { return cc.keys }

// Close releases the gen store and the provider. Durable state stays in the store.
func (cc *cache[E, K]) Close(ctx context.Context) error {
	var errs []error
	if cc.gen != nil {
		if err := cc.gen.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close genstore: %w", err))
		}
	}
	if cc.provider != nil {
		if err := cc.provider.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (cc *cache[E, K]) Stats() Stats {
	s := cc.st.snapshot()
	s.Cache = cc.keys.Name()
	s.Enabled = cc.enabled
	return s
}

// ==============================
// Bulk load
// ==============================

type record struct {
	id      string
	key     string
	payload []byte
	parts   []Partition
}

func (cc *cache[E, K]) Reload(ctx context.Context, src Source[E]) error {
	cc.log.Info("reload requested", Fields{"cache": cc.keys.Name()})
	return cc.Load(ctx, src)
}

// Load fetches and encodes the whole source before touching the store, so a failing
// repository or codec leaves the previous generation intact. Once the clear starts,
// a store failure leaves the cache partially cleared; there is no rollback.
func (cc *cache[E, K]) Load(ctx context.Context, src Source[E]) error {
	if src == nil {
		return &ConfigurationError{Cache: cc.keys.Name(), Reason: "source is nil"}
	}
	if !cc.enabled {
		return nil
	}
	start := time.Now()

	entities, err := src.All(ctx)
	if err != nil {
		return fmt.Errorf("entitycache %q: fetch source: %w", cc.keys.Name(), err)
	}

	records, err := cc.encodeAll(entities)
	if err != nil {
		return err
	}

	cleared, err := cc.Clear(ctx)
	if err != nil {
		return err
	}

	members := make(map[string][]string)
	copies := make(map[string][]byte)
	for _, r := range records {
		for _, p := range r.parts {
			k := cc.keys.Partition(p.Name)
			if p.Denormalized {
				copies[k] = r.payload
			} else {
				members[k] = append(members[k], r.id)
			}
		}
	}

	err = cc.provider.Pipeline(ctx, func(b pr.Batch) {
		for _, r := range records {
			b.Set(r.key, r.payload)
		}
		for _, k := range sortedKeys(copies) {
			b.Set(k, copies[k])
		}
		for _, k := range sortedKeys(members) {
			b.SAdd(k, members[k]...)
		}
	})
	if err != nil {
		return storeErr("load", "", err)
	}

	partitions := len(members) + len(copies)
	cc.st.markLoaded(len(records), partitions, time.Now())

	g, err := cc.gen.Bump(ctx, cc.keys.Name())
	if err != nil {
		return storeErr("bump generation", cc.keys.Name(), err)
	}
	cc.st.generation.Store(g)

	took := time.Since(start)
	cc.hooks.Loaded(cc.keys.Name(), len(records), partitions, took)
	cc.log.Info("cache loaded", Fields{
		"cache":      cc.keys.Name(),
		"entities":   len(records),
		"partitions": partitions,
		"cleared":    cleared,
		"generation": g,
		"took":       took,
	})
	return nil
}

// encodeAll encodes every entity once. A repeated id keeps its last occurrence.
func (cc *cache[E, K]) encodeAll(entities []E) ([]record, error) {
	records := make([]record, 0, len(entities))
	pos := make(map[string]int, len(entities))
	for _, e := range entities {
		id := cc.formatID(cc.id(e))
		key := cc.keys.Primary(id)
		payload, err := cc.codec.Encode(e)
		if err != nil {
			return nil, &CodecError{Op: "encode", Key: key, Err: err}
		}
		r := record{id: id, key: key, payload: payload, parts: dedupe(cc.project(e))}
		if i, ok := pos[id]; ok {
			records[i] = r
			continue
		}
		pos[id] = len(records)
		records = append(records, r)
	}
	return records, nil
}

// Clear deletes every key under the cache prefix page by page with SCAN, never with
// a blocking flush. Pages may arrive concurrently (one scanner per cluster master).
func (cc *cache[E, K]) Clear(ctx context.Context) (int, error) {
	if !cc.enabled {
		return 0, nil
	}
	var n atomic.Int64
	err := cc.provider.ScanPrefix(ctx, cc.keys.Prefix(), cc.scanCount, func(keys []string) error {
		if err := cc.provider.Pipeline(ctx, func(b pr.Batch) { b.Del(keys...) }); err != nil {
			return err
		}
		n.Add(int64(len(keys)))
		return nil
	})
	deleted := int(n.Load())
	cc.st.markCleared()
	if err != nil {
		return deleted, storeErr("clear", cc.keys.Prefix(), err)
	}
	cc.hooks.Cleared(cc.keys.Name(), deleted)
	cc.log.Debug("cache cleared", Fields{"cache": cc.keys.Name(), "deleted": deleted})
	return deleted, nil
}

// ==============================
// Reads
// ==============================

type outcome int

const (
	absent outcome = iota
	found
	corrupt
)

// read fetches and decodes key without touching the counters. copyKey marks a
// denormalized partition key, which may embed secrets and is redacted in logs.
func (cc *cache[E, K]) read(ctx context.Context, key string, copyKey bool) (E, outcome, error) {
	var zero E
	raw, ok, err := cc.provider.Get(ctx, key)
	if err != nil {
		return zero, absent, storeErr("get", key, err)
	}
	if !ok {
		return zero, absent, nil
	}
	v, err := cc.codec.Decode(raw)
	if err != nil {
		cc.decodeFailed(key, err, copyKey)
		return zero, corrupt, nil
	}
	return v, found, nil
}

// decodeFailed reports the raw key to hooks, which redact on their own.
func (cc *cache[E, K]) decodeFailed(key string, err error, copyKey bool) {
	cc.hooks.DecodeFailed(key, err)
	logged := key
	if copyKey {
		// keep "{ns}{kind}:{first partition segment}"
		logged = util.RedactKey(key, strings.Count(cc.keys.Prefix(), ":")+1)
	}
	cc.log.Warn("stored value failed to decode", Fields{"key": logged, "err": err})
}

func (cc *cache[E, K]) Get(ctx context.Context, id K) (E, bool, error) {
	var zero E
	if !cc.enabled {
		return zero, false, nil
	}
	return cc.getByID(ctx, cc.formatID(id))
}

func (cc *cache[E, K]) getByID(ctx context.Context, id string) (E, bool, error) {
	v, o, err := cc.read(ctx, cc.keys.Primary(id), false)
	if err != nil {
		return v, false, err
	}
	if o != found {
		cc.st.miss()
		return v, false, nil
	}
	cc.st.hit()
	return v, true, nil
}

func (cc *cache[E, K]) Lookup(ctx context.Context, partition string, accept func(E) bool) (E, bool, error) {
	var zero E
	if !cc.enabled {
		return zero, false, nil
	}
	v, o, err := cc.read(ctx, cc.keys.Partition(partition), true)
	if err != nil {
		return zero, false, err
	}
	if o != found || (accept != nil && !accept(v)) {
		cc.st.miss()
		return zero, false, nil
	}
	cc.st.hit()
	return v, true, nil
}

// Random uses SRANDMEMBER for a single partition and SINTER plus an in-process draw
// for several; combinations are never materialized in the store.
func (cc *cache[E, K]) Random(ctx context.Context, partitions ...string) (E, bool, error) {
	var zero E
	if len(partitions) == 0 {
		return zero, false, ErrNoPartitions
	}
	if !cc.enabled {
		return zero, false, nil
	}

	keys := make([]string, len(partitions))
	for i, p := range partitions {
		keys[i] = cc.keys.Partition(p)
	}

	var id string
	if len(keys) == 1 {
		m, ok, err := cc.provider.SRandMember(ctx, keys[0])
		if err != nil {
			return zero, false, storeErr("srandmember", keys[0], err)
		}
		if !ok {
			cc.st.miss()
			return zero, false, nil
		}
		id = m
	} else {
		ids, err := cc.provider.SInter(ctx, keys...)
		if err != nil {
			return zero, false, storeErr("sinter", "", err)
		}
		if len(ids) == 0 {
			cc.st.miss()
			return zero, false, nil
		}
		id = ids[rand.IntN(len(ids))]
	}

	v, o, err := cc.read(ctx, cc.keys.Primary(id), false)
	if err != nil {
		return zero, false, err
	}
	switch o {
	case found:
		cc.st.hit()
		return v, true, nil
	case absent:
		// membership keys only; denormalized copies are never drawn from
		src := strings.Join(keys, ",")
		cc.hooks.DanglingMember(src, id)
		cc.log.Warn("partition member has no primary record", Fields{"partition": src, "id": id})
	}
	cc.st.miss()
	return zero, false, nil
}

// Members counts as one lookup: a hit when at least one entity resolved.
func (cc *cache[E, K]) Members(ctx context.Context, partition string) ([]E, error) {
	if !cc.enabled {
		return nil, nil
	}
	setKey := cc.keys.Partition(partition)
	ids, err := cc.provider.SMembers(ctx, setKey)
	if err != nil {
		return nil, storeErr("smembers", setKey, err)
	}
	if len(ids) == 0 {
		cc.st.miss()
		return nil, nil
	}

	primaries := make([]string, len(ids))
	for i, id := range ids {
		primaries[i] = cc.keys.Primary(id)
	}
	raws, err := cc.provider.MGet(ctx, primaries...)
	if err != nil {
		return nil, storeErr("mget", setKey, err)
	}

	out := make([]E, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			cc.hooks.DanglingMember(setKey, ids[i])
			continue
		}
		v, err := cc.codec.Decode(raw)
		if err != nil {
			cc.decodeFailed(primaries[i], err, false)
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		cc.st.miss()
	} else {
		cc.st.hit()
	}
	return out, nil
}

// ==============================
// Incremental maintenance
// ==============================

// Refresh upserts one entity. Partitions it left are cleaned up in the same pipeline
// that overwrites the primary record.
func (cc *cache[E, K]) Refresh(ctx context.Context, v E) error {
	if !cc.enabled {
		return nil
	}
	id := cc.formatID(cc.id(v))
	key := cc.keys.Primary(id)

	payload, err := cc.codec.Encode(v)
	if err != nil {
		return &CodecError{Op: "encode", Key: key, Err: err}
	}

	prev, o, err := cc.read(ctx, key, false)
	if err != nil {
		return err
	}
	// partitions of an undecodable record are unknown; writing now would strand them
	if o == corrupt {
		return &CodecError{Op: "decode", Key: key, Err: ErrCorruptRecord}
	}
	var old []Partition
	if o == found {
		old = dedupe(cc.project(prev))
	}
	next := dedupe(cc.project(v))
	leaving, entering := diffPartitions(old, next)

	err = cc.provider.Pipeline(ctx, func(b pr.Batch) {
		cc.unindex(b, id, leaving)
		for _, p := range next {
			pk := cc.keys.Partition(p.Name)
			if p.Denormalized {
				b.Set(pk, payload) // copy must track the new value
				continue
			}
			if contains(entering, p) {
				b.SAdd(pk, id)
			}
		}
		b.Set(key, payload)
	})
	if err != nil {
		return storeErr("refresh", key, err)
	}

	if o == found && (len(leaving) > 0 || len(entering) > 0) {
		cc.hooks.PartitionMigrated(key, len(leaving), len(entering))
		cc.log.Debug("entity changed partitions", Fields{
			"key":     key,
			"left":    len(leaving),
			"entered": len(entering),
		})
	}
	return nil
}

// Invalidate deletes the primary record and its partition entries in one pipeline.
// An id with no primary record is a no-op. An undecodable record is left untouched and
// reported as a *CodecError wrapping ErrCorruptRecord.
func (cc *cache[E, K]) Invalidate(ctx context.Context, id K) error {
	if !cc.enabled {
		return nil
	}
	sid := cc.formatID(id)
	key := cc.keys.Primary(sid)

	prev, o, err := cc.read(ctx, key, false)
	if err != nil {
		return err
	}
	switch o {
	case absent:
		return nil
	case corrupt:
		// primary stays so its memberships still resolve to a record; Load rebuilds it
		return &CodecError{Op: "decode", Key: key, Err: ErrCorruptRecord}
	}
	parts := dedupe(cc.project(prev))

	err = cc.provider.Pipeline(ctx, func(b pr.Batch) {
		b.Del(key)
		cc.unindex(b, sid, parts)
	})
	if err != nil {
		return storeErr("invalidate", key, err)
	}
	cc.log.Debug("entity invalidated", Fields{"key": key, "partitions": len(parts)})
	return nil
}

// InvalidatePartition deletes every entity listed in a membership partition, their
// entries in any other partition, and finally the partition itself. Members whose
// record cannot be decoded are kept, together with their membership here, since their
// other partitions are unknown.
func (cc *cache[E, K]) InvalidatePartition(ctx context.Context, partition string) (int, error) {
	if !cc.enabled {
		return 0, nil
	}
	setKey := cc.keys.Partition(partition)
	ids, err := cc.provider.SMembers(ctx, setKey)
	if err != nil {
		return 0, storeErr("smembers", setKey, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	primaries := make([]string, len(ids))
	for i, id := range ids {
		primaries[i] = cc.keys.Primary(id)
	}
	raws, err := cc.provider.MGet(ctx, primaries...)
	if err != nil {
		return 0, storeErr("mget", setKey, err)
	}

	type victim struct {
		id, key string
		others  []Partition
	}
	var victims []victim
	kept := 0
	for i, raw := range raws {
		if raw == nil {
			victims = append(victims, victim{id: ids[i]})
			continue
		}
		v, err := cc.codec.Decode(raw)
		if err != nil {
			cc.decodeFailed(primaries[i], err, false)
			kept++
			continue
		}
		var others []Partition
		for _, p := range dedupe(cc.project(v)) {
			if p.Denormalized || p.Name != partition {
				others = append(others, p)
			}
		}
		victims = append(victims, victim{id: ids[i], key: primaries[i], others: others})
	}

	removed := 0
	err = cc.provider.Pipeline(ctx, func(b pr.Batch) {
		for _, vt := range victims {
			cc.unindex(b, vt.id, vt.others)
			if vt.key != "" {
				b.Del(vt.key)
				removed++
			}
		}
		if kept == 0 {
			b.Del(setKey)
			return
		}
		for _, vt := range victims {
			b.SRem(setKey, vt.id)
		}
	})
	if err != nil {
		return 0, storeErr("invalidate partition", setKey, err)
	}
	cc.log.Debug("partition invalidated", Fields{"partition": setKey, "removed": removed, "kept": kept})
	return removed, nil
}

// unindex queues removal of id from every partition in parts.
func (cc *cache[E, K]) unindex(b pr.Batch, id string, parts []Partition) {
	for _, p := range parts {
		pk := cc.keys.Partition(p.Name)
		if p.Denormalized {
			b.Del(pk)
		} else {
			b.SRem(pk, id)
		}
	}
}
