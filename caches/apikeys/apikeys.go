// Package apikeys caches API keys by id and keeps a denormalized copy under the
// key's prefix and hash, so authentication resolves a presented key in one round trip.
//
// Key layout (namespace omitted):
//
//	apikey:id:{id}                 primary record
//	apikey:lookup:{prefix}:{hash}  full copy of the record
//
// Inactive keys stay cached by id but never authenticate.
package apikeys

import (
	"context"
	"strconv"
	"time"

	ec "github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/caches"
)

const Kind = "apikey"

type APIKey struct {
	ID         int64      `json:"id" msgpack:"id" cbor:"id"`
	Name       string     `json:"name" msgpack:"name" cbor:"name"`
	KeyPrefix  string     `json:"key_prefix" msgpack:"key_prefix" cbor:"key_prefix"`
	KeyHash    string     `json:"key_hash" msgpack:"key_hash" cbor:"key_hash"`
	IsActive   bool       `json:"is_active" msgpack:"is_active" cbor:"is_active"`
	CreatedAt  time.Time  `json:"created_at" msgpack:"created_at" cbor:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" msgpack:"last_used_at,omitempty" cbor:"last_used_at,omitempty"`
}

// Repository is the bulk source of API keys. It must include inactive keys.
type Repository interface {
	GetAllAPIKeys(ctx context.Context) ([]APIKey, error)
}

type Options = caches.Options

func LookupPartition(prefix, hash string) string { return ec.JoinParts("lookup", prefix, hash) }

// Project maps a key to its lookup copy. A key without prefix or hash is reachable by
// id only.
func Project(k APIKey) []ec.Partition {
	if k.KeyPrefix == "" || k.KeyHash == "" {
		return nil
	}
	return []ec.Partition{ec.Copy("lookup", k.KeyPrefix, k.KeyHash)}
}

func active(k APIKey) bool { return k.IsActive }

// Cache is safe for concurrent use. A nil *Cache misses every lookup.
type Cache struct {
	ic ec.IndexedCache[APIKey, int64]
}

func New(opts Options) (*Cache, error) {
	ic, err := caches.Build(opts, caches.Kind[APIKey, int64]{
		Name:     Kind,
		ID:       func(k APIKey) int64 { return k.ID },
		FormatID: func(id int64) string { return strconv.FormatInt(id, 10) },
		Project:  Project,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{ic: ic}, nil
}

func (c *Cache) Engine() ec.IndexedCache[APIKey, int64] {
	if c == nil {
		return nil
	}
	return c.ic
}

func (c *Cache) Load(ctx context.Context, repo Repository) error {
	if c == nil {
		return nil
	}
	if repo == nil {
		return caches.MissingRepository(c.ic.Keys().Name())
	}
	return c.ic.Load(ctx, ec.SourceFunc[APIKey](repo.GetAllAPIKeys))
}

func (c *Cache) Reload(ctx context.Context, repo Repository) error {
	if c == nil {
		return nil
	}
	if repo == nil {
		return caches.MissingRepository(c.ic.Keys().Name())
	}
	return c.ic.Reload(ctx, ec.SourceFunc[APIKey](repo.GetAllAPIKeys))
}

func (c *Cache) Get(ctx context.Context, id int64) (APIKey, bool, error) {
	if c == nil {
		return APIKey{}, false, nil
	}
	return c.ic.Get(ctx, id)
}

// GetByPrefixHash resolves a presented key. Inactive keys miss.
func (c *Cache) GetByPrefixHash(ctx context.Context, prefix, hash string) (APIKey, bool, error) {
	if c == nil {
		return APIKey{}, false, nil
	}
	return c.ic.Lookup(ctx, LookupPartition(prefix, hash), active)
}

func (c *Cache) Refresh(ctx context.Context, k APIKey) error {
	if c == nil {
		return nil
	}
	return c.ic.Refresh(ctx, k)
}

func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	if c == nil {
		return nil
	}
	return c.ic.Invalidate(ctx, id)
}

func (c *Cache) Stats() ec.Stats {
	if c == nil {
		return ec.Stats{Cache: Kind}
	}
	return c.ic.Stats()
}

func (c *Cache) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.ic.Close(ctx)
}
