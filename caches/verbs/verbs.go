// Package verbs caches verbs by id and partitions them by target language and by
// object capability for random selection.
//
// Key layout (namespace omitted):
//
//	verb:id:{id}      primary record
//	verb:all:{lang}   every non-test verb of a language
//	verb:cod:{lang}   verbs that can take a direct object
//	verb:coi:{lang}   verbs that can take an indirect object
package verbs

import (
	"context"
	"strconv"

	ec "github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/caches"
)

const Kind = "verb"

type Verb struct {
	ID                 int64  `json:"id" msgpack:"id" cbor:"id"`
	Infinitive         string `json:"infinitive" msgpack:"infinitive" cbor:"infinitive"`
	Auxiliary          string `json:"auxiliary" msgpack:"auxiliary" cbor:"auxiliary"`
	Reflexive          bool   `json:"reflexive" msgpack:"reflexive" cbor:"reflexive"`
	TargetLanguageCode string `json:"target_language_code" msgpack:"target_language_code" cbor:"target_language_code"`
	Translation        string `json:"translation,omitempty" msgpack:"translation,omitempty" cbor:"translation,omitempty"`
	CanHaveCOD         bool   `json:"can_have_cod" msgpack:"can_have_cod" cbor:"can_have_cod"`
	CanHaveCOI         bool   `json:"can_have_coi" msgpack:"can_have_coi" cbor:"can_have_coi"`
	IsTest             bool   `json:"is_test" msgpack:"is_test" cbor:"is_test"`
}

// Repository is the bulk source of verbs.
type Repository interface {
	GetAllVerbs(ctx context.Context) ([]Verb, error)
}

// Requirements narrow a random draw to verbs with the given capabilities.
type Requirements struct {
	COD bool // direct object
	COI bool // indirect object
}

type Options = caches.Options

func AllPartition(lang string) string { return ec.JoinParts("all", lang) }
func CODPartition(lang string) string { return ec.JoinParts("cod", lang) }
func COIPartition(lang string) string { return ec.JoinParts("coi", lang) }

// Project maps a verb to its partitions. Test verbs are reachable by id only.
func Project(v Verb) []ec.Partition {
	if v.IsTest {
		return nil
	}
	lang := v.TargetLanguageCode
	out := []ec.Partition{ec.Members("all", lang)}
	if v.CanHaveCOD {
		out = append(out, ec.Members("cod", lang))
	}
	if v.CanHaveCOI {
		out = append(out, ec.Members("coi", lang))
	}
	return out
}

// Cache is safe for concurrent use. A nil *Cache misses every lookup.
type Cache struct {
	ic ec.IndexedCache[Verb, int64]
}

func New(opts Options) (*Cache, error) {
	ic, err := caches.Build(opts, caches.Kind[Verb, int64]{
		Name:     Kind,
		ID:       func(v Verb) int64 { return v.ID },
		FormatID: func(id int64) string { return strconv.FormatInt(id, 10) },
		Project:  Project,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{ic: ic}, nil
}

// Engine exposes the underlying indexed cache.
func (c *Cache) Engine() ec.IndexedCache[Verb, int64] {
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
	return c.ic.Load(ctx, ec.SourceFunc[Verb](repo.GetAllVerbs))
}

func (c *Cache) Reload(ctx context.Context, repo Repository) error {
	if c == nil {
		return nil
	}
	if repo == nil {
		return caches.MissingRepository(c.ic.Keys().Name())
	}
	return c.ic.Reload(ctx, ec.SourceFunc[Verb](repo.GetAllVerbs))
}

func (c *Cache) Get(ctx context.Context, id int64) (Verb, bool, error) {
	if c == nil {
		return Verb{}, false, nil
	}
	return c.ic.Get(ctx, id)
}

// Random draws a verb of lang satisfying req. A single requirement (or none) reads one
// set directly; both requirements intersect the capability sets.
func (c *Cache) Random(ctx context.Context, lang string, req Requirements) (Verb, bool, error) {
	if c == nil {
		return Verb{}, false, nil
	}
	var parts []string
	if req.COD {
		parts = append(parts, CODPartition(lang))
	}
	if req.COI {
		parts = append(parts, COIPartition(lang))
	}
	if len(parts) == 0 {
		parts = append(parts, AllPartition(lang))
	}
	return c.ic.Random(ctx, parts...)
}

// Language returns every non-test verb of lang.
func (c *Cache) Language(ctx context.Context, lang string) ([]Verb, error) {
	if c == nil {
		return nil, nil
	}
	return c.ic.Members(ctx, AllPartition(lang))
}

func (c *Cache) Refresh(ctx context.Context, v Verb) error {
	if c == nil {
		return nil
	}
	return c.ic.Refresh(ctx, v)
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
