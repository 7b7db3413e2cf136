// Package conjugations caches conjugation tables under their composite natural key
// and groups every tense of a verb for per-verb reads and invalidation.
//
// Key layout (namespace omitted):
//
//	conj:{infinitive}:{auxiliary}:{reflexive}:{tense}   primary record
//	conj:verb:{infinitive}:{auxiliary}:{reflexive}      members "{infinitive}:{auxiliary}:{reflexive}:{tense}"
//
// reflexive is written as "true" or "false".
package conjugations

import (
	"context"
	"strconv"

	ec "github.com/unkn0wn-root/entitycache"
	"github.com/unkn0wn-root/entitycache/caches"
)

const Kind = "conj"

// VerbRef identifies the verb a conjugation belongs to.
type VerbRef struct {
	Infinitive string
	Auxiliary  string
	Reflexive  bool
}

func (v VerbRef) Partition() string {
	return ec.JoinParts("verb", v.Infinitive, v.Auxiliary, strconv.FormatBool(v.Reflexive))
}

// Key is the natural key of a conjugation.
type Key struct {
	Infinitive string
	Auxiliary  string
	Reflexive  bool
	Tense      string
}

func (k Key) Verb() VerbRef {
	return VerbRef{Infinitive: k.Infinitive, Auxiliary: k.Auxiliary, Reflexive: k.Reflexive}
}

// String is the id segment of the primary key.
func (k Key) String() string {
	return ec.JoinParts(k.Infinitive, k.Auxiliary, strconv.FormatBool(k.Reflexive), k.Tense)
}

// Conjugation is one tense of one verb with its six person forms.
type Conjugation struct {
	Infinitive     string `json:"infinitive" msgpack:"infinitive" cbor:"infinitive"`
	Auxiliary      string `json:"auxiliary" msgpack:"auxiliary" cbor:"auxiliary"`
	Reflexive      bool   `json:"reflexive" msgpack:"reflexive" cbor:"reflexive"`
	Tense          string `json:"tense" msgpack:"tense" cbor:"tense"`
	FirstSingular  string `json:"first_singular" msgpack:"first_singular" cbor:"first_singular"`
	SecondSingular string `json:"second_singular" msgpack:"second_singular" cbor:"second_singular"`
	ThirdSingular  string `json:"third_singular" msgpack:"third_singular" cbor:"third_singular"`
	FirstPlural    string `json:"first_plural" msgpack:"first_plural" cbor:"first_plural"`
	SecondPlural   string `json:"second_plural" msgpack:"second_plural" cbor:"second_plural"`
	ThirdPlural    string `json:"third_plural" msgpack:"third_plural" cbor:"third_plural"`
}

func (c Conjugation) Key() Key {
	return Key{Infinitive: c.Infinitive, Auxiliary: c.Auxiliary, Reflexive: c.Reflexive, Tense: c.Tense}
}

// Repository is the bulk source of conjugations.
type Repository interface {
	GetAllConjugations(ctx context.Context) ([]Conjugation, error)
}

type Options = caches.Options

// Project puts every conjugation in its verb's group.
func Project(c Conjugation) []ec.Partition {
	return []ec.Partition{{Name: c.Key().Verb().Partition()}}
}

// Cache is safe for concurrent use. A nil *Cache misses every lookup.
type Cache struct {
	ic ec.IndexedCache[Conjugation, Key]
}

func New(opts Options) (*Cache, error) {
	ic, err := caches.Build(opts, caches.Kind[Conjugation, Key]{
		Name:        Kind,
		ID:          Conjugation.Key,
		FormatID:    Key.String,
		Project:     Project,
		BarePrimary: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{ic: ic}, nil
}

func (c *Cache) Engine() ec.IndexedCache[Conjugation, Key] {
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
	return c.ic.Load(ctx, ec.SourceFunc[Conjugation](repo.GetAllConjugations))
}

func (c *Cache) Reload(ctx context.Context, repo Repository) error {
	if c == nil {
		return nil
	}
	if repo == nil {
		return caches.MissingRepository(c.ic.Keys().Name())
	}
	return c.ic.Reload(ctx, ec.SourceFunc[Conjugation](repo.GetAllConjugations))
}

func (c *Cache) Get(ctx context.Context, k Key) (Conjugation, bool, error) {
	if c == nil {
		return Conjugation{}, false, nil
	}
	return c.ic.Get(ctx, k)
}

// ForVerb returns every cached tense of v.
func (c *Cache) ForVerb(ctx context.Context, v VerbRef) ([]Conjugation, error) {
	if c == nil {
		return nil, nil
	}
	return c.ic.Members(ctx, v.Partition())
}

// RandomTense draws one cached tense of v.
func (c *Cache) RandomTense(ctx context.Context, v VerbRef) (Conjugation, bool, error) {
	if c == nil {
		return Conjugation{}, false, nil
	}
	return c.ic.Random(ctx, v.Partition())
}

func (c *Cache) Refresh(ctx context.Context, cj Conjugation) error {
	if c == nil {
		return nil
	}
	return c.ic.Refresh(ctx, cj)
}

// Invalidate removes a single tense.
func (c *Cache) Invalidate(ctx context.Context, k Key) error {
	if c == nil {
		return nil
	}
	return c.ic.Invalidate(ctx, k)
}

// InvalidateVerb deletes every tense listed in the verb's group, then the group.
func (c *Cache) InvalidateVerb(ctx context.Context, v VerbRef) (int, error) {
	if c == nil {
		return 0, nil
	}
	return c.ic.InvalidatePartition(ctx, v.Partition())
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
