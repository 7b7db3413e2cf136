// Package caches holds what the concrete entity caches (verbs, conjugations, API keys)
// share: their options and the construction of the underlying engine.
package caches

import (
	"fmt"

	ec "github.com/unkn0wn-root/entitycache"
	c "github.com/unkn0wn-root/entitycache/codec"
	gen "github.com/unkn0wn-root/entitycache/genstore"
	pr "github.com/unkn0wn-root/entitycache/provider"
)

// Options configure one concrete cache. Provider is required.
type Options struct {
	Namespace     string // e.g. "test:"; prepended verbatim to every key
	Provider      pr.Provider
	Codec         string // "json" (default), "msgpack", "cbor"
	MaxValueBytes int    // reject values above this size on encode and decode; 0 = no limit
	Logger        ec.Logger
	Hooks         ec.Hooks
	GenStore      gen.GenStore
	ScanCount     int64
	HashTag       bool // cluster layout: "{ns}{kind}:..." keeps each cache on one slot
	Disabled      bool
}

// Kind describes how one entity type maps onto the engine.
type Kind[E any, K comparable] struct {
	Name        string
	ID          func(E) K
	FormatID    func(K) string
	Project     ec.ProjectFunc[E]
	BarePrimary bool
}

// Build resolves the codec and constructs the engine for kind.
func Build[E any, K comparable](o Options, kind Kind[E, K]) (ec.IndexedCache[E, K], error) {
	cd, err := c.ByName[E](o.Codec)
	if err != nil {
		return nil, &ec.ConfigurationError{Cache: o.Namespace + kind.Name, Reason: err.Error()}
	}
	if o.MaxValueBytes < 0 {
		return nil, &ec.ConfigurationError{
			Cache:  o.Namespace + kind.Name,
			Reason: fmt.Sprintf("max value bytes must not be negative, got %d", o.MaxValueBytes),
		}
	}
	return ec.New[E, K](ec.Options[E, K]{
		Kind:        kind.Name,
		Provider:    o.Provider,
		Codec:       c.WithLimit(cd, o.MaxValueBytes),
		ID:          kind.ID,
		FormatID:    kind.FormatID,
		Project:     kind.Project,
		BarePrimary: kind.BarePrimary,
		Namespace:   o.Namespace,
		Logger:      o.Logger,
		Hooks:       o.Hooks,
		GenStore:    o.GenStore,
		ScanCount:   o.ScanCount,
		HashTag:     o.HashTag,
		Disabled:    o.Disabled,
	})
}

// MissingRepository is returned by Load when no repository was supplied.
func MissingRepository(cache string) error {
	return &ec.ConfigurationError{Cache: cache, Reason: "repository is nil"}
}
