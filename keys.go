package entitycache

import (
	"fmt"
	"strings"
)

// DefaultPrimarySegment is the segment between kind and id in primary keys.
const DefaultPrimarySegment = "id"

// KeyScheme is the key layout of one cache kind:
//
//	{namespace}{kind}:id:{id}          primary record
//	{namespace}{kind}:{id}             primary record of a bare scheme (composite ids)
//	{namespace}{kind}:{partition}      secondary index
//
// The namespace is prepended verbatim, so it should carry its own separator
// (e.g. "test:").
//
// A hash-tagged scheme wraps namespace and kind in braces, "{test:verb}:id:12", so
// every key of the cache lands in one Redis Cluster slot and multi-key commands
// (SINTER, MGET, DEL) stay valid.
type KeyScheme struct {
	namespace string
	kind      string
	segment   string // empty for bare schemes
	hashTag   bool
}

// NewKeyScheme returns the layout for kind under namespace. segment is inserted
// between kind and id in primary keys; pass "" for a bare scheme.
func NewKeyScheme(namespace, kind, segment string) (KeyScheme, error) {
	if kind == "" {
		return KeyScheme{}, fmt.Errorf("kind is required")
	}
	if strings.Contains(kind, ":") {
		return KeyScheme{}, fmt.Errorf("kind %q must not contain ':'", kind)
	}
	if strings.Contains(segment, ":") {
		return KeyScheme{}, fmt.Errorf("primary segment %q must not contain ':'", segment)
	}
	return KeyScheme{namespace: namespace, kind: kind, segment: segment}, nil
}

// WithHashTag returns s with the cluster hash-tag layout.
func (s KeyScheme) WithHashTag() (KeyScheme, error) {
	if strings.ContainsAny(s.namespace+s.kind, "{}") {
		return KeyScheme{}, fmt.Errorf("hash-tagged namespace %q must not contain braces", s.namespace)
	}
	s.hashTag = true
	return s, nil
}

func (s KeyScheme) HashTagged() bool  { return s.hashTag }
func (s KeyScheme) Namespace() string { return s.namespace }
func (s KeyScheme) Kind() string      { return s.kind }

// Name identifies the cache instance: namespace plus kind.
func (s KeyScheme) Name() string { return s.namespace + s.kind }

// Prefix is owned entirely by this cache; Clear deletes everything under it.
func (s KeyScheme) Prefix() string {
	if s.hashTag {
		return "{" + s.namespace + s.kind + "}:"
	}
	return s.namespace + s.kind + ":"
}

func (s KeyScheme) Primary(id string) string {
	if s.segment == "" {
		return s.Prefix() + id
	}
	return s.Prefix() + s.segment + ":" + id
}

func (s KeyScheme) Partition(name string) string { return s.Prefix() + name }

// JoinParts builds a partition name or composite id from its segments.
func JoinParts(parts ...string) string { return strings.Join(parts, ":") }
