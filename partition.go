package entitycache

import "sort"

// Partition is one secondary-index bucket an entity belongs to.
//
// A membership partition is a set of ids resolved later through the primary index.
// A denormalized partition is a plain key holding the full encoded entity, read in a
// single round trip; it is expected to map to exactly one entity.
type Partition struct {
	Name         string
	Denormalized bool
}

// Members returns a membership partition named by parts joined with ':'.
func Members(parts ...string) Partition { return Partition{Name: JoinParts(parts...)} }

// Copy returns a denormalized partition named by parts joined with ':'.
func Copy(parts ...string) Partition { return Partition{Name: JoinParts(parts...), Denormalized: true} }

// ProjectFunc maps an entity to every partition it currently belongs to.
// It must be pure: the same entity always yields the same partitions.
type ProjectFunc[E any] func(E) []Partition

// diffPartitions returns the partitions only in prev (leaving) and only in next (entering).
func diffPartitions(prev, next []Partition) (leaving, entering []Partition) {
	for _, p := range prev {
		if !contains(next, p) && !contains(leaving, p) {
			leaving = append(leaving, p)
		}
	}
	for _, p := range next {
		if !contains(prev, p) && !contains(entering, p) {
			entering = append(entering, p)
		}
	}
	return leaving, entering
}

// dedupe drops repeated partitions, keeping first occurrences in order.
func dedupe(ps []Partition) []Partition {
	if len(ps) < 2 {
		return ps
	}
	out := make([]Partition, 0, len(ps))
	seen := make(map[Partition]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func contains(ps []Partition, p Partition) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
